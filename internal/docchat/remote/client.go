// Package remote talks to the document question-answering backend over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
	logx "github.com/docchat-core/client/pkg/logger"
)

// maxErrorBody bounds how much of a failed response is read for its detail.
const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client built from RemoteConfig.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg model.RemoteConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type askRequest struct {
	DocID    model.DocumentID `json:"doc_id"`
	Question string           `json:"question"`
	Language model.Language   `json:"language"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := c.do(ctx, http.MethodGet, "/documents", nil, "", &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*model.UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var res model.UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload", &body, mw.FormDataContentType(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id model.DocumentID) error {
	return c.do(ctx, http.MethodDelete, "/document/"+id.String(), nil, "", nil)
}

func (c *Client) Ask(ctx context.Context, id model.DocumentID, question string, lang model.Language) (string, error) {
	b, err := json.Marshal(askRequest{DocID: id, Question: question, Language: lang})
	if err != nil {
		return "", fmt.Errorf("marshal ask request: %w", err)
	}
	var res askResponse
	if err := c.do(ctx, http.MethodPost, "/ask", bytes.NewReader(b), "application/json", &res); err != nil {
		return "", err
	}
	return res.Answer, nil
}

func (c *Client) Summarize(ctx context.Context, id model.DocumentID, lang model.Language) (string, error) {
	path := "/summarize/" + id.String() + "?" + url.Values{"language": {lang.String()}}.Encode()
	var res summaryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, "", &res); err != nil {
		return "", err
	}
	return res.Summary, nil
}

// do sends one request and decodes a 2xx JSON body into out. Failures before a
// response are transport errors, non-2xx statuses are service errors.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errx.Transport(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logx.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return errx.Transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readDetail(resp.Body)
		logx.Debug().Int("status", resp.StatusCode).Str("method", method).Str("path", path).Str("detail", detail).Msg("service error")
		return errx.Service(resp.StatusCode, detail)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errx.New(err, errx.KindService, http.StatusBadGateway, "malformed response from remote service")
	}
	return nil
}

// readDetail extracts FastAPI style {"detail": ...} from an error body, falling
// back to the raw text.
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && len(er.Detail) > 0 {
		var s string
		if json.Unmarshal(er.Detail, &s) == nil {
			return s
		}
		return string(er.Detail)
	}
	return strings.TrimSpace(string(raw))
}

var _ model.RemoteService = (*Client)(nil)
