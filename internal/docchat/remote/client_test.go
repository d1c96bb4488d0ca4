package remote

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
	"github.com/docchat-core/client/internal/stubserver"
	logx "github.com/docchat-core/client/pkg/logger"
)

func newClient(t *testing.T) (*Client, *stubserver.Server) {
	t.Helper()
	logx.Disable()
	srv := stubserver.New(stubserver.Config{})
	c := New(model.RemoteConfig{BaseURL: "http://stub/", Timeout: time.Second},
		WithHTTPClient(&http.Client{Transport: srv.Transport()}))
	return c, srv
}

func TestListDocuments(t *testing.T) {
	c, srv := newClient(t)

	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	seeded := srv.Seed("a.pdf", "b.pdf")
	docs, err = c.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seeded, docs)
}

func TestUploadDocument(t *testing.T) {
	c, _ := newClient(t)

	res, err := c.UploadDocument(context.Background(), "report.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", res.Filename)
	assert.Equal(t, model.DocumentID(1), res.ID)

	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Document{{ID: 1, Filename: "report.pdf"}}, docs)
}

func TestUploadRejectedByService(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.UploadDocument(context.Background(), "notes.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, errx.KindService, errx.KindOf(err))
	assert.ErrorContains(t, err, "Only PDF files are supported.")

	var ae *errx.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
}

func TestDeleteDocument(t *testing.T) {
	c, srv := newClient(t)
	docs := srv.Seed("a.pdf")

	require.NoError(t, c.DeleteDocument(context.Background(), docs[0].ID))

	err := c.DeleteDocument(context.Background(), docs[0].ID)
	require.Error(t, err)
	var ae *errx.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusNotFound, ae.Status)
	assert.Contains(t, ae.Message, "Document not found")
}

func TestAsk(t *testing.T) {
	c, srv := newClient(t)
	docs := srv.Seed("a.pdf")

	answer, err := c.Ask(context.Background(), docs[0].ID, "What is X?", model.Hindi)
	require.NoError(t, err)
	assert.Equal(t, stubserver.Answer("a.pdf", "What is X?", model.Hindi), answer)

	_, err = c.Ask(context.Background(), 99, "What is X?", model.English)
	assert.Equal(t, errx.KindService, errx.KindOf(err))

	_, err = c.Ask(context.Background(), docs[0].ID, "  ", model.English)
	var ae *errx.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnprocessableEntity, ae.Status)
}

func TestSummarize(t *testing.T) {
	c, srv := newClient(t)
	docs := srv.Seed("a.pdf")

	summary, err := c.Summarize(context.Background(), docs[0].ID, model.Telugu)
	require.NoError(t, err)
	assert.Equal(t, stubserver.Summary("a.pdf", 0, model.Telugu), summary)
}

func TestTransportError(t *testing.T) {
	logx.Disable()
	c := New(model.RemoteConfig{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond})

	_, err := c.ListDocuments(context.Background())
	require.Error(t, err)
	assert.Equal(t, errx.KindTransport, errx.KindOf(err))
}

func TestReadDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "string detail", body: `{"detail":"Document not found"}`, want: "Document not found"},
		{name: "structured detail", body: `{"detail":[{"loc":["body"]}]}`, want: `[{"loc":["body"]}]`},
		{name: "plain text", body: "bad gateway\n", want: "bad gateway"},
		{name: "empty", body: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readDetail(strings.NewReader(tt.body)))
		})
	}
}
