// Package stubserver is an in-memory stand-in for the document question-answering
// backend. It speaks the same HTTP contract but answers deterministically, which
// makes it suitable for local development and tests.
package stubserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
	logx "github.com/docchat-core/client/pkg/logger"
)

type Config struct {
	// Latency delays every ask and summarize response.
	Latency time.Duration
}

type storedDoc struct {
	model.Document
	content []byte
}

// Server holds the documents and the fiber app serving them.
type Server struct {
	cfg      Config
	app      *fiber.App
	validate *validator.Validate

	mu     sync.Mutex
	nextID model.DocumentID
	docs   []storedDoc
}

type askRequest struct {
	DocID    int    `json:"doc_id" validate:"required,gt=0"`
	Question string `json:"question" validate:"required"`
	Language string `json:"language"`
}

func New(cfg Config) *Server {
	s := &Server{
		cfg:      cfg,
		validate: validator.New(),
		nextID:   1,
	}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Get("/documents", s.listDocuments)
	s.app.Post("/upload", s.upload)
	s.app.Delete("/document/:id", s.deleteDocument)
	s.app.Post("/ask", s.ask)
	s.app.Get("/summarize/:id", s.summarize)
	return s
}

// App exposes the fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	logx.Info().Str("addr", addr).Msg("stub server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Seed adds documents without going through the upload endpoint.
func (s *Server) Seed(filenames ...string) []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Document, 0, len(filenames))
	for _, name := range filenames {
		out = append(out, s.addLocked(name, nil))
	}
	return out
}

func (s *Server) addLocked(name string, content []byte) model.Document {
	doc := model.Document{ID: s.nextID, Filename: name}
	s.nextID++
	s.docs = append(s.docs, storedDoc{Document: doc, content: content})
	return doc
}

func (s *Server) find(id model.DocumentID) (storedDoc, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.docs, func(d storedDoc) bool { return d.ID == id })
	if i < 0 {
		return storedDoc{}, false
	}
	return s.docs[i], true
}

func (s *Server) listDocuments(c *fiber.Ctx) error {
	s.mu.Lock()
	docs := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d.Document)
	}
	s.mu.Unlock()
	return c.JSON(docs)
}

func (s *Server) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "file is required")
	}
	if !strings.HasSuffix(fh.Filename, ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	doc := s.addLocked(fh.Filename, content)
	s.mu.Unlock()

	logx.Debug().Int("docID", int(doc.ID)).Str("filename", doc.Filename).Int("bytes", len(content)).Msg("stub stored upload")
	return c.JSON(model.UploadResult{
		Filename: doc.Filename,
		ID:       doc.ID,
		Message:  "Upload and index complete",
	})
}

func (s *Server) deleteDocument(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid document id")
	}
	s.mu.Lock()
	i := slices.IndexFunc(s.docs, func(d storedDoc) bool { return d.ID == model.DocumentID(id) })
	if i >= 0 {
		s.docs = slices.Delete(s.docs, i, i+1)
	}
	s.mu.Unlock()
	if i < 0 {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Document %d deleted", id)})
}

func (s *Server) ask(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "malformed request body")
	}
	if strings.TrimSpace(req.Question) == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Question cannot be empty")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	doc, ok := s.find(model.DocumentID(req.DocID))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Vectorstore index not found for doc_id %d", req.DocID))
	}
	s.wait(c)
	return c.JSON(fiber.Map{"answer": Answer(doc.Filename, req.Question, language(req.Language))})
}

func (s *Server) summarize(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid document id")
	}
	doc, ok := s.find(model.DocumentID(id))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Vectorstore index not found for doc_id %d", id))
	}
	s.wait(c)
	return c.JSON(fiber.Map{"summary": Summary(doc.Filename, len(doc.content), language(c.Query("language")))})
}

func (s *Server) wait(c *fiber.Ctx) {
	if s.cfg.Latency <= 0 {
		return
	}
	select {
	case <-time.After(s.cfg.Latency):
	case <-c.Context().Done():
	}
}

// Answer is the canned reply to a question about filename.
func Answer(filename, question string, lang model.Language) string {
	return fmt.Sprintf("[%s] %s has no answer engine attached. You asked: %s", lang, filename, question)
}

// Summary is the canned summary of filename.
func Summary(filename string, size int, lang model.Language) string {
	return fmt.Sprintf("[%s] %s (%d bytes)", lang, filename, size)
}

// language falls back to English for unknown values, like the real backend.
func language(v string) model.Language {
	l, err := model.ParseLanguage(v)
	if err != nil {
		return model.English
	}
	return l
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	detail := errx.SystemErrorMessage
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, detail = fe.Code, fe.Message
	} else {
		logx.Error().Err(err).Str("path", c.Path()).Msg("stub handler failed")
	}
	return c.Status(code).JSON(fiber.Map{"detail": detail})
}

// Transport routes client requests straight into the fiber app, without a socket.
func (s *Server) Transport() http.RoundTripper {
	return roundTripper{app: s.app}
}

type roundTripper struct {
	app *fiber.App
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.app.Test(req, -1)
}
