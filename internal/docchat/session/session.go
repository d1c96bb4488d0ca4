// Package session is the request orchestrator. A Session owns the document
// registry, the transcript and the preferences of one user session, issues the
// remote operations and keeps the operation flags consistent while they overlap.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/docchat-core/client/internal/docchat/model"
	"github.com/docchat-core/client/internal/docchat/prefs"
	"github.com/docchat-core/client/internal/docchat/registry"
	"github.com/docchat-core/client/internal/docchat/transcript"
	logx "github.com/docchat-core/client/pkg/logger"
)

const deletePrompt = "Are you sure you want to delete this document?"

// Session is the explicit state of one client session. Create it with New,
// call Start once, and Close when done.
type Session struct {
	id         string
	remote     model.RemoteService
	registry   *registry.Registry
	transcript *transcript.Transcript
	prefs      *prefs.Preferences
	confirmer  model.Confirmer
	notifier   model.Notifier

	mu       sync.Mutex
	flags    model.Flags
	gens     [flagCount]uint64
	input    string
	closed   bool
	inflight sync.WaitGroup
}

type options struct {
	id        string
	language  model.Language
	journal   model.TranscriptRepository
	confirmer model.Confirmer
	notifier  model.Notifier
}

type Option func(*options)

// WithID names the session. The id keys the transcript journal.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLanguage sets the initial answer language.
func WithLanguage(l model.Language) Option {
	return func(o *options) { o.language = l }
}

// WithJournal mirrors the transcript into repo.
func WithJournal(repo model.TranscriptRepository) Option {
	return func(o *options) { o.journal = repo }
}

// WithConfirmer sets the gate for deletes. Without one every delete is declined.
func WithConfirmer(c model.Confirmer) Option {
	return func(o *options) { o.confirmer = c }
}

// WithNotifier receives user-facing notices. Without one notices are only logged.
func WithNotifier(n model.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func New(remote model.RemoteService, opts ...Option) *Session {
	o := options{language: model.English}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	if o.confirmer == nil {
		o.confirmer = model.ConfirmFunc(func(context.Context, string) bool {
			logx.Warn().Msg("no confirmer configured, declining delete")
			return false
		})
	}

	var topts []transcript.Option
	if o.journal != nil {
		topts = append(topts, transcript.WithJournal(o.journal, o.id))
	}

	return &Session{
		id:         o.id,
		remote:     remote,
		registry:   registry.New(remote),
		transcript: transcript.New(topts...),
		prefs:      prefs.New(o.language),
		confirmer:  o.confirmer,
		notifier:   o.notifier,
	}
}

// Start restores a journaled transcript, if any, and loads the document list.
// A failed restore is logged; a failed refresh is reported and returned.
func (s *Session) Start(ctx context.Context) error {
	if err := s.transcript.Restore(ctx); err != nil {
		logx.Warn().Err(err).Str("sessionID", s.id).Msg("could not restore transcript")
	}
	logx.Info().Str("sessionID", s.id).Str("language", s.prefs.Language().String()).Msg("session started")
	return s.Refresh(ctx)
}

// Close waits for in-flight operations and rejects new ones.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
	logx.Info().Str("sessionID", s.id).Msg("session closed")
}

func (s *Session) ID() string { return s.id }

func (s *Session) Documents() []model.Document { return s.registry.Documents() }

func (s *Session) Selected() (model.DocumentID, bool) { return s.registry.Selected() }

func (s *Session) SelectedDocument() (model.Document, bool) {
	id, ok := s.registry.Selected()
	if !ok {
		return model.Document{}, false
	}
	return s.registry.Lookup(id)
}

// Select changes the selected document. Unknown ids are ignored.
func (s *Session) Select(id model.DocumentID) bool { return s.registry.Select(id) }

func (s *Session) Messages() []model.Message { return s.transcript.Messages() }

func (s *Session) Language() model.Language { return s.prefs.Language() }

// SetLanguage changes the answer language used by later ask and summarize calls.
func (s *Session) SetLanguage(v string) error { return s.prefs.SetLanguage(v) }

// SetInput records the input buffer. Composing follows whether it is non-empty.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.flags.Composing = len(text) > 0
	s.mu.Unlock()
}

func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) notify(level model.NoticeLevel, text string) {
	ev := logx.Info()
	if level == model.NoticeError {
		ev = logx.Warn()
	}
	ev.Str("sessionID", s.id).Str("notice", text).Msg("user notice")
	if s.notifier != nil {
		s.notifier.Notify(model.Notice{Level: level, Text: text})
	}
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}
