// Package transcript holds the append-only chat log of a session.
package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/docchat-core/client/internal/docchat/model"
	logx "github.com/docchat-core/client/pkg/logger"
)

const journalTimeout = 3 * time.Second

// Transcript is an ordered, append-only sequence of messages. Entries are never
// edited or removed individually; Clear drops all of them.
//
// When a journal is attached every append and clear is mirrored to it. Journal
// failures are logged and never change the in-memory state.
type Transcript struct {
	mu       sync.RWMutex
	messages []model.Message

	journal   model.TranscriptRepository
	sessionID string
}

type Option func(*Transcript)

// WithJournal mirrors the transcript into repo under sessionID.
func WithJournal(repo model.TranscriptRepository, sessionID string) Option {
	return func(t *Transcript) {
		t.journal = repo
		t.sessionID = sessionID
	}
}

func New(opts ...Option) *Transcript {
	t := &Transcript{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append adds m at the end.
func (t *Transcript) Append(m model.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()

	t.mirror(func(ctx context.Context) error {
		return t.journal.AddMessage(ctx, t.sessionID, m)
	})
}

// Clear removes every message. Clearing an empty transcript is a no-op.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()

	t.mirror(func(ctx context.Context) error {
		return t.journal.ClearHistory(ctx, t.sessionID)
	})
}

// Reset replaces the whole transcript with the single message m.
func (t *Transcript) Reset(m model.Message) {
	t.mu.Lock()
	t.messages = []model.Message{m}
	t.mu.Unlock()

	t.mirror(func(ctx context.Context) error {
		if err := t.journal.ClearHistory(ctx, t.sessionID); err != nil {
			return err
		}
		return t.journal.AddMessage(ctx, t.sessionID, m)
	})
}

// Messages returns a copy of the transcript in append order.
func (t *Transcript) Messages() []model.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the most recent message, if any.
func (t *Transcript) Last() (model.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return model.Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Restore loads the journaled transcript, replacing the in-memory one. Without a
// journal it does nothing.
func (t *Transcript) Restore(ctx context.Context) error {
	if t.journal == nil {
		return nil
	}
	n, err := t.journal.GetMessageCount(ctx, t.sessionID)
	if err != nil {
		return err
	}
	if n == 0 {
		logx.Debug().Str("sessionID", t.sessionID).Msg("no journaled transcript")
		return nil
	}
	msgs, err := t.journal.LoadHistory(ctx, t.sessionID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.messages = msgs
	t.mu.Unlock()
	logx.Debug().Str("sessionID", t.sessionID).Int("journaled", n).Int("messages", len(msgs)).Msg("transcript restored")
	return nil
}

// mirror runs fn against the journal with its own deadline. Calls happen under no
// lock, so two racing writers may journal in a different order than memory.
func (t *Transcript) mirror(fn func(ctx context.Context) error) {
	if t.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logx.Warn().Err(err).Str("sessionID", t.sessionID).Msg("transcript journal write failed")
	}
}
