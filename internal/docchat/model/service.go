package model

import (
	"context"
	"io"
)

// DocumentLister is the slice of the remote service the registry needs.
type DocumentLister interface {
	ListDocuments(ctx context.Context) ([]Document, error)
}

// RemoteService is the contract with the document question-answering backend.
// Implementations report failures as errx transport or service errors.
type RemoteService interface {
	DocumentLister
	UploadDocument(ctx context.Context, filename string, content io.Reader) (*UploadResult, error)
	DeleteDocument(ctx context.Context, id DocumentID) error
	Ask(ctx context.Context, id DocumentID, question string, lang Language) (string, error)
	Summarize(ctx context.Context, id DocumentID, lang Language) (string, error)
}

// Confirmer gates destructive operations behind an explicit user decision.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Notifier receives notices. Calls may arrive from any goroutine.
type Notifier interface {
	Notify(Notice)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(Notice)

func (f NotifyFunc) Notify(n Notice) {
	f(n)
}

type TranscriptRepository interface {
	// AddMessage appends a message to the journal of the given session
	AddMessage(ctx context.Context, sessionID string, message Message) error

	// LoadHistory retrieves the journaled transcript of a session
	LoadHistory(ctx context.Context, sessionID string) ([]Message, error)

	// ClearHistory removes the journaled transcript of a session
	ClearHistory(ctx context.Context, sessionID string) error

	// GetMessageCount returns the number of journaled messages
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}
