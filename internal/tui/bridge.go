package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docchat-core/client/internal/docchat/model"
)

// confirmRequest is a pending delete confirmation waiting for a y/n key.
type confirmRequest struct {
	prompt string
	reply  chan bool
}

// Bridge carries confirmations and notices from session goroutines into the
// Bubble Tea event loop. It implements model.Confirmer and model.Notifier.
type Bridge struct {
	confirms chan confirmRequest
	notices  chan model.Notice
}

func NewBridge() *Bridge {
	return &Bridge{
		confirms: make(chan confirmRequest),
		notices:  make(chan model.Notice, 16),
	}
}

// Confirm blocks until the user answers in the UI or ctx ends.
func (b *Bridge) Confirm(ctx context.Context, prompt string) bool {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case b.confirms <- req:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-req.reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

// Notify queues n for display. When the queue is full the notice is dropped;
// it has already been logged by the session.
func (b *Bridge) Notify(n model.Notice) {
	select {
	case b.notices <- n:
	default:
	}
}

type confirmMsg confirmRequest

type noticeMsg model.Notice

func (b *Bridge) waitForConfirm() tea.Cmd {
	return func() tea.Msg {
		return confirmMsg(<-b.confirms)
	}
}

func (b *Bridge) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-b.notices)
	}
}

var (
	_ model.Confirmer = (*Bridge)(nil)
	_ model.Notifier  = (*Bridge)(nil)
)
