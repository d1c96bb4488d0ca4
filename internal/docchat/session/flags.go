package session

import (
	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
)

type flag int

const (
	flagUploading flag = iota
	flagDeleting
	flagAsking
	flagSummarizing
	flagCount
)

func (f flag) String() string {
	switch f {
	case flagUploading:
		return "uploading"
	case flagDeleting:
		return "deleting"
	case flagAsking:
		return "asking"
	case flagSummarizing:
		return "summarizing"
	}
	return "unknown"
}

// acquire raises f and returns the func that lowers it again. Each acquisition
// takes a new generation; a release only lowers the flag if no later acquisition
// of the same flag happened in between, so a stale completion cannot clear a
// flag a newer call still holds.
//
// Destructive flags (uploading, deleting) are exclusive: acquiring one while
// either is raised fails with ErrBusy.
func (s *Session) acquire(f flag) (release func(), err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errx.Validation(errx.ErrSessionClosed)
	}
	if (f == flagUploading || f == flagDeleting) && s.flags.Destructive() {
		s.mu.Unlock()
		return nil, errx.Validation(errx.ErrBusy)
	}
	s.gens[f]++
	gen := s.gens[f]
	s.setLocked(f, true)
	s.inflight.Add(1)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.gens[f] == gen {
			s.setLocked(f, false)
		}
		s.mu.Unlock()
		s.inflight.Done()
	}, nil
}

func (s *Session) setLocked(f flag, v bool) {
	switch f {
	case flagUploading:
		s.flags.Uploading = v
	case flagDeleting:
		s.flags.Deleting = v
	case flagAsking:
		s.flags.Asking = v
	case flagSummarizing:
		s.flags.Summarizing = v
	}
}

// Flags returns a snapshot of the operation flags.
func (s *Session) Flags() model.Flags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

// Indicator returns the one activity indicator to display.
func (s *Session) Indicator() model.Indicator {
	return s.Flags().Indicator()
}

// Controls derives which inputs a presentation should enable right now.
func (s *Session) Controls() model.Controls {
	s.mu.Lock()
	f := s.flags
	hasInput := hasText(s.input)
	s.mu.Unlock()

	n := s.registry.Len()
	_, selected := s.registry.Selected()
	busy := f.Asking || f.Summarizing

	return model.Controls{
		Upload:    !f.Destructive(),
		Delete:    selected && !f.Destructive(),
		Select:    n > 0,
		Input:     !busy && n > 0,
		Send:      !busy && hasInput && selected,
		Language:  !busy && selected,
		Summarize: !busy && selected,
	}
}
