package prefs

import (
	"sync"

	"github.com/docchat-core/client/internal/docchat/model"
	logx "github.com/docchat-core/client/pkg/logger"
)

// Preferences holds session-wide user choices.
type Preferences struct {
	mu       sync.RWMutex
	language model.Language
}

// New returns preferences with the given default language, falling back to English
// when def is not a known language.
func New(def model.Language) *Preferences {
	if !def.Valid() {
		def = model.English
	}
	return &Preferences{language: def}
}

// SetLanguage changes the answer language. Unknown values are rejected and leave
// the current language untouched.
func (p *Preferences) SetLanguage(v string) error {
	lang, err := model.ParseLanguage(v)
	if err != nil {
		logx.Warn().Str("value", v).Msg("rejected language")
		return err
	}
	p.mu.Lock()
	p.language = lang
	p.mu.Unlock()
	logx.Debug().Str("language", lang.String()).Msg("language changed")
	return nil
}

// Language returns the current answer language.
func (p *Preferences) Language() model.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.language
}
