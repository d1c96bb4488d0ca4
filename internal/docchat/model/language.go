package model

import (
	"fmt"
	"strings"

	errx "github.com/docchat-core/client/internal/core/error"
)

// Language is the answer language sent along with ask and summarize calls.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Telugu  Language = "telugu"
)

// Languages lists the accepted values in display order.
var Languages = []Language{English, Hindi, Telugu}

func (l Language) String() string {
	return string(l)
}

// Valid reports whether l is one of Languages.
func (l Language) Valid() bool {
	switch l {
	case English, Hindi, Telugu:
		return true
	}
	return false
}

// ParseLanguage accepts any casing and surrounding whitespace.
func ParseLanguage(v string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(v)))
	if !l.Valid() {
		return "", errx.Validation(fmt.Errorf("%w: %q", errx.ErrUnknownLanguage, v))
	}
	return l, nil
}

// Decode lets envconfig populate a Language field directly.
func (l *Language) Decode(v string) error {
	parsed, err := ParseLanguage(v)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
