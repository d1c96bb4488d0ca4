package model

// Flags is a point-in-time snapshot of the session's operation flags.
type Flags struct {
	Uploading   bool
	Deleting    bool
	Asking      bool
	Summarizing bool
	Composing   bool
}

// Indicator is the single activity indicator a presentation should show.
type Indicator int

const (
	IndicatorNone Indicator = iota
	IndicatorThinking
	IndicatorSummarizing
	IndicatorComposing
)

func (i Indicator) String() string {
	switch i {
	case IndicatorThinking:
		return "thinking"
	case IndicatorSummarizing:
		return "summarizing"
	case IndicatorComposing:
		return "composing"
	default:
		return "none"
	}
}

// Indicator resolves overlapping flags. Asking wins over summarizing, and composing
// only shows while neither is active.
func (f Flags) Indicator() Indicator {
	switch {
	case f.Asking:
		return IndicatorThinking
	case f.Summarizing:
		return IndicatorSummarizing
	case f.Composing:
		return IndicatorComposing
	default:
		return IndicatorNone
	}
}

// Destructive reports whether an upload or delete is in flight.
func (f Flags) Destructive() bool {
	return f.Uploading || f.Deleting
}

// Controls tells a presentation which inputs to enable.
type Controls struct {
	Upload    bool
	Delete    bool
	Select    bool
	Input     bool
	Send      bool
	Language  bool
	Summarize bool
}
