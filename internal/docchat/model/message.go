package model

import "fmt"

// Sender is the closed set of transcript authors.
type Sender int

const (
	SenderUser Sender = iota + 1
	SenderBot
)

func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderBot:
		return "bot"
	default:
		return fmt.Sprintf("Sender(%d)", int(s))
	}
}

// Message is one immutable transcript entry.
type Message struct {
	Sender Sender
	Text   string
}

func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

func BotMessage(text string) Message {
	return Message{Sender: SenderBot, Text: text}
}

// Bot-side texts appended by the orchestrator.
const (
	AskFailedText       = "Error getting response from backend."
	SummarizeFailedText = "Error generating summary."
	SummaryPrefix       = "Summary: "
	EmptyTranscriptText = "Upload a PDF to start chatting."
)

// UploadedText is the confirmation message that replaces the transcript after an upload.
func UploadedText(filename string) string {
	return filename + " uploaded successfully"
}
