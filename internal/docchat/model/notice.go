package model

// NoticeLevel grades a user-facing notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a non-fatal message for the user, outside the transcript.
type Notice struct {
	Level NoticeLevel
	Text  string
}

const (
	FetchFailedNotice    = "Failed to fetch documents."
	NotPDFNotice         = "Only PDF files are allowed"
	UploadFailedNotice   = "Upload failed"
	DeletedNotice        = "Document deleted successfully."
	DeleteFailedNotice   = "Failed to delete document."
	SelectDocumentNotice = "Please select a document."
	BusyNotice           = "Another upload or delete is still running."
)
