package model

import "strconv"

// DocumentID is the server assigned identifier of an uploaded document.
type DocumentID int

func (id DocumentID) String() string {
	return strconv.Itoa(int(id))
}

// ParseDocumentID parses a decimal document id.
func ParseDocumentID(s string) (DocumentID, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return DocumentID(n), nil
}

// Document is a server-tracked uploaded file. The client never mutates one.
type Document struct {
	ID       DocumentID `json:"id"`
	Filename string     `json:"filename"`
}

// UploadResult is what the remote service reports after storing an upload.
type UploadResult struct {
	Filename string     `json:"filename"`
	ID       DocumentID `json:"doc_id,omitempty"`
	Message  string     `json:"message,omitempty"`
}
