package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError by the operation or layer that produced it.
type Kind string

const (
	KindValidation Kind = "validation"
	KindFetch      Kind = "fetch"
	KindUpload     Kind = "upload"
	KindDelete     Kind = "delete"
	KindTransport  Kind = "transport"
	KindService    Kind = "service"
	KindRedis      Kind = "redis"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// TransportErrorMessage describes a request that never produced a response.
	TransportErrorMessage = "remote service unreachable"
	// ServiceErrorMessage describes a non-2xx response from the remote service.
	ServiceErrorMessage = "remote service error"
)

var (
	ErrNotPDF          = errors.New("only PDF files are allowed")
	ErrFileMissing     = errors.New("file does not exist")
	ErrNoSelection     = errors.New("no document selected")
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrBusy            = errors.New("another upload or delete is in progress")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrSessionClosed   = errors.New("session closed")
)

// AppError wraps an underlying error with a kind, an HTTP-ish status and a safe message.
type AppError struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, kind Kind, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    kind,
		Status:  status,
		Message: message,
	}
}

// Validation reports bad local input. It never reaches the network.
func Validation(err error) *AppError {
	return New(err, KindValidation, http.StatusBadRequest, err.Error())
}

// Fetch wraps a failed document list refresh.
func Fetch(err error) *AppError {
	return New(err, KindFetch, statusOf(err), "failed to fetch documents")
}

// Upload wraps a failed document upload.
func Upload(err error) *AppError {
	return New(err, KindUpload, statusOf(err), "upload failed")
}

// Delete wraps a failed document delete.
func Delete(err error) *AppError {
	return New(err, KindDelete, statusOf(err), "failed to delete document")
}

// Transport wraps a request that failed before a response arrived.
func Transport(err error) *AppError {
	return New(err, KindTransport, http.StatusBadGateway, TransportErrorMessage)
}

// Service wraps a non-2xx response. detail is the server supplied reason, if any.
func Service(status int, detail string) *AppError {
	msg := ServiceErrorMessage
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", ServiceErrorMessage, detail)
	}
	return New(fmt.Errorf("status %d", status), KindService, status, msg)
}

// KindOf returns the kind of the outermost AppError in err's chain, or "" if none.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func statusOf(err error) int {
	var ae *AppError
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether the target matches the underlying error.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
