package service

import "errors"

// Error kinds. Match with errors.Is; the concrete value is always *Error.
var (
	ErrValidation = errors.New("validation error")
	ErrUpload     = errors.New("upload error")
	ErrExtraction = errors.New("extraction error")
	ErrSave       = errors.New("save error")
	ErrPreview    = errors.New("preview error")
	ErrTransport  = errors.New("transport error")
)

// Error is returned by every CaptureSession action. Message is the
// server-reported message or a fixed default.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// rejected builds the error for an ok:false response.
func rejected(kind error, serverMsg, fallback string) error {
	if serverMsg == "" {
		serverMsg = fallback
	}
	return &Error{Kind: kind, Message: serverMsg}
}
