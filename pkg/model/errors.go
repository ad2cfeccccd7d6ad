package model

import "fmt"

const ValidationMessage = "Please upload a valid audio file (MP3, WAV, MP4, M4A)."

// ValidationError reports a declared media type outside the allow-list.
type ValidationError struct {
	MediaType string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unsupported media type %q", e.MediaType)
}

// UserMessage is the text shown in the error panel.
func (e *ValidationError) UserMessage() string {
	return ValidationMessage
}

type RequestErrorKind int

const (
	// RequestErrorApplication is an "error" field reported by the server.
	RequestErrorApplication RequestErrorKind = iota + 1
	// RequestErrorTransport covers network, status and decoding failures.
	RequestErrorTransport
)

func (k RequestErrorKind) String() string {
	switch k {
	case RequestErrorApplication:
		return "application"
	case RequestErrorTransport:
		return "transport"
	default:
		return "unknown"
	}
}

type RequestError struct {
	Kind    RequestErrorKind
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s request error: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
