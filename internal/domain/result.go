package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const DefaultConfidence = 1.0

// Transcript is the text returned by a speech-to-text provider.
type Transcript struct {
	Text       string
	Source     string
	Confidence float64
}

// Result is the record produced for every processed submission, successful
// or not.
type Result struct {
	ID             string        `json:"id"`
	Success        bool          `json:"success"`
	Text           string        `json:"text"`
	Answer         *Answer       `json:"answer,omitempty"`
	Confidence     float64       `json:"confidence,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Source         string        `json:"source"`
	ErrorKind      ErrorKind     `json:"error_kind,omitempty"`
	Error          string        `json:"error,omitempty"`
	ReceivedAt     time.Time     `json:"received_at"`
}

type resultAlias Result

// MarshalJSON writes processing_time in seconds.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		resultAlias
		ProcessingTime float64 `json:"processing_time"`
	}{
		resultAlias:    resultAlias(r),
		ProcessingTime: r.ProcessingTime.Seconds(),
	})
}

func (r *Result) UnmarshalJSON(data []byte) error {
	aux := struct {
		*resultAlias
		ProcessingTime float64 `json:"processing_time"`
	}{
		resultAlias: (*resultAlias)(r),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ProcessingTime = time.Duration(aux.ProcessingTime * float64(time.Second))
	return nil
}

type ErrorKind string

const (
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindHTTP      ErrorKind = "http_error"
	ErrorKindIO        ErrorKind = "io_failure"
	ErrorKindConfig    ErrorKind = "config"
	ErrorKindCancelled ErrorKind = "cancelled"
	ErrorKindUnknown   ErrorKind = "unknown"
)

// TranscriptionError is a classified failure of a transcription provider.
type TranscriptionError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	cause      error
}

func NewTranscriptionError(kind ErrorKind, message string) *TranscriptionError {
	return &TranscriptionError{
		Kind:    kind,
		Message: message,
	}
}

func WrapTranscriptionError(err error, kind ErrorKind, message string) *TranscriptionError {
	return &TranscriptionError{
		Kind:    kind,
		Message: message,
		cause:   err,
	}
}

func (e *TranscriptionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *TranscriptionError) Unwrap() error {
	return e.cause
}

// KindOf extracts the error kind, falling back to ErrorKindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var te *TranscriptionError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrorKindUnknown
}
