package application

import (
	"context"

	"spoken-answer/internal/domain"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error)
}

type Interpreter interface {
	Interpret(text string) domain.Answer
}

// NoopSTT is a no-op speech-to-text client for text-only sources.
// It returns a config error if called with actual audio data.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte) (domain.Transcript, error) {
	return domain.Transcript{}, domain.NewTranscriptionError(
		domain.ErrorKindConfig,
		"speech-to-text not configured: set stt.provider and its credentials to enable audio transcription",
	)
}
