package application

import "context"

// AudioSource delivers raw audio recordings, or text answers prefixed with
// domain.TextAnswerPrefix.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextSubmission(ctx context.Context) ([]byte, error)
	Name() string
}
