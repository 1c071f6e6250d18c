package application

import (
	"context"
	"errors"

	"spoken-answer/internal/domain"
)

// ResultSink receives every Result the service produces.
type ResultSink interface {
	Publish(ctx context.Context, result domain.Result) error
}

type NoopSink struct{}

func (n *NoopSink) Publish(_ context.Context, _ domain.Result) error {
	return nil
}

// MultiSink publishes to every sink and joins their errors.
type MultiSink []ResultSink

func (m MultiSink) Publish(ctx context.Context, result domain.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
