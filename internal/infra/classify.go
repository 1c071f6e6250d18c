package infra

import (
	"context"
	"errors"
	"fmt"
	"net"

	"spoken-answer/internal/domain"
)

// ClassifyRequestError maps a transport error from an HTTP call to a
// domain.TranscriptionError. Context cancellation is passed through.
func ClassifyRequestError(err error, timeoutMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.WrapTranscriptionError(err, domain.ErrorKindTimeout, timeoutMsg)
	}
	return domain.WrapTranscriptionError(err, domain.ErrorKindIO, "sending request")
}

// HTTPStatusError builds the error for a non-200 provider response. Retryable
// statuses are left retryable, everything else is marked Permanent.
func HTTPStatusError(statusCode int, body []byte) error {
	err := &domain.TranscriptionError{
		Kind:       domain.ErrorKindHTTP,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", statusCode, string(body)),
	}
	if IsRetryableHTTPStatus(statusCode) {
		return err
	}
	return Permanent(err)
}
