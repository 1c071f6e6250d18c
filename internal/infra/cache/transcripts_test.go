package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spoken-answer/internal/domain"
	"spoken-answer/internal/infra/cache"
)

type countingSTT struct {
	calls int
	err   error
}

func (c *countingSTT) Transcribe(_ context.Context, audio []byte) (domain.Transcript, error) {
	c.calls++
	if c.err != nil {
		return domain.Transcript{}, c.err
	}
	return domain.Transcript{Text: "echo " + string(audio), Source: "counting"}, nil
}

func TestCachingSTT(t *testing.T) {
	rq := require.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	next := &countingSTT{}
	stt := cache.NewCachingSTT(next, time.Minute, logger)

	first, err := stt.Transcribe(context.Background(), []byte("a"))
	rq.NoError(err)
	second, err := stt.Transcribe(context.Background(), []byte("a"))
	rq.NoError(err)
	rq.Equal(first, second)
	rq.Equal(1, next.calls)

	_, err = stt.Transcribe(context.Background(), []byte("b"))
	rq.NoError(err)
	rq.Equal(2, next.calls)
	rq.Equal(2, stt.Len())
}

func TestCachingSTT_ErrorsAreNotCached(t *testing.T) {
	rq := require.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	next := &countingSTT{err: domain.NewTranscriptionError(domain.ErrorKindTimeout, "slow")}
	stt := cache.NewCachingSTT(next, time.Minute, logger)

	_, err := stt.Transcribe(context.Background(), []byte("a"))
	rq.Error(err)
	_, err = stt.Transcribe(context.Background(), []byte("a"))
	rq.Error(err)

	rq.Equal(2, next.calls)
	rq.Equal(0, stt.Len())
}
