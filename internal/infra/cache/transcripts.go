package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"spoken-answer/internal/application"
	"spoken-answer/internal/domain"
)

// CachingSTT remembers successful transcriptions by audio content hash, so a
// resubmitted recording is not sent to the provider again.
type CachingSTT struct {
	next   application.SpeechToText
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewCachingSTT(next application.SpeechToText, ttl time.Duration, logger *slog.Logger) *CachingSTT {
	return &CachingSTT{
		next:   next,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

func (c *CachingSTT) Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error) {
	key := audioKey(audio)

	if cached, found := c.cache.Get(key); found {
		c.logger.Debug("transcript cache hit", "key", key[:12])
		return cached.(domain.Transcript), nil
	}

	transcript, err := c.next.Transcribe(ctx, audio)
	if err != nil {
		return transcript, err
	}

	c.cache.Set(key, transcript, gocache.DefaultExpiration)
	return transcript, nil
}

func (c *CachingSTT) Len() int {
	return c.cache.ItemCount()
}

func audioKey(audio []byte) string {
	sum := sha256.Sum256(audio)
	return hex.EncodeToString(sum[:])
}
