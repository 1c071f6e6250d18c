package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"spoken-answer/internal/domain"
	"spoken-answer/pkg/logx"
)

const processedSuffix = ".processed"

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".webm": true,
}

// FileSource polls a directory for recordings. Each file is submitted once
// and then renamed with a ".processed" suffix. Files ending in ".txt" are
// submitted as text answers.
type FileSource struct {
	dir          string
	pollInterval time.Duration
	processed    map[string]bool
	mu           sync.Mutex
	logger       *slog.Logger
}

func NewFileSource(dir string, logger *slog.Logger) *FileSource {
	return &FileSource{
		dir:          dir,
		pollInterval: 500 * time.Millisecond,
		processed:    make(map[string]bool),
		logger:       logger,
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

// NextSubmission returns a pending file right away. Otherwise it polls, and
// a directory error is reported at most once per poll interval.
func (f *FileSource) NextSubmission(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	data, err := f.checkForNewFile()
	for {
		if data != nil {
			return data, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		if err != nil {
			return nil, err
		}
		data, err = f.checkForNewFile()
	}
}

func (f *FileSource) checkForNewFile() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	// ReadDir sorts by name; recordings are named by timestamp.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		isText := ext == ".txt"
		if !isText && !audioExtensions[ext] {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		if err := os.Rename(path, path+processedSuffix); err != nil {
			f.logger.Warn("marking file processed", "path", path, logx.Error(err))
		}

		if isText {
			text := strings.TrimSpace(string(data))
			if text == "" {
				continue
			}
			return []byte(domain.TextAnswerPrefix + text), nil
		}
		return data, nil
	}

	return nil, nil
}
