// Package resultlog appends processed results to a JSON-lines file.
package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"spoken-answer/internal/domain"
)

type Writer struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func Open(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}

	return &Writer{file: f, enc: json.NewEncoder(f)}, nil
}

func (w *Writer) Publish(_ context.Context, result domain.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(result); err != nil {
		return fmt.Errorf("writing result %s: %w", result.ID, err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
