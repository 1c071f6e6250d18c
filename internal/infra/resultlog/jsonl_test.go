package resultlog_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"spoken-answer/internal/domain"
	"spoken-answer/internal/infra/resultlog"
)

func TestWriter_AppendsLines(t *testing.T) {
	rq := require.New(t)

	path := filepath.Join(t.TempDir(), "nested", "results.jsonl")

	w, err := resultlog.Open(path)
	rq.NoError(err)

	answer := domain.FloatAnswer(-3.5)
	rq.NoError(w.Publish(context.Background(), domain.Result{ID: "a", Success: true, Text: "-3.5 meters", Answer: &answer}))
	rq.NoError(w.Publish(context.Background(), domain.Result{ID: "b", ErrorKind: domain.ErrorKindTimeout, Error: "request timeout"}))
	rq.NoError(w.Close())

	w, err = resultlog.Open(path)
	rq.NoError(err)
	rq.NoError(w.Publish(context.Background(), domain.Result{ID: "c", Success: true}))
	rq.NoError(w.Close())

	f, err := os.Open(path)
	rq.NoError(err)
	defer f.Close()

	var results []domain.Result
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r domain.Result
		rq.NoError(json.Unmarshal(scanner.Bytes(), &r))
		results = append(results, r)
	}
	rq.NoError(scanner.Err())

	rq.Len(results, 3)
	rq.Equal(domain.FloatAnswer(-3.5), *results[0].Answer)
	rq.Equal(domain.ErrorKindTimeout, results[1].ErrorKind)
	rq.Nil(results[1].Answer)
	rq.Equal("c", results[2].ID)
}
