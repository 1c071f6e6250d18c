package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"spoken-answer/internal/domain"
	"spoken-answer/internal/infra/pushover"
)

func TestClient_PublishOnlyFailures(t *testing.T) {
	rq := require.New(t)

	var messages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		messages = append(messages, r.PostForm.Get("message"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("token", "user", server.URL)

	ctx := context.Background()
	rq.NoError(client.Publish(ctx, domain.Result{Success: true, Source: "azure_fast_transcription"}))
	rq.NoError(client.Publish(ctx, domain.Result{
		Source:    "azure_fast_transcription",
		ErrorKind: domain.ErrorKindTimeout,
		Error:     "request timeout (>30s)",
	}))

	rq.Equal([]string{"Transcription failed (azure_fast_transcription, timeout): request timeout (>30s)"}, messages)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("token", "user", server.URL)
	require.ErrorContains(t, client.Notify(context.Background(), "hi"), "pushover error")
}

func TestClient_DisabledWithoutCredentials(t *testing.T) {
	client := pushover.NewClientWithURL("", "", "http://127.0.0.1:1")
	require.NoError(t, client.Notify(context.Background(), "hi"))
}
