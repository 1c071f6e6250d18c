package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"spoken-answer/internal/domain"
	"spoken-answer/pkg/logx"
)

const (
	headerNameTraceID = "X-Trace-Id"
	maxAudioBytes     = 10 * 1024 * 1024
	maxTextBytes      = 1024
)

// Evaluator interprets text synchronously for the /interpret endpoint.
type Evaluator interface {
	Evaluate(ctx context.Context, text string) domain.Result
}

type HTTPSource struct {
	addr        string
	server      *http.Server
	audioChan   chan []byte
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	router      chi.Router
	closeOnce   sync.Once
	rateLimiter *RateLimiter
	authToken   string
	evaluator   Evaluator
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		audioChan:   make(chan []byte, 10),
		logger:      logger,
		router:      chi.NewRouter(),
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 requests per minute per IP
		authToken:   authToken,
	}

	h.router.Use(traceID)
	h.router.Group(func(r chi.Router) {
		r.Use(h.rateLimiter.Middleware, h.requireToken)
		r.Post("/audio", h.handleAudio)
		r.Post("/text", h.handleText)
		r.Post("/interpret", h.handleInterpret)
	})
	// No rate limiting on health check
	h.router.Get("/health", h.handleHealth)
	return h
}

// SetEvaluator enables POST /interpret. Without it the endpoint answers 503.
func (h *HTTPSource) SetEvaluator(e Evaluator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evaluator = e
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("HTTP answer server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", logx.Error(err))
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", logx.Error(err))
			if err := h.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.closeOnce.Do(func() {
		close(h.audioChan)
	})
	h.running = false
	return nil
}

func (h *HTTPSource) NextSubmission(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case audio, ok := <-h.audioChan:
		if !ok {
			return nil, fmt.Errorf("submission channel closed")
		}
		return audio, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.router
}

func (h *HTTPSource) InjectAudio(data []byte) {
	select {
	case h.audioChan <- data:
	default:
	}
}

func (h *HTTPSource) handleAudio(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	data, err := readBody(w, r, maxAudioBytes)
	if err != nil {
		h.logger.Error("reading audio body", logx.Error(err))
		writeBodyError(w, err)
		return
	}

	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	select {
	case h.audioChan <- data:
		h.logger.Info("received audio via HTTP", "bytes", len(data), logx.FieldTraceID, w.Header().Get(headerNameTraceID))
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "bytes": len(data)})
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	text, ok := readText(w, r)
	if !ok {
		return
	}

	marker := []byte(domain.TextAnswerPrefix + text)

	select {
	case h.audioChan <- marker:
		h.logger.Info("received text answer via HTTP", "text", text, logx.FieldTraceID, w.Header().Get(headerNameTraceID))
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "text": text})
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

type interpretResponse struct {
	Result  domain.Result `json:"result"`
	Correct *bool         `json:"correct,omitempty"`
}

func (h *HTTPSource) handleInterpret(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	evaluator := h.evaluator
	h.mu.Unlock()

	if evaluator == nil {
		http.Error(w, "interpreter not ready", http.StatusServiceUnavailable)
		return
	}

	text, ok := readText(w, r)
	if !ok {
		return
	}

	resp := interpretResponse{Result: evaluator.Evaluate(r.Context(), text)}

	if expected := r.URL.Query()["expected"]; len(expected) > 0 && resp.Result.Answer != nil {
		correct := resp.Result.Answer.Matches(expected...)
		resp.Correct = &correct
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	running := h.running
	queueSize := len(h.audioChan)
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{"status": status, "running": running, "queue_size": queueSize})
}

// requireToken checks X-Auth-Token, or the token query parameter, when an
// auth token is configured.
func (h *HTTPSource) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" {
			token := r.Header.Get("X-Auth-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}

			if token != h.authToken {
				h.logger.Warn("unauthorized request", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerNameTraceID)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(headerNameTraceID, id)
		next.ServeHTTP(w, r)
	})
}

func readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	defer r.Body.Close()

	data, err := readBody(w, r, maxTextBytes)
	if err != nil {
		writeBodyError(w, err)
		return "", false
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return "", false
	}
	return text, true
}

// readBody rejects bodies over limit instead of truncating them.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "failed to read body", http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
