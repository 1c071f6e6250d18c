package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"spoken-answer/internal/domain"
	"spoken-answer/internal/infra"
)

const Source = "openai_whisper"

type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	language   string
	retry      infra.RetryConfig
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	if language == "" {
		language = "en"
	}
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		language:   language,
		retry:      infra.DefaultRetryConfig(),
	}
}

func (c *WhisperClient) WithRetry(cfg infra.RetryConfig) *WhisperClient {
	c.retry = cfg
	return c
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error) {
	var result transcriptionResponse

	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", "audio.wav")
		if err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "creating form file"))
		}

		if _, err = part.Write(audio); err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "writing audio"))
		}

		if err = writer.WriteField("model", "whisper-1"); err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "writing model field"))
		}

		if err = writer.WriteField("language", c.language); err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "writing language field"))
		}

		if err = writer.Close(); err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "closing writer"))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "creating request"))
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return infra.ClassifyRequestError(err, "whisper request timeout")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return infra.HTTPStatusError(resp.StatusCode, respBody)
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, fmt.Sprintf("decoding %s response", Source)))
		}

		return nil
	})

	if retryErr != nil {
		return domain.Transcript{Source: Source}, retryErr
	}

	return domain.Transcript{
		Text:       strings.TrimSpace(result.Text),
		Source:     Source,
		Confidence: domain.DefaultConfidence,
	}, nil
}
