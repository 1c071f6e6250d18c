// Package azure implements speech-to-text with the Azure Fast Transcription
// API.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"spoken-answer/internal/domain"
	"spoken-answer/internal/infra"
)

const (
	Source         = "azure_fast_transcription"
	APIVersion     = "2024-05-15-preview"
	DefaultLocale  = "en-US"
	requestTimeout = 30 * time.Second
)

type FastTranscriptionClient struct {
	apiKey     string
	region     string
	endpoint   string
	locales    []string
	httpClient *http.Client
	retry      infra.RetryConfig
}

// NewFastTranscriptionClient fails with a config error when the key or the
// region is missing.
func NewFastTranscriptionClient(apiKey, region string, locales ...string) (*FastTranscriptionClient, error) {
	if apiKey == "" || region == "" {
		return nil, domain.NewTranscriptionError(
			domain.ErrorKindConfig,
			"azure credentials not found: set AZURE_SPEECH_KEY and AZURE_SPEECH_REGION",
		)
	}
	endpoint := fmt.Sprintf("https://%s.api.cognitive.microsoft.com/speechtotext/transcriptions:transcribe", region)

	c := NewFastTranscriptionClientWithURL(apiKey, endpoint, locales...)
	c.region = region
	return c, nil
}

func NewFastTranscriptionClientWithURL(apiKey, endpoint string, locales ...string) *FastTranscriptionClient {
	if len(locales) == 0 {
		locales = []string{DefaultLocale}
	}
	return &FastTranscriptionClient{
		apiKey:     apiKey,
		endpoint:   endpoint,
		locales:    locales,
		httpClient: &http.Client{Timeout: requestTimeout},
		retry:      infra.DefaultRetryConfig(),
	}
}

func (c *FastTranscriptionClient) WithRetry(cfg infra.RetryConfig) *FastTranscriptionClient {
	c.retry = cfg
	return c
}

func (c *FastTranscriptionClient) WithHTTPClient(client *http.Client) *FastTranscriptionClient {
	c.httpClient = client
	return c
}

type definition struct {
	Locales []string `json:"locales"`
}

type phrase struct {
	Text string `json:"text"`
}

type transcriptionResponse struct {
	CombinedPhrases []phrase `json:"combinedPhrases"`
	Phrases         []phrase `json:"phrases"`
}

func (c *FastTranscriptionClient) Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error) {
	return c.transcribe(ctx, "audio.wav", audio)
}

// TranscribeFile uploads the WAV file at path.
func (c *FastTranscriptionClient) TranscribeFile(ctx context.Context, path string) (domain.Transcript, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return domain.Transcript{Source: Source}, domain.WrapTranscriptionError(err, domain.ErrorKindIO, "reading audio file")
	}
	return c.transcribe(ctx, filepath.Base(path), audio)
}

func (c *FastTranscriptionClient) transcribe(ctx context.Context, filename string, audio []byte) (domain.Transcript, error) {
	var result transcriptionResponse

	retryErr := infra.WithRetry(ctx, c.retry, func() error {
		body, contentType, err := c.buildForm(filename, audio)
		if err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "building request body"))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
		if err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "creating request"))
		}

		q := req.URL.Query()
		q.Set("api-version", APIVersion)
		req.URL.RawQuery = q.Encode()

		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return infra.ClassifyRequestError(err, fmt.Sprintf("request timeout (>%s)", requestTimeout))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return infra.HTTPStatusError(resp.StatusCode, respBody)
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return infra.Permanent(domain.WrapTranscriptionError(err, domain.ErrorKindIO, "decoding response"))
		}

		return nil
	})

	if retryErr != nil {
		return domain.Transcript{Source: Source}, retryErr
	}

	return domain.Transcript{
		Text:       extractText(result),
		Source:     Source,
		Confidence: domain.DefaultConfidence,
	}, nil
}

func (c *FastTranscriptionClient) buildForm(filename string, audio []byte) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filename))
	header.Set("Content-Type", "audio/wav")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating audio part: %w", err)
	}
	if _, err = part.Write(audio); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}

	def, err := json.Marshal(definition{Locales: c.locales})
	if err != nil {
		return nil, "", fmt.Errorf("encoding definition: %w", err)
	}
	if err = writer.WriteField("definition", string(def)); err != nil {
		return nil, "", fmt.Errorf("writing definition field: %w", err)
	}

	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// extractText prefers the first combined phrase and falls back to joining
// the individual phrases.
func extractText(resp transcriptionResponse) string {
	var text string
	if len(resp.CombinedPhrases) > 0 {
		text = resp.CombinedPhrases[0].Text
	} else if len(resp.Phrases) > 0 {
		text = strings.Join(lo.Map(resp.Phrases, func(p phrase, _ int) string {
			return p.Text
		}), " ")
	}
	return strings.TrimSpace(text)
}

type ServiceInfo struct {
	Service        string   `json:"service"`
	Region         string   `json:"region"`
	Endpoint       string   `json:"endpoint"`
	Locales        []string `json:"locales"`
	APIVersion     string   `json:"api_version"`
	HasCredentials bool     `json:"has_credentials"`
}

func (c *FastTranscriptionClient) Info() ServiceInfo {
	return ServiceInfo{
		Service:        "Azure Fast Transcription API",
		Region:         c.region,
		Endpoint:       c.endpoint,
		Locales:        c.locales,
		APIVersion:     APIVersion,
		HasCredentials: c.apiKey != "",
	}
}
