package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"spoken-answer/internal/domain"
)

const SourceDirectText = "direct_text"

type AnswerService struct {
	audio       AudioSource
	stt         SpeechToText
	interpreter Interpreter
	sink        ResultSink
	logger      *slog.Logger
	now         func() time.Time
}

func NewAnswerService(
	audio AudioSource,
	stt SpeechToText,
	interpreter Interpreter,
	sink ResultSink,
	logger *slog.Logger,
) *AnswerService {
	return &AnswerService{
		audio:       audio,
		stt:         stt,
		interpreter: interpreter,
		sink:        sink,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *AnswerService) Run(ctx context.Context) error {
	s.logger.Info("starting audio source", "source", s.audio.Name())
	if err := s.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer s.audio.Stop()

	s.logger.Info("service ready, waiting for answers")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if _, err := s.ProcessOne(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Error("processing submission", "error", err)
			}
		}
	}
}

// ProcessOne waits for the next submission and turns it into a Result.
// Transcription failures are returned as unsuccessful Results, not errors;
// the error is reserved for failures to obtain a submission at all.
func (s *AnswerService) ProcessOne(ctx context.Context) (*domain.Result, error) {
	payload, err := s.audio.NextSubmission(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting submission: %w", err)
	}

	if len(payload) == 0 {
		return nil, nil
	}

	started := s.now()
	result := domain.Result{
		ID:         xid.New().String(),
		ReceivedAt: started,
	}

	var transcript domain.Transcript

	if directText, isText := IsTextSubmission(payload); isText {
		s.logger.Info("received text answer directly", "id", result.ID, "text", directText)
		transcript = domain.Transcript{
			Text:       directText,
			Source:     SourceDirectText,
			Confidence: domain.DefaultConfidence,
		}
	} else {
		s.logger.Info("received audio", "id", result.ID, "bytes", len(payload))

		transcript, err = s.stt.Transcribe(ctx, payload)
		if err != nil {
			result.Source = transcript.Source
			result.ProcessingTime = s.now().Sub(started)
			result.ErrorKind = domain.KindOf(err)
			if errors.Is(err, context.Canceled) {
				result.ErrorKind = domain.ErrorKindCancelled
			}
			result.Error = err.Error()

			s.logger.Warn("transcription failed",
				"id", result.ID,
				"kind", result.ErrorKind,
				"error", err,
			)
			s.publish(ctx, result)
			return &result, nil
		}

		s.logger.Info("transcribed", "id", result.ID, "text", transcript.Text)
	}

	s.complete(&result, transcript, started)
	s.publish(ctx, result)
	return &result, nil
}

// Evaluate interprets text synchronously, bypassing the audio source.
func (s *AnswerService) Evaluate(ctx context.Context, text string) domain.Result {
	started := s.now()
	result := domain.Result{
		ID:         xid.New().String(),
		ReceivedAt: started,
	}

	s.complete(&result, domain.Transcript{
		Text:       text,
		Source:     SourceDirectText,
		Confidence: domain.DefaultConfidence,
	}, started)
	s.publish(ctx, result)
	return result
}

func (s *AnswerService) complete(result *domain.Result, transcript domain.Transcript, started time.Time) {
	text := strings.TrimSpace(transcript.Text)
	answer := s.interpreter.Interpret(text)

	result.Success = true
	result.Text = text
	result.Answer = &answer
	result.Confidence = transcript.Confidence
	result.Source = transcript.Source
	result.ProcessingTime = s.now().Sub(started)

	s.logger.Info("interpreted answer",
		"id", result.ID,
		"answer", answer.String(),
		"kind", answer.Kind(),
		"source", result.Source,
		"processing_time", result.ProcessingTime,
	)
}

func (s *AnswerService) publish(ctx context.Context, result domain.Result) {
	if err := s.sink.Publish(ctx, result); err != nil {
		s.logger.Error("publishing result", "id", result.ID, "error", err)
	}
}

func IsTextSubmission(data []byte) (string, bool) {
	if len(data) > len(domain.TextAnswerPrefix) && string(data[:len(domain.TextAnswerPrefix)]) == domain.TextAnswerPrefix {
		return string(data[len(domain.TextAnswerPrefix):]), true
	}
	return "", false
}
