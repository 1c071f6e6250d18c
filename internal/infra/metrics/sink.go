package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"spoken-answer/internal/domain"
)

const namespace = "spoken_answer"

// Sink records every Result as Prometheus metrics.
type Sink struct {
	results        *prometheus.CounterVec
	processingTime *prometheus.HistogramVec
}

func NewSink(registerer prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Processed submissions by source and outcome.",
		}, []string{"source", "outcome"}),
		processingTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_seconds",
			Help:      "Time from receiving a submission to producing its result.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"source"}),
	}

	for _, c := range []prometheus.Collector{s.results, s.processingTime} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Sink) Publish(_ context.Context, result domain.Result) error {
	source := result.Source
	if source == "" {
		source = "unknown"
	}

	s.results.WithLabelValues(source, Outcome(result)).Inc()
	s.processingTime.WithLabelValues(source).Observe(result.ProcessingTime.Seconds())
	return nil
}

// Outcome is the answer kind for successful results and the error kind
// otherwise.
func Outcome(result domain.Result) string {
	if !result.Success {
		return string(result.ErrorKind)
	}
	if result.Answer == nil {
		return string(domain.AnswerText)
	}
	return string(result.Answer.Kind())
}
