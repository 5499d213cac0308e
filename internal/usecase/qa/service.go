package qa

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/domain/cases"
)

type ServiceOptions struct {
	AskTimeout time.Duration
}

// Service composes store, ranker and synthesizer for one incoming question.
// Every path is terminal within a single request; no retries are attempted.
type Service struct {
	store      *Store
	synth      *Synthesizer
	askTimeout time.Duration
}

func NewService(store *Store, synth *Synthesizer, opts ServiceOptions) *Service {
	askTimeout := opts.AskTimeout
	if askTimeout <= 0 {
		askTimeout = 10 * time.Second
	}

	return &Service{
		store:      store,
		synth:      synth,
		askTimeout: askTimeout,
	}
}

// Answer never fails: timeouts and failures resolve to fixed fallback
// strings. The synthesizer's output is returned unmodified.
func (s *Service) Answer(ctx context.Context, question string) string {
	if ctx == nil {
		ctx = context.Background()
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "qa.service"))
	logging.Info(logCtx, "question received", slog.Int("length", len(question)))

	askCtx, cancel := context.WithTimeout(logCtx, s.askTimeout)
	defer cancel()

	collection := s.store.Get(askCtx)
	if askCtx.Err() != nil || len(collection) == 0 {
		logging.Warn(logCtx, "case data unavailable",
			slog.Bool("timed_out", askCtx.Err() != nil),
			slog.Int("cases", len(collection)))
		return FallbackUnavailable
	}

	matches := cases.Search(question, collection)
	if len(matches) == 0 {
		logging.Info(logCtx, "no cases matched the question")
		return FallbackNotFound
	}

	records := make([]cases.Record, 0, len(matches))
	for _, match := range matches {
		records = append(records, match.Record)
	}

	return s.synth.Answer(logCtx, strings.TrimSpace(question), records)
}

// Greeting is the fixed response for a start interaction, independent of the
// pipeline.
func (s *Service) Greeting() string {
	return GreetingMessage
}
