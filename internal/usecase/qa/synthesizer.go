package qa

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/domain/cases"
	"casebot/internal/errs"
	"casebot/internal/ports"
)

const answerKeyPrefix = "llm_response:"

var errModelTimeout = errors.New("model call timed out")

type SynthesizerOptions struct {
	AnswerTTL    time.Duration
	ModelTimeout time.Duration
}

// Synthesizer turns ranked cases plus a question into a cited answer. The
// answer cache fronts the model: an identical question within the TTL is
// served without a model call. Failures degrade to fixed fallback strings.
type Synthesizer struct {
	cache     ports.Cache
	completer ports.Completer
	answerTTL time.Duration
	timeout   time.Duration
}

func NewSynthesizer(cache ports.Cache, completer ports.Completer, opts SynthesizerOptions) *Synthesizer {
	answerTTL := opts.AnswerTTL
	if answerTTL <= 0 {
		answerTTL = 3 * time.Hour
	}
	timeout := opts.ModelTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Synthesizer{
		cache:     cache,
		completer: completer,
		answerTTL: answerTTL,
		timeout:   timeout,
	}
}

// Answer always returns a user-displayable string. The cache is written only
// on synthesis success, so timeouts and errors leave the next identical
// question free to retry the model.
func (s *Synthesizer) Answer(ctx context.Context, question string, records []cases.Record) string {
	if ctx == nil {
		ctx = context.Background()
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "qa.synthesizer"))

	if len(records) == 0 {
		return FallbackNoData
	}

	key := answerKeyPrefix + strings.TrimSpace(question)

	cached, found, err := s.cache.Get(logCtx, key)
	if err != nil {
		logging.Warn(logCtx, "answer cache read failed", slog.Any("err", errs.Loggable(err)))
	} else if found {
		logging.Info(logCtx, "answer served from cache")
		return cached
	}

	answer, err := s.complete(logCtx, buildPrompt(question, records))
	switch {
	case errors.Is(err, errModelTimeout) || errors.Is(err, context.DeadlineExceeded):
		logging.Warn(logCtx, "model call timed out", slog.Duration("timeout", s.timeout))
		return FallbackModelTimeout
	case err != nil:
		logging.Error(logCtx, "model call failed", slog.Any("err", errs.Loggable(err)))
		return FallbackModelError
	}

	if err := s.cache.Set(logCtx, key, answer, s.answerTTL); err != nil {
		logging.Warn(logCtx, "answer cache write failed", slog.Any("err", errs.Loggable(err)))
	}

	return answer
}

// complete bounds the caller's wait on the model. The underlying call runs on
// its own detached deadline; a wait that expires here does not guarantee the
// call has been released.
func (s *Synthesizer) complete(ctx context.Context, prompt ports.Prompt) (string, error) {
	type completion struct {
		text string
		err  error
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)

	results := make(chan completion, 1)
	go func() {
		defer cancel()
		text, err := s.completer.Complete(callCtx, prompt)
		results <- completion{text: text, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		return res.text, res.err
	case <-timer.C:
		return "", errModelTimeout
	case <-ctx.Done():
		return "", errModelTimeout
	}
}
