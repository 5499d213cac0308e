package qa

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"casebot/internal/domain/cases"
	"casebot/internal/ports"
)

type fakeCompleter struct {
	mu     sync.Mutex
	calls  int
	reply  string
	err    error
	delay  time.Duration
	prompt ports.Prompt
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt ports.Prompt) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompt = prompt
	delay := f.delay
	reply := f.reply
	err := f.err
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCompleter) lastPrompt() ports.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompt
}

func rankedRecords() []cases.Record {
	return []cases.Record{
		{Title: "Magnit", Text: "retail chatbot support", URL: "https://example.com/magnit"},
		{Title: "Kazan", Text: "retail classification engine", URL: "https://example.com/kazan"},
	}
}

func TestSynthesizerAnswersAndCaches(t *testing.T) {
	cache := newMemCache()
	completer := &fakeCompleter{reply: "1) [Magnit](https://example.com/magnit)"}
	synth := NewSynthesizer(cache, completer, SynthesizerOptions{})
	ctx := context.Background()

	first := synth.Answer(ctx, "retail chatbot", rankedRecords())
	if first != "1) [Magnit](https://example.com/magnit)" {
		t.Fatalf("Answer() = %q", first)
	}
	if completer.callCount() != 1 {
		t.Fatalf("completer calls = %d, want 1", completer.callCount())
	}

	second := synth.Answer(ctx, "retail chatbot", rankedRecords())
	if second != first {
		t.Fatalf("cached Answer() = %q, want byte-identical %q", second, first)
	}
	if completer.callCount() != 1 {
		t.Fatalf("completer calls after cache hit = %d, want 1", completer.callCount())
	}
}

func TestSynthesizerCacheKeyTrimsQuestion(t *testing.T) {
	cache := newMemCache()
	completer := &fakeCompleter{reply: "answer"}
	synth := NewSynthesizer(cache, completer, SynthesizerOptions{})
	ctx := context.Background()

	synth.Answer(ctx, "  retail chatbot  ", rankedRecords())
	synth.Answer(ctx, "retail chatbot", rankedRecords())

	if completer.callCount() != 1 {
		t.Fatalf("completer calls = %d, want 1 (trimmed questions share a key)", completer.callCount())
	}
	if _, found, _ := cache.Get(ctx, "llm_response:retail chatbot"); !found {
		t.Fatalf("expected answer under trimmed cache key")
	}
}

func TestSynthesizerEmptyRecordsSkipsCacheAndModel(t *testing.T) {
	cache := newMemCache()
	completer := &fakeCompleter{reply: "never"}
	synth := NewSynthesizer(cache, completer, SynthesizerOptions{})

	got := synth.Answer(context.Background(), "anything", nil)
	if got != FallbackNoData {
		t.Fatalf("Answer() = %q, want no-data fallback", got)
	}
	if completer.callCount() != 0 {
		t.Fatalf("completer calls = %d, want 0", completer.callCount())
	}
	if len(cache.data) != 0 {
		t.Fatalf("cache entries = %d, want 0", len(cache.data))
	}
}

func TestSynthesizerTimeoutFallbackDoesNotCache(t *testing.T) {
	cache := newMemCache()
	completer := &fakeCompleter{reply: "late", delay: 500 * time.Millisecond}
	synth := NewSynthesizer(cache, completer, SynthesizerOptions{ModelTimeout: 30 * time.Millisecond})
	ctx := context.Background()

	got := synth.Answer(ctx, "retail chatbot", rankedRecords())
	if got != FallbackModelTimeout {
		t.Fatalf("Answer() = %q, want timeout fallback", got)
	}

	// No cache entry was written: asking again invokes the model a second time.
	synth.Answer(ctx, "retail chatbot", rankedRecords())
	if completer.callCount() != 2 {
		t.Fatalf("completer calls = %d, want 2", completer.callCount())
	}
}

func TestSynthesizerModelErrorFallbackDoesNotCache(t *testing.T) {
	cache := newMemCache()
	completer := &fakeCompleter{err: errors.New("quota exceeded")}
	synth := NewSynthesizer(cache, completer, SynthesizerOptions{})

	got := synth.Answer(context.Background(), "retail chatbot", rankedRecords())
	if got != FallbackModelError {
		t.Fatalf("Answer() = %q, want generic fallback", got)
	}
	if len(cache.data) != 0 {
		t.Fatalf("cache entries = %d, want 0", len(cache.data))
	}
}

func TestSynthesizerPromptShape(t *testing.T) {
	cache := newMemCache()
	completer := &fakeCompleter{reply: "ok"}
	synth := NewSynthesizer(cache, completer, SynthesizerOptions{})

	synth.Answer(context.Background(), "retail chatbot", rankedRecords())

	prompt := completer.lastPrompt()
	if prompt.System == "" {
		t.Fatalf("prompt has no system instruction")
	}
	if !strings.Contains(prompt.User, "[1] Magnit — https://example.com/magnit") {
		t.Fatalf("prompt missing enumerated first case:\n%s", prompt.User)
	}
	if !strings.Contains(prompt.User, "[2] Kazan — https://example.com/kazan") {
		t.Fatalf("prompt missing enumerated second case:\n%s", prompt.User)
	}
	if !strings.Contains(prompt.User, "Question: retail chatbot") {
		t.Fatalf("prompt missing the question:\n%s", prompt.User)
	}
	if !strings.Contains(prompt.User, "3-4 items") {
		t.Fatalf("prompt missing the selection constraint:\n%s", prompt.User)
	}
	if !strings.Contains(prompt.User, "Never invent titles or links") {
		t.Fatalf("prompt missing the no-invention constraint:\n%s", prompt.User)
	}
	if !strings.Contains(prompt.User, "same company twice") {
		t.Fatalf("prompt missing the de-duplication constraint:\n%s", prompt.User)
	}
}
