package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"casebot/internal/domain/cases"
	"casebot/internal/ports"
	"casebot/internal/usecase/qa"
)

type stubCache struct {
	data map[string]string
}

func (c *stubCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *stubCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *stubCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type stubScraper struct{}

func (stubScraper) Fetch(_ context.Context, _ []string) (cases.Collection, error) {
	return cases.Collection{
		{Title: "Magnit", Text: "retail chatbot support", URL: "u1"},
	}, nil
}

type stubCompleter struct{}

func (stubCompleter) Complete(_ context.Context, _ ports.Prompt) (string, error) {
	return "1) [Magnit](u1)", nil
}

func newTestRouter() http.Handler {
	cache := &stubCache{data: make(map[string]string)}
	store := qa.NewStore(cache, stubScraper{}, func() ([]string, error) {
		return []string{"u1"}, nil
	}, qa.StoreOptions{TTL: time.Hour, ScrapeTimeout: time.Second})
	synth := qa.NewSynthesizer(cache, stubCompleter{}, qa.SynthesizerOptions{})
	svc := qa.NewService(store, synth, qa.ServiceOptions{AskTimeout: time.Second})
	return NewRouter(svc)
}

func TestAskEndpoint(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"question":"retail chatbot"}`))
	if err != nil {
		t.Fatalf("POST /v1/ask error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}

	var body answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Answer != "1) [Magnit](u1)" {
		t.Fatalf("answer = %q", body.Answer)
	}
}

func TestAskEndpointRejectsEmptyQuestion(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/ask", "application/json",
		strings.NewReader(`{"question":"   "}`))
	if err != nil {
		t.Fatalf("POST /v1/ask error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAskEndpointRejectsBadJSON(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/ask", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST /v1/ask error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGreetingEndpoint(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/v1/greeting")
	if err != nil {
		t.Fatalf("GET /v1/greeting error = %v", err)
	}
	defer resp.Body.Close()

	var body answerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Answer != qa.GreetingMessage {
		t.Fatalf("greeting = %q", body.Answer)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := httptest.NewServer(newTestRouter())
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
