package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const casePage = `<html><head><title>Fallback</title></head><body>
<header><div class="tn-atom">Menu</div></header>
<article>
  <h1>Magnit</h1>
  <div class="tn-atom">Magnit</div>
  <div class="tn-atom">retail chatbot support</div>
  <div class="tn-atom">rolled out in six weeks</div>
</article>
<footer><div class="tn-atom">Contacts</div></footer>
</body></html>`

const titleOnlyPage = `<html><head><title>Kazan project</title></head><body>
<p>classification engine for marketplace sellers</p>
</body></html>`

func TestFetchParsesCasePages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/magnit":
			_, _ = w.Write([]byte(casePage))
		case "/kazan":
			_, _ = w.Write([]byte(titleOnlyPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	scraper := New(Options{})
	got, err := scraper.Fetch(context.Background(), []string{server.URL + "/magnit", server.URL + "/kazan"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Fetch() returned %d records, want 2", len(got))
	}

	if got[0].Title != "Magnit" {
		t.Fatalf("record[0] title = %q", got[0].Title)
	}
	if !strings.Contains(got[0].Text, "retail chatbot support") {
		t.Fatalf("record[0] text = %q", got[0].Text)
	}
	if strings.Contains(got[0].Text, "Menu") || strings.Contains(got[0].Text, "Contacts") {
		t.Fatalf("record[0] text includes page chrome: %q", got[0].Text)
	}
	if strings.Contains(got[0].Text, "Magnit") {
		t.Fatalf("record[0] text repeats the title: %q", got[0].Text)
	}

	// No h1 falls back to the document title; no tn-atom falls back to paragraphs.
	if got[1].Title != "Kazan project" {
		t.Fatalf("record[1] title = %q", got[1].Title)
	}
	if !strings.Contains(got[1].Text, "classification engine") {
		t.Fatalf("record[1] text = %q", got[1].Text)
	}
}

func TestFetchSkipsFailedURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(casePage))
	}))
	defer server.Close()

	scraper := New(Options{})
	got, err := scraper.Fetch(context.Background(), []string{
		server.URL + "/broken",
		server.URL + "/ok",
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("Fetch() returned %d records, want 1 (broken url skipped)", len(got))
	}
	if got[0].URL != server.URL+"/ok" {
		t.Fatalf("record url = %q", got[0].URL)
	}
}

func TestFetchAllURLsFailingReturnsEmptyCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	scraper := New(Options{})
	got, err := scraper.Fetch(context.Background(), []string{server.URL + "/a", server.URL + "/b"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Fetch() returned %d records, want 0", len(got))
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.toml")
	content := `
version = 1

[scrape]
urls = [
  "https://example.com/cases/magnit",
  "  ",
  "https://example.com/cases/kazan",
]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sources: %v", err)
	}

	urls, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("LoadSources() = %d urls, want 2", len(urls))
	}
	if urls[0] != "https://example.com/cases/magnit" || urls[1] != "https://example.com/cases/kazan" {
		t.Fatalf("LoadSources() = %v", urls)
	}
}

func TestLoadSourcesRejectsBadProfiles(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(empty, []byte("version = 1\n[scrape]\nurls = []\n"), 0o644); err != nil {
		t.Fatalf("write sources: %v", err)
	}
	if _, err := LoadSources(empty); err == nil {
		t.Fatalf("LoadSources() expected error for empty url list")
	}

	wrongVersion := filepath.Join(dir, "v2.toml")
	if err := os.WriteFile(wrongVersion, []byte("version = 2\n[scrape]\nurls = [\"https://x\"]\n"), 0o644); err != nil {
		t.Fatalf("write sources: %v", err)
	}
	if _, err := LoadSources(wrongVersion); err == nil {
		t.Fatalf("LoadSources() expected error for unsupported version")
	}
}
