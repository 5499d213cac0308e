package cases

import (
	"errors"
	"testing"
)

func TestNewRecordTrimsFields(t *testing.T) {
	got, err := NewRecord("  Magnit  ", " retail chatbot \n", " https://example.com/magnit ")
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if got.Title != "Magnit" || got.Text != "retail chatbot" || got.URL != "https://example.com/magnit" {
		t.Fatalf("NewRecord() = %+v", got)
	}
}

func TestNewRecordRejectsMissingURL(t *testing.T) {
	_, err := NewRecord("Magnit", "text", "   ")
	if !errors.Is(err, ErrMissingURL) {
		t.Fatalf("NewRecord() error = %v, want ErrMissingURL", err)
	}
}

func TestNewRecordFallsBackToPlaceholderTitle(t *testing.T) {
	got, err := NewRecord("", "text", "https://example.com")
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if got.Title != PlaceholderTitle {
		t.Fatalf("NewRecord() title = %q, want %q", got.Title, PlaceholderTitle)
	}
}

func TestNewRecordKeepsEmptyText(t *testing.T) {
	got, err := NewRecord("Magnit", "", "https://example.com")
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if got.Text != "" {
		t.Fatalf("NewRecord() text = %q, want empty", got.Text)
	}
}
