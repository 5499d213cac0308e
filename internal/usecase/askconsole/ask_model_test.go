package askconsole

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestUpdateAppendsAnswerAndTrimsHistory(t *testing.T) {
	model := &askModel{}

	var current tea.Model = model
	for i := 0; i < maxShownExchanges+3; i++ {
		current, _ = current.Update(answerMsg{question: "q", answer: "a"})
	}

	got := current.(*askModel)
	if len(got.exchanges) != maxShownExchanges {
		t.Fatalf("exchanges = %d, want %d", len(got.exchanges), maxShownExchanges)
	}
	if got.waiting {
		t.Fatalf("waiting should reset after an answer")
	}
}

func TestUpdateIgnoresEnterWhileWaiting(t *testing.T) {
	model := &askModel{waiting: true}
	model.input.SetValue("another question")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("Update() issued a command while an answer is pending")
	}
}

func TestViewShowsExchanges(t *testing.T) {
	model := &askModel{
		exchanges: []exchange{{question: "retail chatbot", answer: "1) [Magnit](u1)"}},
	}

	view := model.View()
	if !strings.Contains(view, "retail chatbot") {
		t.Fatalf("View() missing question:\n%s", view)
	}
	if !strings.Contains(view, "[Magnit](u1)") {
		t.Fatalf("View() missing answer:\n%s", view)
	}
}
