package askconsole

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"casebot/internal/usecase/qa"
)

const maxShownExchanges = 6

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	statusStyle   = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type exchange struct {
	question string
	answer   string
}

type answerMsg struct {
	question string
	answer   string
}

type askModel struct {
	ctx       context.Context
	service   *qa.Service
	input     textinput.Model
	exchanges []exchange
	waiting   bool
}

func New(ctx context.Context, service *qa.Service) tea.Model {
	input := textinput.New()
	input.Placeholder = "Ask about the portfolio..."
	input.CharLimit = 500
	input.Width = 72
	input.Focus()

	return &askModel{
		ctx:     ctx,
		service: service,
		input:   input,
	}
}

func (m *askModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *askModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.waiting = true
			m.input.SetValue("")
			return m, m.askCmd(question)
		}
	case answerMsg:
		m.waiting = false
		m.exchanges = append(m.exchanges, exchange{question: msg.question, answer: msg.answer})
		if len(m.exchanges) > maxShownExchanges {
			m.exchanges = m.exchanges[len(m.exchanges)-maxShownExchanges:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *askModel) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		return answerMsg{
			question: question,
			answer:   m.service.Answer(m.ctx, question),
		}
	}
}

func (m *askModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("casebot console"))
	sb.WriteString("\n")
	if m.service != nil {
		sb.WriteString(answerStyle.Render(m.service.Greeting()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for _, ex := range m.exchanges {
		sb.WriteString(questionStyle.Render("> " + ex.question))
		sb.WriteString("\n")
		sb.WriteString(answerStyle.Render(ex.answer))
		sb.WriteString("\n\n")
	}

	if m.waiting {
		sb.WriteString(statusStyle.Render("thinking..."))
		sb.WriteString("\n")
	}

	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter: ask  esc: quit"))
	sb.WriteString("\n")

	return sb.String()
}
