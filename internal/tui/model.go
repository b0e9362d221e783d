// Package tui is the interactive chat front end.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eduverse/internal/chunker"
	"eduverse/internal/dialogue"
	"eduverse/internal/domain"
)

// AdvisorPort is the TUI-facing subset of a conversation session.
type AdvisorPort interface {
	Ask(ctx context.Context, text string) (domain.Turn, error)
	Reset()
}

type exchange struct {
	turn domain.Turn
	err  error
}

type answerMsg exchange

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	advisor  AdvisorPort
	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	summary  string
	status   string
	pending  bool
	ready    bool
}

// New creates a chat model. summary is shown under the title.
func New(ctx context.Context, advisor AdvisorPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about admissions, SOPs, scholarships or test prep"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		advisor:  advisor,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Ready. Enter to ask, Ctrl+R to start over, Ctrl+C to quit.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		turn, err := m.advisor.Ask(m.ctx, question)
		if err != nil {
			turn = domain.Turn{Question: question}
		}
		return answerMsg{turn: turn, err: err}
	}
}

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil
	case answerMsg:
		m.pending = false
		m.history = append(m.history, exchange(msg))
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			p := msg.turn.Prediction
			m.status = fmt.Sprintf("intent=%s confidence=%.2f evidence=%d", p.Intent, p.Confidence, len(msg.turn.Evidence))
			if known := dialogue.Summary(msg.turn.State); known != "" {
				m.status += " | " + known
			}
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.advisor.Reset()
			m.history = nil
			m.status = "Conversation reset."
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			m.pending = true
			m.input.SetValue("")
			m.status = "Thinking..."
			return m, m.ask(q)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("EduVerse Advisor")
	summary := summaryStyle.Render(m.summary)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "No questions yet."
	}
	var b strings.Builder
	for i, ex := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + ex.turn.Question))
		b.WriteString("\n")
		if ex.err != nil {
			b.WriteString(errorStyle.Render(ex.err.Error()))
			continue
		}
		b.WriteString(highlightEvidence(ex.turn.Answer, ex.turn.Evidence, ex.turn.Tokens))
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle         = lipgloss.NewStyle().Bold(true)
	summaryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightEvidence emphasizes, inside each evidence passage of the answer,
// the sentence sharing the most tokens with the question.
func highlightEvidence(answer string, evidence []domain.ScoredDocument, queryTokens []string) string {
	if len(queryTokens) == 0 {
		return answer
	}
	for _, ev := range evidence {
		text := ev.Document.Text
		if !strings.Contains(answer, text) {
			continue
		}
		answer = strings.Replace(answer, text, highlightBestSentence(text, queryTokens), 1)
	}
	return answer
}

func highlightBestSentence(text string, queryTokens []string) string {
	sentences := chunker.SplitSentences(text)
	if len(sentences) == 0 {
		return text
	}
	query := make(map[string]struct{}, len(queryTokens))
	for _, t := range queryTokens {
		query[t] = struct{}{}
	}
	bestIdx, bestScore := 0, 0
	for i, s := range sentences {
		if score := tokenOverlapScore(query, s); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestScore == 0 {
		return text
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func tokenOverlapScore(query map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := query[t]; ok {
			score++
		}
	}
	return score
}
