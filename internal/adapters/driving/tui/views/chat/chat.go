// Package chat provides the question/answer chat view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docquery/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docquery/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docquery/internal/core/domain"
	"github.com/custodia-labs/docquery/internal/core/ports/driving"
)

// entry is one question/answer exchange in the transcript.
type entry struct {
	question string
	answer   *domain.Answer
	err      error
}

// View is the chat view: a transcript viewport over the history, a
// question input, and a status line. All retrieval and generation happens
// behind the query service; the view only renders what comes back.
type View struct {
	styles *styles.Styles

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	query    driving.QueryService
	tenantID string
	ctx      context.Context

	entries  []entry
	thinking bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a chat view for the given tenant.
func NewView(s *styles.Styles, query driving.QueryService, tenantID string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question about your documents..."
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	return &View{
		styles:   s,
		input:    ti,
		viewport: viewport.New(80, 16),
		spin:     sp,
		query:    query,
		tenantID: tenantID,
		ctx:      context.Background(),
		width:    80,
		height:   24,
	}
}

// WithContext sets the context used for Ask calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		return v, v.submit()

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	// While a question is in flight the input stays frozen.
	if v.thinking {
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the current question to the query service.
func (v *View) submit() tea.Cmd {
	if v.thinking {
		return nil
	}

	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}

	v.thinking = true
	v.err = nil
	v.input.SetValue("")
	v.input.Blur()

	return tea.Batch(v.performAsk(question), v.spin.Tick)
}

// performAsk runs Ask off the update loop and reports back as a message.
func (v *View) performAsk(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := v.query.Ask(v.ctx, v.tenantID, question, 0)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// handleAnswer appends the exchange to the transcript.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.thinking = false
	v.input.Focus()

	if msg.Err != nil {
		v.err = msg.Err
	}
	v.entries = append(v.entries, entry{
		question: msg.Question,
		answer:   msg.Answer,
		err:      msg.Err,
	})

	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Bottom,
		v.styles.Title.Render("docquery"),
		v.styles.Muted.Render("  tenant: "+v.tenantID),
	)

	transcript := v.styles.Border.Render(v.viewport.View())

	var inputLine string
	if v.thinking {
		inputLine = v.styles.InputField.Render(v.spin.View() + " Thinking...")
	} else {
		inputLine = v.styles.InputField.Render(v.input.View())
	}

	sections := []string{header, transcript, inputLine}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}

	sections = append(sections, v.styles.Help.Render("enter send · pgup/pgdn scroll · esc quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript renders all exchanges for the viewport.
func (v *View) renderTranscript() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("No questions yet.")
	}

	width := v.viewport.Width
	if width < 20 {
		width = 20
	}

	blocks := make([]string, 0, len(v.entries))
	for i := range v.entries {
		blocks = append(blocks, v.renderEntry(&v.entries[i], width))
	}
	return strings.Join(blocks, "\n\n")
}

// renderEntry renders one exchange: question, answer, citations.
func (v *View) renderEntry(e *entry, width int) string {
	lines := []string{v.styles.Question.Render("You: " + e.question)}

	switch {
	case e.err != nil:
		lines = append(lines, v.styles.Error.Width(width).Render("Error: "+e.err.Error()))
	case e.answer != nil:
		lines = append(lines, v.styles.Answer.Width(width).Render(e.answer.Text))
		for _, src := range e.answer.Sources {
			ref := fmt.Sprintf("  [%d] %s, page %d (%.2f)",
				src.Number, src.DocumentName, src.PageNumber, src.Score)
			lines = append(lines, v.styles.Source.Render(ref))
		}
	}

	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	bw, bh := v.styles.Border.GetFrameSize()
	iw, ih := v.styles.InputField.GetFrameSize()

	// Header, input box, help line, and optional error line share the
	// column with the transcript.
	reserved := 1 + ih + 1 + 2 + bh
	vh := height - reserved
	if vh < 3 {
		vh = 3
	}

	v.viewport.Width = maxInt(20, width-bw)
	v.viewport.Height = vh
	v.input.Width = maxInt(20, width-iw-4)

	v.viewport.SetContent(v.renderTranscript())
}

// Ready reports whether the view has received its dimensions.
func (v *View) Ready() bool {
	return v.ready
}

// Thinking reports whether an Ask call is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// History returns the number of recorded exchanges.
func (v *View) History() int {
	return len(v.entries)
}

// Err returns the error from the most recent exchange, if any.
func (v *View) Err() error {
	return v.err
}

// InputValue returns the current input text.
func (v *View) InputValue() string {
	return v.input.Value()
}

// SetInputValue sets the input text.
func (v *View) SetInputValue(value string) {
	v.input.SetValue(value)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
