package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docquery/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docquery/internal/core/domain"
)

// mockQuery implements driving.QueryService for testing.
type mockQuery struct {
	answer *domain.Answer
	err    error

	lastTenant   string
	lastQuestion string
}

func (m *mockQuery) Ask(_ context.Context, tenantID, question string, _ int) (*domain.Answer, error) {
	m.lastTenant = tenantID
	m.lastQuestion = question
	return m.answer, m.err
}

func (m *mockQuery) RelevantChunks(_ context.Context, _, _ string, _ int) ([]domain.ScoredChunk, error) {
	return nil, m.err
}

func newReadyView(query *mockQuery) *View {
	v := NewView(nil, query, "acme")
	v.SetDimensions(100, 30)
	return v
}

func TestNewView_Defaults(t *testing.T) {
	v := NewView(nil, &mockQuery{}, "acme")

	assert.False(t, v.Ready())
	assert.False(t, v.Thinking())
	assert.Zero(t, v.History())
	assert.Empty(t, v.InputValue())
}

func TestView_WindowSizeMakesReady(t *testing.T) {
	v := NewView(nil, &mockQuery{}, "acme")

	v, _ = v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, v.Ready())
}

func TestView_SubmitEmptyDoesNothing(t *testing.T) {
	v := newReadyView(&mockQuery{})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Thinking())
}

func TestView_SubmitSendsQuestion(t *testing.T) {
	query := &mockQuery{answer: &domain.Answer{Text: "42.", Model: "llama3.2"}}
	v := newReadyView(query)
	v.SetInputValue("what is the answer?")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, v.Thinking())
	assert.Empty(t, v.InputValue(), "input clears on submit")
}

func TestView_PerformAskReportsAnswer(t *testing.T) {
	query := &mockQuery{answer: &domain.Answer{Text: "42.", Model: "llama3.2"}}
	v := newReadyView(query)

	msg := v.performAsk("what is the answer?")()

	received, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, "what is the answer?", received.Question)
	require.NotNil(t, received.Answer)
	assert.Equal(t, "42.", received.Answer.Text)
	assert.Equal(t, "acme", query.lastTenant)
}

func TestView_AnswerAppendsToHistory(t *testing.T) {
	v := newReadyView(&mockQuery{})
	v.thinking = true

	answer := &domain.Answer{
		Text:  "The warranty lasts two years.",
		Model: "llama3.2",
		Sources: []domain.SourceRef{
			{Number: 1, DocumentName: "manual.pdf", PageNumber: 12, Score: 0.91},
		},
	}
	v, _ = v.Update(messages.AnswerReceived{Question: "warranty?", Answer: answer})

	assert.False(t, v.Thinking())
	assert.Equal(t, 1, v.History())
	assert.NoError(t, v.Err())

	transcript := v.renderTranscript()
	assert.Contains(t, transcript, "warranty?")
	assert.Contains(t, transcript, "two years")
	assert.Contains(t, transcript, "manual.pdf")
	assert.Contains(t, transcript, "page 12")
}

func TestView_AnswerErrorIsRecorded(t *testing.T) {
	v := newReadyView(&mockQuery{})
	v.thinking = true

	v, _ = v.Update(messages.AnswerReceived{Question: "q", Err: errors.New("llm down")})

	assert.False(t, v.Thinking())
	assert.Equal(t, 1, v.History())
	assert.EqualError(t, v.Err(), "llm down")
	assert.Contains(t, v.renderTranscript(), "llm down")
}

func TestView_KeysFrozenWhileThinking(t *testing.T) {
	v := newReadyView(&mockQuery{})
	v.thinking = true

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Nil(t, cmd)
	assert.Empty(t, v.InputValue())
}

func TestView_TypingFillsInput(t *testing.T) {
	v := newReadyView(&mockQuery{})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'i'}})

	assert.Equal(t, "hi", v.InputValue())
}

func TestView_ViewRendersSections(t *testing.T) {
	v := newReadyView(&mockQuery{})

	out := v.View()

	assert.Contains(t, out, "docquery")
	assert.Contains(t, out, "tenant: acme")
	assert.Contains(t, out, "No questions yet.")
}

func TestView_ViewBeforeReady(t *testing.T) {
	v := NewView(nil, &mockQuery{}, "acme")

	assert.Contains(t, v.View(), "Initialising")
}
