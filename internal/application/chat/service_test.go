package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	apperrors "github.com/cocinadelpatito/v1/pkg/errors"
)

type stubModel struct {
	calls    int
	system   string
	messages []outbound.ChatMessage
	deltas   []string
	err      error
}

func (m *stubModel) StreamChat(_ context.Context, system string, messages []outbound.ChatMessage, onDelta func(string) error) error {
	m.calls++
	m.system = system
	m.messages = messages
	for _, d := range m.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return m.err
}

type collectSink struct {
	got []string
}

func (s *collectSink) Delta(text string) error {
	s.got = append(s.got, text)
	return nil
}

func TestConvertTurns(t *testing.T) {
	t.Run("keeps only text parts and joins them", func(t *testing.T) {
		turns := []inbound.ChatTurn{
			{
				Role: "user",
				Parts: []inbound.ChatPart{
					{Type: "text", Text: "Tengo pollo y arroz"},
					{Type: "image", Text: "ignored"},
					{Type: "text", Text: "para 3 personas"},
				},
			},
			{
				Role:  "assistant",
				Parts: []inbound.ChatPart{{Type: "text", Text: "¿Qué más tienes?"}},
			},
		}

		messages := ConvertTurns(turns)

		require.Len(t, messages, 2)
		assert.Equal(t, "user", messages[0].Role)
		assert.Equal(t, "Tengo pollo y arroz\npara 3 personas", messages[0].Content)
		assert.Equal(t, "assistant", messages[1].Role)
	})

	t.Run("drops turns left without content", func(t *testing.T) {
		turns := []inbound.ChatTurn{
			{Role: "user", Parts: []inbound.ChatPart{{Type: "tool-call"}}},
			{Role: "user", Parts: []inbound.ChatPart{{Type: "text", Text: "hola"}}},
			{Role: "user"},
		}

		messages := ConvertTurns(turns)

		require.Len(t, messages, 1)
		assert.Equal(t, "hola", messages[0].Content)
	})

	t.Run("unknown roles become user", func(t *testing.T) {
		turns := []inbound.ChatTurn{
			{Role: "system", Parts: []inbound.ChatPart{{Type: "text", Text: "x"}}},
		}
		messages := ConvertTurns(turns)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].Role)
	})
}

func TestRelay(t *testing.T) {
	turns := []inbound.ChatTurn{
		{Role: "user", Parts: []inbound.ChatPart{{Type: "text", Text: "Quiero cocinar algo rápido"}}},
	}

	t.Run("streams deltas in order with the chef persona attached", func(t *testing.T) {
		model := &stubModel{deltas: []string{"Claro", ", ", "¿qué ingredientes tienes?"}}
		sink := &collectSink{}
		svc := NewService(model, zap.NewNop())

		err := svc.Relay(context.Background(), turns, sink)

		require.NoError(t, err)
		assert.Equal(t, []string{"Claro", ", ", "¿qué ingredientes tienes?"}, sink.got)
		assert.Equal(t, 1, model.calls)
		assert.True(t, strings.Contains(model.system, "chef profesional"), "system prompt must carry the persona")
		require.Len(t, model.messages, 1)
	})

	t.Run("provider failure surfaces as upstream error", func(t *testing.T) {
		model := &stubModel{deltas: []string{"parcial"}, err: errors.New("boom")}
		sink := &collectSink{}
		svc := NewService(model, zap.NewNop())

		err := svc.Relay(context.Background(), turns, sink)

		assert.True(t, apperrors.Is(err, apperrors.CodeUpstreamError))
		// Deltas delivered before the failure stay delivered.
		assert.Equal(t, []string{"parcial"}, sink.got)
		assert.Equal(t, 1, model.calls, "no retry on failure")
	})
}
