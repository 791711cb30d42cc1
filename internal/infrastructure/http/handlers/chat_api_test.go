package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/infrastructure/http/middleware"
	"github.com/cocinadelpatito/v1/internal/infrastructure/monitoring"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/pkg/errors"
)

type stubChatService struct {
	calls  int
	deltas []string
	err    error
}

func (s *stubChatService) Relay(_ context.Context, _ []inbound.ChatTurn, sink inbound.StreamSink) error {
	s.calls++
	for _, d := range s.deltas {
		if err := sink.Delta(d); err != nil {
			return err
		}
	}
	return s.err
}

func newChatRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authenticated(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.New()))
}

const chatBody = `{"messages":[{"role":"user","parts":[{"type":"text","text":"hola"}]}]}`

func TestChatRelayHandler(t *testing.T) {
	newHandler := func(svc inbound.ChatService) *ChatHandler {
		return NewChatHandler(svc, monitoring.NewMetrics(), 256<<10, zap.NewNop())
	}

	t.Run("unauthenticated request gets 401 before any model call", func(t *testing.T) {
		svc := &stubChatService{deltas: []string{"nunca"}}
		handler := newHandler(svc)

		rec := httptest.NewRecorder()
		handler.Relay(rec, newChatRequest(chatBody))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, svc.calls, "the relay must reject before reaching the provider")
	})

	t.Run("empty transcript gets 400", func(t *testing.T) {
		svc := &stubChatService{}
		handler := newHandler(svc)

		rec := httptest.NewRecorder()
		handler.Relay(rec, authenticated(newChatRequest(`{"messages":[]}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, svc.calls)
	})

	t.Run("streams deltas as SSE and closes with DONE", func(t *testing.T) {
		svc := &stubChatService{deltas: []string{"Hola", " chef"}}
		handler := newHandler(svc)

		rec := httptest.NewRecorder()
		handler.Relay(rec, authenticated(newChatRequest(chatBody)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

		body := rec.Body.String()
		assert.Contains(t, body, `data: {"type":"text-delta","delta":"Hola"}`)
		assert.Contains(t, body, `data: {"type":"text-delta","delta":" chef"}`)
		assert.True(t, strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]"))
	})

	t.Run("failure before first delta is a plain error response", func(t *testing.T) {
		svc := &stubChatService{err: errors.NewUpstreamError("model provider", nil)}
		handler := newHandler(svc)

		rec := httptest.NewRecorder()
		handler.Relay(rec, authenticated(newChatRequest(chatBody)))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("mid-stream failure emits an error event instead of DONE", func(t *testing.T) {
		svc := &stubChatService{
			deltas: []string{"parcial"},
			err:    errors.NewUpstreamError("model provider", nil),
		}
		handler := newHandler(svc)

		rec := httptest.NewRecorder()
		handler.Relay(rec, authenticated(newChatRequest(chatBody)))

		body := rec.Body.String()
		assert.Contains(t, body, "parcial")
		assert.Contains(t, body, `"type":"error"`)
		assert.NotContains(t, body, "[DONE]")
	})

	t.Run("invalid json gets 400", func(t *testing.T) {
		svc := &stubChatService{}
		handler := newHandler(svc)

		rec := httptest.NewRecorder()
		handler.Relay(rec, authenticated(newChatRequest(`{not json`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, svc.calls)
	})
}
