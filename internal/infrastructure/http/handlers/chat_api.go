package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/cocinadelpatito/v1/internal/infrastructure/http/middleware"
	"github.com/cocinadelpatito/v1/internal/infrastructure/monitoring"
	"github.com/cocinadelpatito/v1/internal/ports/inbound"
	"github.com/cocinadelpatito/v1/pkg/errors"
	"github.com/google/uuid"
)

// ChatHandler serves the AI assistant relay endpoint.
type ChatHandler struct {
	chat            inbound.ChatService
	metrics         *monitoring.Metrics
	maxContentBytes int64
	logger          *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat inbound.ChatService, metrics *monitoring.Metrics, maxContentBytes int64, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:            chat,
		metrics:         metrics,
		maxContentBytes: maxContentBytes,
		logger:          logger.Named("chat-handler"),
	}
}

type chatRequest struct {
	Messages []inbound.ChatTurn `json:"messages"`
}

// Relay handles POST /api/chat. It rejects unauthenticated callers
// before any model call, then streams the model response as
// server-sent events.
func (h *ChatHandler) Relay(w http.ResponseWriter, r *http.Request) {
	if middleware.UserIDFromContext(r.Context()) == uuid.Nil {
		writeError(w, r, h.logger, errors.NewUnauthenticatedError(""))
		return
	}

	var req chatRequest
	if err := decodeJSON(w, r, h.maxContentBytes, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, r, h.logger, errors.NewBadRequestError("Messages are required"))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, h.logger, errors.NewInternalError("Streaming is not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	h.metrics.ChatStreamStarted()
	sink := &sseSink{w: w, flusher: flusher}

	if err := h.chat.Relay(r.Context(), req.Messages, sink); err != nil {
		h.metrics.ChatStreamFailed()

		if !sink.started {
			// Nothing has been written yet; fail with a regular error
			// response so the client sees the status code.
			writeError(w, r, h.logger, err)
			return
		}

		// Headers are gone; the best we can do is an error event.
		h.logger.Error("chat stream failed mid-flight", zap.Error(err))
		sink.event(`{"type":"error","message":"The assistant is unavailable. Please try again."}`)
		return
	}

	sink.event("[DONE]")
}

// sseSink writes model deltas as server-sent events, flushing after each
// one so the client renders tokens as they arrive.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

// Delta implements inbound.StreamSink
func (s *sseSink) Delta(text string) error {
	payload, err := encodeDelta(text)
	if err != nil {
		return err
	}
	s.event(payload)
	return nil
}

func (s *sseSink) event(data string) {
	s.started = true
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}

func encodeDelta(text string) (string, error) {
	type deltaEvent struct {
		Type  string `json:"type"`
		Delta string `json:"delta"`
	}
	payload, err := json.Marshal(deltaEvent{Type: "text-delta", Delta: text})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
