// Package gemini implements the chat model port against the Gemini
// generateContent streaming API.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cocinadelpatito/v1/internal/infrastructure/config"
	"github.com/cocinadelpatito/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client streams completions from the Gemini API
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new Gemini client
func NewClient(cfg *config.Config, logger *zap.Logger) outbound.ChatModel {
	baseURL := cfg.AI.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.AI.APIKey,
		model:   cfg.AI.Model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.AI.Timeout,
		},
		logger: logger.Named("gemini-client"),
	}
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// StreamChat sends the conversation and invokes onDelta for each text
// fragment in arrival order. The request is not retried; a mid-stream
// failure returns an error with already-delivered deltas left in place.
func (c *Client) StreamChat(ctx context.Context, system string, messages []outbound.ChatMessage, onDelta func(delta string) error) error {
	reqBody := generateRequest{
		Contents: make([]content, 0, len(messages)),
	}
	if system != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	for _, msg := range messages {
		reqBody.Contents = append(reqBody.Contents, content{
			Role:  providerRole(msg.Role),
			Parts: []part{{Text: msg.Content}},
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("gemini request rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}

	if err := c.consumeStream(resp.Body, onDelta); err != nil {
		return err
	}

	c.logger.Debug("gemini stream completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("messages", len(messages)),
	)
	return nil
}

// consumeStream reads SSE events from the response body. Each data line
// carries one generateContent chunk; text parts are forwarded in order.
func (c *Client) consumeStream(body io.Reader, onDelta func(delta string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("gemini stream error: %s (%s)", chunk.Error.Message, chunk.Error.Status)
		}

		for _, candidate := range chunk.Candidates {
			for _, p := range candidate.Content.Parts {
				if p.Text == "" {
					continue
				}
				if err := onDelta(p.Text); err != nil {
					return err
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return nil
}

// providerRole maps API roles to Gemini roles. Gemini uses "model" where
// the UI uses "assistant".
func providerRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}
