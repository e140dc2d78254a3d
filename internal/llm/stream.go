package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	sseDataPrefix = "data:"
	sseDone       = "[DONE]"
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamChat streams a completion and calls onDelta once per non-empty text
// delta. The stream ends at the [DONE] sentinel or when the server closes the
// connection. A non-nil error from onDelta stops the stream and is returned.
// No schema handling is applied to streamed output.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest, onDelta func(string) error) error {
	if len(req.Messages) == 0 {
		return errors.New("llm stream: at least one message required")
	}
	if onDelta == nil {
		return errors.New("llm stream: delta callback required")
	}

	payload := c.buildPayload(req, withSchemaInstruction(req.Messages, nil))
	payload.ResponseFormat = nil
	payload.Stream = true

	resp, err := c.do(ctx, http.MethodPost, "/chat/completions", payload, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return errorFromResponse(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, sseDataPrefix))
		if data == sseDone {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			c.log.Warn("skipping malformed stream chunk", zap.Error(err))
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := onDelta(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("llm stream: %w", ctxErr)
		}
		return networkError("stream interrupted", err)
	}
	return nil
}
