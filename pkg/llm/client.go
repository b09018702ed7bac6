package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	completionsPath   = "/chat/completions"
	defaultTimeout    = 120 * time.Second
	maxErrorBodyBytes = 2048
)

// Config carries the gateway connection settings the client is constructed
// with; nothing is read from ambient state.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client speaks the gateway's chat-completions protocol, streaming and not.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a gateway client.
func NewClient(config Config, logger *slog.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger.With("module", "llm_client"),
	}
}

// Complete runs a non-streaming completion and classifies the reply as text
// or tool calls. Tool calls win when both are present.
func (c *Client) Complete(ctx context.Context, request Request) (*Reply, error) {
	request.Stream = false

	resp, err := c.send(ctx, request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, ErrEmptyReply
	}

	message := completion.Choices[0].Message
	if len(message.ToolCalls) > 0 {
		return &Reply{Kind: ReplyToolCalls, ToolCalls: message.ToolCalls}, nil
	}

	if message.Content == "" {
		return nil, ErrEmptyReply
	}

	return &Reply{Kind: ReplyText, Content: message.Content}, nil
}

// Stream runs a streaming completion, invoking onToken for every text delta
// and returning the accumulated text. Malformed frames are skipped, not
// fatal; the feed is best-effort by contract.
func (c *Client) Stream(ctx context.Context, request Request, onToken func(token string)) (string, error) {
	request.Stream = true

	resp, err := c.send(ctx, request)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var builder strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			continue
		}

		if len(frame.Choices) == 0 || frame.Choices[0].Delta.Content == "" {
			continue
		}

		builder.WriteString(frame.Choices[0].Delta.Content)

		if onToken != nil {
			onToken(frame.Choices[0].Delta.Content)
		}
	}

	if err := scanner.Err(); err != nil {
		return builder.String(), err
	}

	if builder.Len() == 0 {
		return "", ErrEmptyReply
	}

	return builder.String(), nil
}

func (c *Client) send(ctx context.Context, request Request) (*http.Response, error) {
	if c.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("gateway request",
		"model", request.Model,
		"messages", len(request.Messages),
		"tools", len(request.Tools),
		"stream", request.Stream)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()

		return nil, c.normalizeError(resp)
	}

	return resp, nil
}

func (c *Client) normalizeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return &GatewayError{StatusCode: resp.StatusCode, Message: body.Error.Message}
	}

	return &GatewayError{StatusCode: resp.StatusCode}
}
