package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/casali/flowpilot/pkg/models"
)

const (
	apiPrefix         = "/api/v1"
	defaultTimeout    = 30 * time.Second
	maxErrorBodyBytes = 200
)

// Config carries the connection settings the client is constructed with.
// The client never reads them from anywhere else.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client is a thin typed wrapper around the n8n public REST API.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates an API client for one n8n instance.
func NewClient(config Config, logger *slog.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger.With("module", "n8n_client"),
	}
}

// ListWorkflows returns all workflows, unwrapping the {data: []} envelope.
func (c *Client) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	var list models.WorkflowList
	if err := c.request(ctx, http.MethodGet, "/workflows", nil, &list); err != nil {
		return nil, err
	}

	return list.Data, nil
}

// GetWorkflow fetches one workflow document by id.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.request(ctx, http.MethodGet, "/workflows/"+id, nil, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// CreateWorkflow creates a new workflow from an already-sanitized payload.
func (c *Client) CreateWorkflow(ctx context.Context, payload *UpdatePayload) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.request(ctx, http.MethodPost, "/workflows", payload, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// UpdateWorkflow replaces a workflow document. n8n PUT is full-document
// replacement, so callers always read, merge, sanitize, then write.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, payload *UpdatePayload) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.request(ctx, http.MethodPut, "/workflows/"+id, payload, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// DeleteWorkflow removes a workflow entirely.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/workflows/"+id, nil, nil)
}

// ActivateWorkflow turns a workflow on through its lifecycle endpoint.
// Activation is never a field flip: n8n registers webhooks as a side effect.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.request(ctx, http.MethodPost, "/workflows/"+id+"/activate", nil, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// DeactivateWorkflow turns a workflow off through its lifecycle endpoint.
func (c *Client) DeactivateWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := c.request(ctx, http.MethodPost, "/workflows/"+id+"/deactivate", nil, &workflow); err != nil {
		return nil, err
	}

	return &workflow, nil
}

// ValidateConnection performs a cheap credentialed read to verify the
// configured URL and API key actually work.
func (c *Client) ValidateConnection(ctx context.Context) error {
	_, err := c.ListWorkflows(ctx)

	return err
}

func (c *Client) request(ctx context.Context, method, endpoint string, body, out any) error {
	if c.config.BaseURL == "" {
		return fmt.Errorf("%w: instance URL is not set", ErrNotConfigured)
	}

	if c.config.APIKey == "" {
		return fmt.Errorf("%w: API key is not set", ErrNotConfigured)
	}

	var bodyReader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+apiPrefix+endpoint, bodyReader)
	if err != nil {
		return err
	}

	req.Header.Set("X-N8N-API-KEY", c.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("n8n request", "method", method, "endpoint", endpoint)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, c.config.BaseURL, err)
	}
	defer resp.Body.Close()

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.normalizeError(resp, isJSON)
	}

	// DELETE answers 204 with no body.
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}

	if !isJSON {
		return fmt.Errorf("%w: got content-type %q from %s %s",
			ErrNonJSONResponse, resp.Header.Get("Content-Type"), method, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode n8n response: %w", err)
	}

	return nil
}

// normalizeError turns a non-2xx answer into a typed failure, detecting HTML
// error pages that indicate a wrong instance URL.
func (c *Client) normalizeError(resp *http.Response, isJSON bool) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if isJSON {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
		}

		return &APIError{StatusCode: resp.StatusCode}
	}

	text := string(raw)
	if strings.Contains(text, "<!DOCTYPE") || strings.Contains(text, "<html") {
		return fmt.Errorf("%w: got an HTML page (status %d), check the instance URL and API key",
			ErrNonJSONResponse, resp.StatusCode)
	}

	if len(text) > maxErrorBodyBytes {
		text = text[:maxErrorBodyBytes]
	}

	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(text)}
}
