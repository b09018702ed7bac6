// Package websearch backs the read-only auxiliary tools: a Tavily search
// client for looking up API documentation and a guarded URL fetcher for
// links the user pastes directly.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	searchEndpoint = "https://api.tavily.com/search"
	maxResults     = 5
	maxFetchBytes  = 1 << 20
	maxContentRune = 8000
	defaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; FlowPilot/1.0)"
)

// ErrNotConfigured indicates the search API key is missing.
var ErrNotConfigured = errors.New("search API key not configured")

// ErrBlockedURL indicates a fetch target resolved to an internal or
// non-HTTP address.
var ErrBlockedURL = errors.New("access to internal/private URLs is not allowed")

// SearchResult is one ranked hit from the search API.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Config holds the search backend settings.
type Config struct {
	APIKey string
}

// Client calls the Tavily search API and fetches documentation pages.
type Client struct {
	config   Config
	client   *http.Client
	logger   *slog.Logger
	endpoint string

	// allowPrivate disables the SSRF blocklist. Tests only; never set in
	// production wiring.
	allowPrivate bool
}

// NewClient creates a web search client.
func NewClient(config Config, logger *slog.Logger) *Client {
	return &Client{
		config:   config,
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   logger.With("module", "websearch"),
		endpoint: searchEndpoint,
	}
}

// Search runs one query, tuned for finding API documentation.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if c.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]any{
		"api_key":             c.config.APIKey,
		"query":               query,
		"search_depth":        "basic",
		"include_answer":      false,
		"include_raw_content": false,
		"max_results":         maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.logger.Debug("search completed", "query", query, "results", len(payload.Results))

	return payload.Results, nil
}

// ValidateKey reports whether the configured API key works, by running a
// throwaway query.
func (c *Client) ValidateKey(ctx context.Context) bool {
	if c.config.APIKey == "" {
		return false
	}

	_, err := c.Search(ctx, "test query")

	return err == nil
}

var blockedHostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^localhost$`),
	regexp.MustCompile(`^127\.`),
	regexp.MustCompile(`^10\.`),
	regexp.MustCompile(`^172\.(1[6-9]|2\d|3[01])\.`),
	regexp.MustCompile(`^192\.168\.`),
	regexp.MustCompile(`^169\.254\.`),
	regexp.MustCompile(`^0\.`),
	regexp.MustCompile(`^::1$`),
	regexp.MustCompile(`(?i)^fe80:`),
}

// FetchURL downloads a page and reduces it to readable text for the model.
// Only public HTTP and HTTPS targets are allowed; localhost, link-local and
// private ranges are blocked before any connection is made.
func (c *Client) FetchURL(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid URL %q", rawURL)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("only HTTP/HTTPS URLs are allowed, got %q", parsed.Scheme)
	}

	if !c.allowPrivate {
		hostname := strings.ToLower(parsed.Hostname())
		for _, pattern := range blockedHostPatterns {
			if pattern.MatchString(hostname) {
				return "", ErrBlockedURL
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", parsed.Hostname(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", err
	}

	text := extractText(string(raw))
	if len(text) > maxContentRune {
		text = text[:maxContentRune] + "\n\n[Content truncated...]"
	}

	return text, nil
}
