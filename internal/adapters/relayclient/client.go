package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 4096

// Client calls the relay's high-priority check endpoint
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a relay client posting to url
func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// CheckHighPriority implements core.PriorityClient
func (c *Client) CheckHighPriority(ctx context.Context, keywords []string, preview string) (*core.PriorityVerdict, error) {
	body, err := json.Marshal(map[string]interface{}{
		"highPriorityKeywords": keywords,
		"previewText":          preview,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var relayErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(data, &relayErr) == nil && relayErr.Error != "" {
			return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, relayErr.Error)
		}
		return nil, fmt.Errorf("relay returned %d", resp.StatusCode)
	}

	var verdict core.PriorityVerdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode relay response: %w", err)
	}

	c.logger.Debug("Relay verdict received",
		zap.Bool("high_priority", verdict.IsHighPriority),
		zap.Strings("keywords", verdict.Keywords))
	return &verdict, nil
}
