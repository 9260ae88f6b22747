package directline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the public Direct Line v3 base endpoint.
	DefaultEndpoint = "https://directline.botframework.com/v3/directline"

	defaultTimeout  = 30 * time.Second
	defaultUserID   = "user123"
	defaultUserName = "Test User"
	defaultLocale   = "ja-JP"
)

// Config holds configuration for the Direct Line client.
type Config struct {
	Endpoint string        // Base URL for the Direct Line API
	Secret   string        // Secret exchanged for short-lived tokens
	UserID   string        // Identity stamped on outgoing activities
	UserName string        // Display name for outgoing activities
	Locale   string        // Locale stamped on outgoing activities
	Timeout  time.Duration // HTTP timeout
	Logger   *slog.Logger  // Logger for debugging
}

// Client is the low-level Direct Line v3 REST client. It performs one
// HTTP call per method and converts every failure into an *APIError;
// it holds no conversation state.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
}

// NewClient creates a new Direct Line API client.
func NewClient(config Config) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.UserID == "" {
		config.UserID = defaultUserID
	}
	if config.UserName == "" {
		config.UserName = defaultUserName
	}
	if config.Locale == "" {
		config.Locale = defaultLocale
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("component", "directline_client"),
		endpoint:   strings.TrimRight(config.Endpoint, "/"),
	}
}

// GenerateToken exchanges the configured secret for a short-lived
// Direct Line token.
func (c *Client) GenerateToken(ctx context.Context) (*TokenResponse, error) {
	logger := c.logger.With("method", "GenerateToken")
	logger.Debug("generating token")

	req, err := c.newRequest(ctx, http.MethodPost, "/tokens/generate", c.config.Secret, nil)
	if err != nil {
		return nil, &APIError{Stage: StageToken, Message: err.Error(), Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, &APIError{Stage: StageToken, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(StageToken, resp)
	}

	var result TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, &APIError{Stage: StageToken, Message: fmt.Sprintf("failed to decode response: %v", err), Err: err}
	}

	logger.Info("token generated", "expires_in", result.ExpiresIn)
	return &result, nil
}

// StartConversation opens a new conversation scoped to the given
// token. Both 200 and 201 are accepted; a 2xx response without a
// conversation identifier is an error.
func (c *Client) StartConversation(ctx context.Context, token string) (*ConversationResponse, error) {
	logger := c.logger.With("method", "StartConversation")
	logger.Debug("starting conversation")

	req, err := c.newRequest(ctx, http.MethodPost, "/conversations", token, nil)
	if err != nil {
		return nil, &APIError{Stage: StageConversation, Message: err.Error(), Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, &APIError{Stage: StageConversation, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.apiError(StageConversation, resp)
	}

	var result ConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, &APIError{Stage: StageConversation, Message: fmt.Sprintf("failed to decode response: %v", err), Err: err}
	}
	if result.ConversationID == "" {
		return nil, ErrMissingConversationID
	}

	logger.Info("conversation started", "conversation_id", result.ConversationID)
	return &result, nil
}

// PostActivity posts an activity to the conversation. The service may
// answer 200, 201 or 202; the status code and raw body are returned so
// callers can surface them.
func (c *Client) PostActivity(ctx context.Context, token, conversationID string, activity *Activity) (int, json.RawMessage, error) {
	logger := c.logger.With("method", "PostActivity", "conversation_id", conversationID)

	body, err := json.Marshal(activity)
	if err != nil {
		return 0, nil, &APIError{Stage: StageSend, Message: fmt.Sprintf("failed to marshal activity: %v", err), Err: err}
	}

	path := fmt.Sprintf("/conversations/%s/activities", url.PathEscape(conversationID))
	req, err := c.newRequest(ctx, http.MethodPost, path, token, body)
	if err != nil {
		return 0, nil, &APIError{Stage: StageSend, Message: err.Error(), Err: err}
	}

	logger.Debug("posting activity", "type", activity.Type)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return 0, nil, &APIError{Stage: StageSend, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		return 0, nil, c.apiError(StageSend, resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &APIError{Stage: StageSend, Message: fmt.Sprintf("failed to read response: %v", err), Err: err}
	}

	logger.Info("activity posted", "status_code", resp.StatusCode)
	return resp.StatusCode, respBody, nil
}

// Activities fetches the visible activities of the conversation. When
// watermark is non-empty only activities after that point are
// returned.
func (c *Client) Activities(ctx context.Context, token, conversationID, watermark string) (*ActivitySet, error) {
	logger := c.logger.With("method", "Activities", "conversation_id", conversationID)

	path := fmt.Sprintf("/conversations/%s/activities", url.PathEscape(conversationID))
	if watermark != "" {
		path += "?watermark=" + url.QueryEscape(watermark)
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, &APIError{Stage: StagePoll, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("fetching activities", "watermark", watermark)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, &APIError{Stage: StagePoll, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(StagePoll, resp)
	}

	var result ActivitySet
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, &APIError{Stage: StagePoll, Message: fmt.Sprintf("failed to decode response: %v", err), Err: err}
	}

	logger.Debug("activities fetched", "count", len(result.Activities), "watermark", result.Watermark)
	return &result, nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path, bearer string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil || method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// apiError converts a non-2xx response into an *APIError carrying the
// status code and body text.
func (c *Client) apiError(stage Stage, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		body = []byte(fmt.Sprintf("failed to read error response: %v", err))
	}

	apiErr := &APIError{
		Stage:      stage,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
	c.logger.Error("received error response", "stage", string(stage), "status_code", resp.StatusCode)
	return apiErr
}
