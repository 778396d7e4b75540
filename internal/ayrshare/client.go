// Package ayrshare is a minimal client for the Ayrshare social-publishing
// API: create/delete posts, per-post analytics, and direct messages.
// Actual delivery semantics (retries on the network side, platform quirks)
// belong to Ayrshare; this client just reports what the API says.
package ayrshare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.ayrshare.com/api"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an Ayrshare client. An empty baseURL uses the public
// endpoint; tests point it at a local server.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PostRequest is the payload for creating (or scheduling) a post.
type PostRequest struct {
	Post         string     `json:"post"`
	Platforms    []string   `json:"platforms"`
	MediaURLs    []string   `json:"mediaUrls,omitempty"`
	ScheduleDate *time.Time `json:"scheduleDate,omitempty"`
}

// PostResponse is Ayrshare's answer to a post request.
type PostResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Errors []struct {
		Platform string `json:"platform"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}

// PlatformAnalytics are the engagement counters for one platform.
type PlatformAnalytics struct {
	Likes       int `json:"likes"`
	Comments    int `json:"comments"`
	Shares      int `json:"shares"`
	Impressions int `json:"impressions"`
}

// AnalyticsResponse maps platform id to its counters.
type AnalyticsResponse struct {
	ID        string                       `json:"id"`
	Platforms map[string]PlatformAnalytics `json:"platforms"`
}

// DirectMessage is one DM as returned by the messages endpoint.
type DirectMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created"`
	FromOwnAccount bool      `json:"fromOwnAccount"`
}

// MessagesResponse wraps a platform's message pull.
type MessagesResponse struct {
	Status   string          `json:"status"`
	Messages []DirectMessage `json:"messages"`
}

// SendMessageRequest is the payload for replying to a conversation.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Message        string `json:"message"`
}

// APIError is a non-2xx response from Ayrshare.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ayrshare: status %d: %s", e.StatusCode, e.Body)
}

// CreatePost publishes immediately, or schedules when ScheduleDate is set.
func (c *Client) CreatePost(ctx context.Context, req PostRequest) (*PostResponse, error) {
	var resp PostResponse
	if err := c.do(ctx, http.MethodPost, "/post", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePost removes a previously created post by Ayrshare id.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	body := map[string]string{"id": id}
	return c.do(ctx, http.MethodDelete, "/post", body, nil)
}

// PostAnalytics fetches engagement counters for a post by Ayrshare id.
func (c *Client) PostAnalytics(ctx context.Context, id string) (*AnalyticsResponse, error) {
	body := map[string]string{"id": id}
	var resp AnalyticsResponse
	if err := c.do(ctx, http.MethodPost, "/analytics/post", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Messages pulls direct messages for a platform.
func (c *Client) Messages(ctx context.Context, platform string) (*MessagesResponse, error) {
	var resp MessagesResponse
	if err := c.do(ctx, http.MethodGet, "/messages/"+platform, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage replies inside an existing conversation on a platform.
func (c *Client) SendMessage(ctx context.Context, platform string, req SendMessageRequest) (*DirectMessage, error) {
	var resp DirectMessage
	if err := c.do(ctx, http.MethodPost, "/messages/"+platform, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ayrshare request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
