package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cuemby/herald/pkg/ingest"
)

const (
	headerRecipientID   = "X-Recipient-ID"
	headerRecipientRole = "X-Recipient-Role"

	defaultTimeout = 10 * time.Second
)

// Client talks JSON over HTTP to a Herald server of record. It
// implements the Service contract with a per-call timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	role       string
}

// Option configures a Client
type Option func(*Client)

// WithToken sets a bearer token sent on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRole sets the recipient role header sent on every request, for
// servers running without token auth
func WithRole(role string) Option {
	return func(c *Client) { c.role = role }
}

// WithTimeout overrides the default per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a new server-of-record client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUnreadCount returns the server-side unread count for a recipient
func (c *Client) FetchUnreadCount(ctx context.Context, recipientID string) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/notifications/unread-count", recipientID, nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch unread count: %w", err)
	}
	return resp.Count, nil
}

// FetchNotifications returns up to limit raw notification records
func (c *Client) FetchNotifications(ctx context.Context, recipientID string, limit int) ([]*ingest.RawNotification, error) {
	path := "/api/v1/notifications"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Notifications []*ingest.RawNotification `json:"notifications"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, recipientID, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return resp.Notifications, nil
}

// MarkNotificationRead acknowledges a single notification
func (c *Client) MarkNotificationRead(ctx context.Context, recipientID, notificationID string) error {
	path := "/api/v1/notifications/" + notificationID + "/read"
	if err := c.doJSON(ctx, http.MethodPut, path, recipientID, nil, nil); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead acknowledges everything released for the
// recipient. A 2xx response with success=false is an explicit logical
// failure, distinct from a transport error.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, recipientID string) (bool, error) {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/notifications/read-all", recipientID, nil, &resp); err != nil {
		return false, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return resp.Success, nil
}

// Publish creates a new notification on the server of record. Not part
// of the Service contract; used by the CLI publish path.
func (c *Client) Publish(ctx context.Context, recipientID string, req *PublishRequest) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/notifications", recipientID, req, &resp); err != nil {
		return "", fmt.Errorf("failed to publish notification: %w", err)
	}
	return resp.ID, nil
}

// PublishRequest is the payload for creating a notification
type PublishRequest struct {
	Title          string   `json:"title" yaml:"title"`
	Message        string   `json:"message" yaml:"message"`
	Type           string   `json:"type,omitempty" yaml:"type,omitempty"`
	Status         string   `json:"status,omitempty" yaml:"status,omitempty"`
	ScheduledAt    string   `json:"scheduledAt,omitempty" yaml:"scheduledAt,omitempty"`
	TargetUserIDs  []string `json:"targetUserIds,omitempty" yaml:"targetUserIds,omitempty"`
	TargetRoles    []string `json:"targetRoles,omitempty" yaml:"targetRoles,omitempty"`
	TargetAudience string   `json:"targetAudience,omitempty" yaml:"targetAudience,omitempty"`
}

// doJSON executes one JSON request against the server of record
func (c *Client) doJSON(ctx context.Context, method, path, recipientID string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if recipientID != "" {
		req.Header.Set(headerRecipientID, recipientID)
	}
	if c.role != "" {
		req.Header.Set(headerRecipientRole, c.role)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
