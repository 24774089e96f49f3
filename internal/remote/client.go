// Package remote is the typed client for the campus backend. Every call gets
// exactly one attempt: no retry and no timeout beyond what the injected
// http.Client imposes; failures surface to the caller for manual re-action.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"wiselib/internal/models"
)

// APIError is a completed HTTP exchange that the backend rejected. Message
// holds the body's error/message text when one was present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

type Client struct {
	base string
	hc   *http.Client
	lg   *zap.SugaredLogger
}

func New(base string, hc *http.Client, lg *zap.SugaredLogger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Client{base: base, hc: hc, lg: lg}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: extractMessage(raw, resp.Status)}
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("backend response undecodable: %w", err)
		}
	}
	return nil
}

func extractMessage(raw []byte, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fallback
}

// ListActivity fetches the server-side activity log, optionally one user's.
func (c *Client) ListActivity(ctx context.Context, userID string) ([]models.ActivityRecord, error) {
	path := "/api/activity"
	if userID != "" {
		path += "?userId=" + url.QueryEscape(userID)
	}
	var out []models.ActivityRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PushActivity mirrors one locally logged record to the backend.
func (c *Client) PushActivity(ctx context.Context, rec models.ActivityRecord) error {
	return c.do(ctx, http.MethodPost, "/api/activity", rec, nil)
}

// AdminRespond resolves a pending student request.
func (c *Client) AdminRespond(ctx context.Context, requestID, action, adminID string) error {
	body := map[string]string{"requestId": requestID, "action": action, "adminId": adminID}
	return c.do(ctx, http.MethodPost, "/api/auth/admin-respond", body, nil)
}

// Generate2FA asks the backend to issue a TOTP secret for the user.
func (c *Client) Generate2FA(ctx context.Context, userID string) (string, error) {
	var out struct {
		Secret string `json:"secret"`
	}
	if err := c.do(ctx, http.MethodPost, "/2fa/generate", map[string]string{"userId": userID}, &out); err != nil {
		return "", err
	}
	return out.Secret, nil
}

// Verify2FA checks a TOTP code server-side.
func (c *Client) Verify2FA(ctx context.Context, secret, token string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	body := map[string]any{"secret": secret, "token": token, "window": 3}
	if err := c.do(ctx, http.MethodPost, "/2fa/verify", body, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// ValidateQR checks a scanned envelope server-side.
func (c *Client) ValidateQR(ctx context.Context, data string) (bool, string, error) {
	var out struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/qr/validate", map[string]string{"data": data}, &out); err != nil {
		return false, "", err
	}
	return out.Valid, out.Error, nil
}
