// Package api is the HTTP client for the remote marketplace API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/infrastructure/logging"
	"github.com/you/dairyshell/internal/infrastructure/metrics"
)

const maxBodyBytes = 8 << 20

// ClientConfig configures the marketplace client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client implements domain.MarketplaceAPI. The bearer token is read from
// the token source on every request, so a logout takes effect immediately.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     domain.TokenSource
	log        *logrus.Entry
}

// NewClient creates a marketplace client.
func NewClient(cfg ClientConfig, tokens domain.TokenSource, log logrus.FieldLogger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     tokens,
		log:        logging.Component(log, "api"),
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Login implements domain.MarketplaceAPI.
func (c *Client) Login(ctx context.Context, identifier, password string) (*domain.LoginResult, error) {
	var out domain.LoginResult
	if err := c.Do(ctx, http.MethodPost, "/users/login", loginRequest{Identifier: identifier, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register implements domain.MarketplaceAPI.
func (c *Client) Register(ctx context.Context, reg *domain.Registration) (string, error) {
	var out messageResponse
	if err := c.Do(ctx, http.MethodPost, "/users/register", reg, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// VerifyEmail implements domain.MarketplaceAPI.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) (string, error) {
	var out messageResponse
	if err := c.Do(ctx, http.MethodPost, "/users/verify-email", verifyRequest{Email: email, Code: code}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Do sends a JSON request to path and decodes the JSON reply into out.
// Transport failures wrap domain.ErrNetwork; non-2xx replies return *domain.APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(method, path, 0, time.Since(start))
		c.log.WithError(err).WithField("path", path).Warn("Marketplace request failed")
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()
	metrics.RecordAPIRequest(method, path, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", domain.ErrNetwork, err)
	}

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Marketplace request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of an error body
func errorMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}

	var s string
	if err := json.Unmarshal(body.Error, &s); err == nil {
		return s
	}
	return ""
}

// IsStatus reports whether err is an API error with the given status
func IsStatus(err error, status int) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Compile-time interface compliance verification
var _ domain.MarketplaceAPI = (*Client)(nil)
