// Package esign talks to the e-signature provider's REST API.
package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds provider settings
type Config struct {
	BaseURL string
	APIKey  string
	RoleID  string

	// Timeout of zero leaves the transport default in place
	Timeout time.Duration
}

// RawResponse is a provider reply passed through untouched
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type createPackageResponse struct {
	ID string `json:"id"`
}

type signingURLResponse struct {
	RoleID    string `json:"roleId"`
	PackageID string `json:"packageId"`
	URL       string `json:"url"`
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// Client calls the provider
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a provider client
func NewClient(cfg Config, logger *zap.Logger, opts ...ClientOption) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RoleID == "" {
		cfg.RoleID = DefaultTransactionOptions().RoleID
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForwardPackage posts body to the package endpoint as-is and returns the
// provider's status and body. Any status is a successful forward; an error
// means no usable response arrived.
func (c *Client) ForwardPackage(ctx context.Context, body []byte) (*RawResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/api/packages", body)
	if err != nil {
		c.logger.Error("Failed to reach e-sign provider", zap.Error(err))
		return nil, fmt.Errorf("failed to send package: %w", err)
	}
	if !json.Valid(resp.Body) {
		c.logger.Error("E-sign provider returned non-JSON body",
			zap.Int("status", resp.StatusCode),
			zap.String("response", truncate(resp.Body)))
		return nil, fmt.Errorf("%w: status %d", ErrMalformedResponse, resp.StatusCode)
	}

	c.logger.Info("Package forwarded",
		zap.Int("status", resp.StatusCode),
		zap.Int("request_size", len(body)))
	return resp, nil
}

// CreatePackage submits tx and returns the new package ID
func (c *Client) CreatePackage(ctx context.Context, tx *Transaction) (string, error) {
	body, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/api/packages", body)
	if err != nil {
		return "", &SubmissionError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Package creation rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("response", truncate(resp.Body)))
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var created createPackageResponse
	if err := json.Unmarshal(resp.Body, &created); err != nil || created.ID == "" {
		if err == nil {
			err = fmt.Errorf("%w: missing id", ErrMalformedResponse)
		}
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
	}

	c.logger.Info("Package created", zap.String("package_id", created.ID))
	return created.ID, nil
}

// SigningURL returns the signing ceremony URL of the configured role
func (c *Client) SigningURL(ctx context.Context, packageID string) (string, error) {
	if packageID == "" {
		return "", ErrMissingPackageID
	}

	endpoint := fmt.Sprintf("%s/api/packages/%s/roles/%s/signingUrl",
		c.cfg.BaseURL, url.PathEscape(packageID), url.PathEscape(c.cfg.RoleID))

	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &SigningURLError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Signing URL request rejected",
			zap.String("package_id", packageID),
			zap.Int("status", resp.StatusCode),
			zap.String("response", truncate(resp.Body)))
		return "", &SigningURLError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var parsed signingURLResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || parsed.URL == "" {
		if err == nil {
			err = fmt.Errorf("%w: missing url", ErrMalformedResponse)
		}
		return "", &SigningURLError{StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
	}

	c.logger.Debug("Signing URL issued", zap.String("package_id", packageID))
	return parsed.URL, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*RawResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &RawResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
