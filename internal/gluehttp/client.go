// Package gluehttp is a client for the glue service's HTTP API, used by
// tools that drive a signing flow from outside the browser.
package gluehttp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/esign"
	"github.com/garyjia/esign-wizard/internal/fill"
)

// ErrUnexpectedResponse is returned when a reply cannot be decoded
var ErrUnexpectedResponse = errors.New("unexpected response from glue service")

// StatusError is a non-success reply from the glue service
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, strings.TrimSpace(string(e.Body)))
}

type fillResponse struct {
	Base64 string     `json:"base64"`
	Files  fill.Files `json:"files"`
}

type signingURLRequest struct {
	PackageID string `json:"packageId"`
}

type signingURLResponse struct {
	SigningURL string `json:"signingUrl"`
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// Client calls /api/fill-pdf, /api/sign and /api/getSigningUrl
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FillDocument uploads base and the projected data and returns the filled PDF
func (c *Client) FillDocument(ctx context.Context, base []byte, projected form.State) ([]byte, error) {
	data, err := json.Marshal(projected)
	if err != nil {
		return nil, fmt.Errorf("encode projected state: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := writePart(mw, "pdf", "persona-juridica.pdf", base); err != nil {
		return nil, err
	}
	if err := writePart(mw, "json", "datos.json", data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("responseType", "base64"); err != nil {
		return nil, fmt.Errorf("write responseType: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	status, respBody, err := c.post(ctx, "/api/fill-pdf", mw.FormDataContentType(), body.Bytes())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", fill.ErrFillFailed,
			&StatusError{Endpoint: "/api/fill-pdf", StatusCode: status, Body: respBody})
	}

	var parsed fillResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	pdf, err := base64.StdEncoding.DecodeString(parsed.Base64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrUnexpectedResponse, err)
	}

	c.logger.Debug("Document filled remotely",
		zap.String("output", parsed.Files.OutputPDF),
		zap.Int("size", len(pdf)))
	return pdf, nil
}

// CreatePackage posts tx through the relay and returns the package ID
func (c *Client) CreatePackage(ctx context.Context, tx *esign.Transaction) (string, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction: %w", err)
	}

	status, respBody, err := c.post(ctx, "/api/sign", "application/json", data)
	if err != nil {
		return "", &esign.SubmissionError{Err: err}
	}
	if status < 200 || status > 299 {
		return "", &esign.SubmissionError{StatusCode: status, Body: respBody}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil || created.ID == "" {
		return "", &esign.SubmissionError{StatusCode: status, Body: respBody, Err: ErrUnexpectedResponse}
	}
	return created.ID, nil
}

// SigningURL asks the service for the signing URL of packageID
func (c *Client) SigningURL(ctx context.Context, packageID string) (string, error) {
	if packageID == "" {
		return "", esign.ErrMissingPackageID
	}
	data, err := json.Marshal(signingURLRequest{PackageID: packageID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	status, respBody, err := c.post(ctx, "/api/getSigningUrl", "application/json", data)
	if err != nil {
		return "", &esign.SigningURLError{Err: err}
	}
	if status != http.StatusOK {
		return "", &esign.SigningURLError{StatusCode: status, Body: respBody}
	}

	var parsed signingURLResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.SigningURL == "" {
		return "", &esign.SigningURLError{StatusCode: status, Body: respBody, Err: ErrUnexpectedResponse}
	}
	return parsed.SigningURL, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Glue service unreachable", zap.String("path", path), zap.Error(err))
		return 0, nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func writePart(mw *multipart.Writer, field, filename string, content []byte) error {
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}
