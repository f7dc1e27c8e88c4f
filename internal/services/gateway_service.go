// Package services implements the assistdesk orchestration components: the
// credential store, the remote gateway, the assistant directory, the chat
// session store, the messaging protocol, and the analytics aggregator. Every
// service operates on an injected *store.Store; there are no package-level
// singletons.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"assistdesk/internal/logger"
	"assistdesk/internal/store"
	"assistdesk/pkg/desktypes"
)

// GatewayService is the thin HTTP client every remote-facing component goes
// through. It attaches the application session token and the active project's
// upstream credential to each request, and classifies failures: a 401 clears
// the local session token and surfaces desktypes.ErrReauthRequired, every
// other failure becomes a *desktypes.TransportError. The gateway never
// retries; retry policy, if any, belongs to the caller.
type GatewayService struct {
	initialized bool
	baseURL     string
	timeout     time.Duration
	client      *http.Client
	store       *store.Store
}

// NewGatewayService creates a gateway for the given backend base URL.
func NewGatewayService(baseURL string, st *store.Store) *GatewayService {
	return &GatewayService{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 30 * time.Second,
		store:   st,
	}
}

// Name returns the service name "gateway" for registration.
func (g *GatewayService) Name() string {
	return "gateway"
}

// Initialize sets up the HTTP client.
func (g *GatewayService) Initialize() error {
	g.client = &http.Client{Timeout: g.timeout}
	g.initialized = true
	logger.Debug("GatewayService initialized", "base_url", g.baseURL, "timeout", g.timeout.String())
	return nil
}

// SetTimeout configures the request timeout.
func (g *GatewayService) SetTimeout(timeout time.Duration) {
	g.timeout = timeout
	if g.client != nil {
		g.client.Timeout = timeout
	}
}

// errorBody is the backend's structured error payload.
type errorBody struct {
	Detail string `json:"detail"`
}

// Do performs one request against the backend. The body may be nil. The
// returned bytes are the raw response body of a 2xx response.
func (g *GatewayService) Do(method, path string, body io.Reader, contentType string) ([]byte, error) {
	if !g.initialized {
		return nil, fmt.Errorf("gateway service not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := g.store.SessionToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	// The upstream credential rides in its own header so the backend can
	// route the call to the correct upstream account.
	if project, ok := g.store.ActiveProject(); ok {
		req.Header.Set("X-Upstream-Key", project.APIKey)
	}

	logger.Debug("Gateway request", "method", method, "path", path)

	resp, err := g.client.Do(req)
	if err != nil {
		logger.Error("Gateway request failed", "method", method, "path", path, "error", err)
		return nil, &desktypes.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &desktypes.TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Hard reset: downstream components must not treat this as
		// retryable.
		logger.Warn("Backend rejected session token", "path", path)
		g.store.ClearSessionToken()
		return nil, desktypes.ErrReauthRequired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(payload, &eb)
		logger.Debug("Gateway error response",
			"method", method, "path", path,
			"status", resp.StatusCode, "detail", eb.Detail)
		return nil, &desktypes.TransportError{StatusCode: resp.StatusCode, Detail: eb.Detail}
	}

	return payload, nil
}

// GetJSON performs a GET request and decodes the JSON response into out.
func (g *GatewayService) GetJSON(path string, out any) error {
	payload, err := g.Do(http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &desktypes.TransportError{Detail: fmt.Sprintf("malformed response from %s: %v", path, err)}
	}
	return nil
}

// PostJSON performs a POST request with a JSON body and decodes the JSON
// response into out when out is non-nil.
func (g *GatewayService) PostJSON(path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	payload, err := g.Do(http.MethodPost, path, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &desktypes.TransportError{Detail: fmt.Sprintf("malformed response from %s: %v", path, err)}
	}
	return nil
}

// Delete performs a DELETE request, discarding the response body.
func (g *GatewayService) Delete(path string) error {
	_, err := g.Do(http.MethodDelete, path, nil, "")
	return err
}

// PostMultipart uploads a file plus form fields and decodes the JSON response
// into out when out is non-nil. Used by the assistant creation workflow.
func (g *GatewayService) PostMultipart(path string, fields map[string]string, fileField, fileName string, fileContent []byte, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(fileContent); err != nil {
		return fmt.Errorf("failed to write file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	payload, err := g.Do(http.MethodPost, path, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &desktypes.TransportError{Detail: fmt.Sprintf("malformed response from %s: %v", path, err)}
	}
	return nil
}
