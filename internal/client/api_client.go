package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"lab-notebook-client/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// IAPIClient performs authenticated JSON exchanges with the notebook
// API. Credentials ride on the cookie jar; every non-GET call carries
// the anti-forgery token. The client holds no state beyond the cookie
// jar and the cached token, and it never retries a failed call.
type IAPIClient interface {
	Request(ctx context.Context, method, endpoint string, body, out interface{}) error
	Get(ctx context.Context, endpoint string, out interface{}) error
	Post(ctx context.Context, endpoint string, body, out interface{}) error
	Put(ctx context.Context, endpoint string, body, out interface{}) error
	Delete(ctx context.Context, endpoint string, out interface{}) error
	InvalidateToken()
	SaveCookies() error
}

type Options struct {
	BaseURL string
	// Timeout of 0 disables the client-side deadline; callers bound
	// requests through ctx instead.
	Timeout time.Duration
	// CookieFilePath enables session persistence across process runs.
	// Empty keeps cookies in memory only.
	CookieFilePath string
	Logger         logger.ILogger
}

type apiClient struct {
	baseURL string
	http    *http.Client
	tokens  *tokenSource
	jar     *PersistentJar
	logger  logger.ILogger
	tracer  trace.Tracer
}

func New(opts Options) (IAPIClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	c := &apiClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  log,
		tracer:  otel.Tracer("labnote/client"),
	}

	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.CookieFilePath != "" {
		jar, err := NewPersistentJar(opts.BaseURL, opts.CookieFilePath)
		if err != nil {
			return nil, err
		}
		c.jar = jar
		httpClient.Jar = jar
	} else {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	c.http = httpClient
	c.tokens = newTokenSource(c.fetchToken)

	return c, nil
}

func (c *apiClient) Get(ctx context.Context, endpoint string, out interface{}) error {
	return c.Request(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *apiClient) Post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Request(ctx, http.MethodPost, endpoint, body, out)
}

func (c *apiClient) Put(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.Request(ctx, http.MethodPut, endpoint, body, out)
}

func (c *apiClient) Delete(ctx context.Context, endpoint string, out interface{}) error {
	return c.Request(ctx, http.MethodDelete, endpoint, nil, out)
}

func (c *apiClient) Request(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var token string
	if method != http.MethodGet {
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("fetch csrf token: %w", err)
		}
		token = t
	}

	err := c.do(ctx, method, endpoint, body, token, out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isTokenRejection(apiErr) {
			// Drop the cached token so the next mutating call fetches a
			// fresh one. The rejected call itself is not retried.
			c.tokens.Invalidate()
		}
	}
	return err
}

// InvalidateToken discards the cached anti-forgery token.
func (c *apiClient) InvalidateToken() {
	c.tokens.Invalidate()
}

// SaveCookies flushes the session cookies to disk when persistence is
// configured; otherwise it is a no-op.
func (c *apiClient) SaveCookies() error {
	if c.jar == nil {
		return nil
	}
	return c.jar.Save()
}

func (c *apiClient) fetchToken(ctx context.Context) (string, error) {
	var res struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/csrf/restore", nil, "", &res); err != nil {
		return "", err
	}
	if res.CSRFToken == "" {
		return "", errors.New("empty csrf token in restore response")
	}
	return res.CSRFToken, nil
}

func (c *apiClient) do(ctx context.Context, method, endpoint string, body interface{}, token string, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, method+" "+endpoint)
	defer span.End()

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-CSRFToken", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("api_client", "transport failure", map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Envelope stays empty when the body is not JSON.
		envelope := map[string]interface{}{}
		if respBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			_ = json.Unmarshal(respBody, &envelope)
		}
		apiErr := &APIError{Status: resp.StatusCode, Body: envelope}
		c.logger.Warn("api_client", "request failed", map[string]interface{}{
			"method":   method,
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		})
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// isTokenRejection reports whether a failure looks like the server
// refusing our anti-forgery token rather than the request itself.
func isTokenRejection(err *APIError) bool {
	if err.Status != http.StatusForbidden && err.Status != http.StatusBadRequest {
		return false
	}
	return strings.Contains(strings.ToLower(err.Message("")), "csrf")
}
