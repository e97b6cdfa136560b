package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/bookhub/bookhub-service/pkg/breaker"
)

// APIError is a non-2xx response decoded from the service's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Retryable reports whether the caller may retry the request as-is.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusServiceUnavailable
}

type Client struct {
	baseURL string
	client  *http.Client
	cb      breaker.Breaker

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, ops ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Minute},
		cb:      breaker.New(20, 10*time.Second, 0.5, 3),
	}
	for _, op := range ops {
		op(c)
	}
	return c
}

// SetToken attaches the bearer token to subsequent mutating calls. Safe for
// concurrent use with in-flight requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) ListBooks(ctx context.Context, state FilterState) (ListBooks, error) {
	var out ListBooks
	err := c.do(ctx, http.MethodGet, "/api/books?"+state.Values().Encode(), nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) GetBook(ctx context.Context, id string) (Book, error) {
	var out Book
	err := c.do(ctx, http.MethodGet, "/api/books/"+id, nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	var out Book
	err := c.do(ctx, http.MethodPost, "/api/books", in, http.StatusCreated, &out)
	return out, err
}

func (c *Client) UpdateBook(ctx context.Context, id string, in BookInput) (Book, error) {
	var out Book
	err := c.do(ctx, http.MethodPut, "/api/books/"+id, in, http.StatusOK, &out)
	return out, err
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+id, nil, http.StatusNoContent, nil)
}

// Register creates an account and keeps the issued token on the client.
func (c *Client) Register(ctx context.Context, username, email, password string) (AuthResponse, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, http.StatusCreated, &out); err != nil {
		return AuthResponse{}, err
	}
	c.SetToken(out.Token)
	return out, nil
}

// Login authenticates and keeps the issued token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, http.StatusOK, &out); err != nil {
		return AuthResponse{}, err
	}
	c.SetToken(out.Token)
	return out, nil
}

// do runs the request through the circuit breaker. Only transport failures
// and 5xx responses count against the breaker; a 4xx is the caller's problem,
// not the service's health.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var callerErr error
	err := c.cb.Call(func() error {
		reqErr := c.roundTrip(ctx, method, path, body, wantStatus, out)
		var apiErr *APIError
		if errors.As(reqErr, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			callerErr = reqErr
			return nil
		}
		return reqErr
	})
	if err != nil {
		return err
	}
	return callerErr
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response")
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}
