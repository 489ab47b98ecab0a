// Package client implements the JSON-RPC binding of the Mealmesh A2A
// protocol over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultTimeout bounds every remote call. There is no retry at this layer;
// re-invocation is the caller's decision.
const DefaultTimeout = 30 * time.Second

// Client wraps the JSON-RPC binding for A2A.
type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    map[string]string
	timeout    time.Duration
}

// Option configures the client.
type Option func(*Client)

// New creates a JSON-RPC client bound to an HTTP endpoint.
func New(endpoint string, opts ...Option) *Client {
	client := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// WithHeaders sets default headers for each request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = cloneHeaders(headers)
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout overrides the per-call budget.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Endpoint returns the bound RPC endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SendMessage invokes the SendMessage JSON-RPC method.
func (c *Client) SendMessage(ctx context.Context, req *a2av1.SendMessageRequest) (*a2av1.SendMessageResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	raw, err := c.call(ctx, "SendMessage", req)
	if err != nil {
		return nil, err
	}
	return &a2av1.SendMessageResponse{Raw: raw}, nil
}

// GetTask invokes the GetTask method.
func (c *Client) GetTask(ctx context.Context, req *a2av1.GetTaskRequest) (*a2av1.Task, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	raw, err := c.call(ctx, "GetTask", req)
	if err != nil {
		return nil, err
	}
	resp := &a2av1.Task{}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CancelTask invokes the CancelTask method.
func (c *Client) CancelTask(ctx context.Context, req *a2av1.CancelTaskRequest) (*a2av1.Task, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	raw, err := c.call(ctx, "CancelTask", req)
	if err != nil {
		return nil, err
	}
	resp := &a2av1.Task{}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  json.RawMessage(payload),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	c.applyHeaders(ctx, request)
	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError(resp)
	}
	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, status.Error(codes.Unknown, err.Error())
	}
	if decoded.Error != nil {
		return nil, status.Error(codes.Unknown, decoded.Error.Message)
	}
	return decoded.Result, nil
}

func (c *Client) applyHeaders(ctx context.Context, request *http.Request) {
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))
}

// transportError separates a blown call budget from plain network failure.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Unavailable, err.Error())
}

func parseHTTPError(response *http.Response) error {
	payload, _ := io.ReadAll(response.Body)
	if len(payload) == 0 {
		return status.Error(codes.Unknown, response.Status)
	}
	var decoded struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return status.Error(codes.Unknown, response.Status)
	}
	detail := decoded.Detail
	if detail == "" {
		detail = decoded.Title
	}
	if detail == "" {
		detail = response.Status
	}
	return status.Error(codes.Unknown, detail)
}

func cloneHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		out[key] = value
	}
	return out
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
