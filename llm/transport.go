package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// DefaultEndpoint is the chat completions endpoint HTTPTransport posts to.
const DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

// InvokeInput carries one serialized chat-completions call.
type InvokeInput struct {
	ModelID     string // model identifier from the session
	Body        []byte // serialized JSON request body
	ContentType string // e.g., "application/json"
	Accept      string // e.g., "application/json"
	Credential  string // bearer token
}

// RawResponse is the undecoded reply of a transport.
type RawResponse struct {
	StatusCode int // 0 when the transport has no HTTP status to report
	Body       []byte
}

// Transport performs a single blocking round trip. Implementations must not retry.
type Transport interface {
	// Name returns the transport name (e.g., "http", "bedrock").
	Name() string

	// Invoke sends the request and returns the raw reply.
	Invoke(ctx context.Context, in *InvokeInput) (*RawResponse, error)
}

// InvokeFunc is the signature for the core round trip and middleware next functions.
type InvokeFunc func(ctx context.Context, in *InvokeInput) (*RawResponse, error)

// Middleware wraps a round trip.
type Middleware func(ctx context.Context, in *InvokeInput, next InvokeFunc) (*RawResponse, error)

// chain wraps t with middleware (first registered = outermost).
func chain(t Transport, middleware []Middleware) InvokeFunc {
	fn := InvokeFunc(t.Invoke)
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := fn
		fn = func(ctx context.Context, in *InvokeInput) (*RawResponse, error) {
			return mw(ctx, in, next)
		}
	}
	return fn
}

// HTTPTransport posts the request body to a chat completions endpoint with
// bearer authentication.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) HTTPOption {
	return func(t *HTTPTransport) {
		t.endpoint = endpoint
	}
}

// WithHTTPClient sets the client used for the round trip.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// NewHTTPTransport creates an HTTPTransport. Without options it posts to
// DefaultEndpoint using http.DefaultClient.
func NewHTTPTransport(opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoint: DefaultEndpoint,
		client:   http.DefaultClient,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *HTTPTransport) Name() string { return "http" }

// Endpoint returns the URL requests are posted to.
func (t *HTTPTransport) Endpoint() string { return t.endpoint }

func (t *HTTPTransport) Invoke(ctx context.Context, in *InvokeInput) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(in.Body))
	if err != nil {
		return nil, &Error{Kind: ErrConfig, Transport: t.Name(), Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+in.Credential)
	req.Header.Set("content-type", in.ContentType)
	if in.Accept != "" {
		req.Header.Set("Accept", in.Accept)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Transport: t.Name(), Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Transport: t.Name(), StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	return &RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
