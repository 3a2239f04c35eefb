package llm

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// SDKTransport sends the request through the official openai-go client. The
// client's own retries are disabled; the session credential is applied per request.
type SDKTransport struct {
	client openai.Client
}

// NewSDKTransport creates an SDKTransport. opts are passed to openai.NewClient
// after the defaults, so option.WithBaseURL and friends can be supplied.
func NewSDKTransport(opts ...option.RequestOption) *SDKTransport {
	all := append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)
	return &SDKTransport{client: openai.NewClient(all...)}
}

func (t *SDKTransport) Name() string { return "sdk" }

func (t *SDKTransport) Invoke(ctx context.Context, in *InvokeInput) (*RawResponse, error) {
	var body []byte
	err := t.client.Post(ctx, "chat/completions", json.RawMessage(in.Body), &body,
		option.WithAPIKey(in.Credential),
		option.WithHeader("content-type", in.ContentType),
	)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, statusError(t.Name(), apiErr.StatusCode, apiErr.Message, apiErr.Code, []byte(apiErr.RawJSON()))
		}
		return nil, &Error{Kind: ErrTransport, Transport: t.Name(), Message: err.Error(), Cause: err}
	}

	return &RawResponse{Body: body}, nil
}
