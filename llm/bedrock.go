package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockInvoker abstracts the Bedrock InvokeModel call for testing.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockTransport sends the chat-completions body to a Bedrock model that
// speaks the same format (e.g. openai.gpt-oss-*). Authentication comes from the
// AWS configuration behind the invoker; the session credential is not sent.
type BedrockTransport struct {
	bedrock BedrockInvoker
	modelID string
}

// NewBedrockTransport creates a BedrockTransport. A non-empty modelID replaces
// the session model as the Bedrock model ID.
func NewBedrockTransport(bedrock BedrockInvoker, modelID string) *BedrockTransport {
	return &BedrockTransport{bedrock: bedrock, modelID: modelID}
}

func (t *BedrockTransport) Name() string { return "bedrock" }

func (t *BedrockTransport) Invoke(ctx context.Context, in *InvokeInput) (*RawResponse, error) {
	modelID := in.ModelID
	if t.modelID != "" {
		modelID = t.modelID
	}

	output, err := t.bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &modelID,
		Body:        in.Body,
		ContentType: &in.ContentType,
		Accept:      &in.Accept,
	})
	if err != nil {
		return nil, classifyBedrockError(t.Name(), err)
	}

	return &RawResponse{Body: output.Body}, nil
}

func classifyBedrockError(transport string, err error) error {
	var kind ErrorKind
	msg := err.Error()

	// Check for specific Bedrock exception types
	var accessDenied *types.AccessDeniedException
	var validation *types.ValidationException
	var notFound *types.ResourceNotFoundException
	var throttling *types.ThrottlingException
	var timeout *types.ModelTimeoutException
	var internal *types.InternalServerException
	var modelErr *types.ModelErrorException

	switch {
	case errors.As(err, &accessDenied):
		kind = ErrAuthentication
	case errors.As(err, &validation):
		kind = ErrInvalidRequest
	case errors.As(err, &notFound):
		kind = ErrNotFound
	case errors.As(err, &throttling):
		kind = ErrRateLimit
	case errors.As(err, &timeout):
		kind = ErrServer
	case errors.As(err, &internal):
		kind = ErrServer
	case errors.As(err, &modelErr):
		kind = ErrServer
	default:
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "context length") || strings.Contains(lower, "too many tokens"):
			kind = ErrContextLength
		case strings.Contains(lower, "content filter") || strings.Contains(lower, "guardrail"):
			kind = ErrContentFilter
		default:
			kind = ErrTransport
		}
	}

	return &Error{
		Kind:      kind,
		Transport: transport,
		Message:   msg,
		Cause:     err,
	}
}
