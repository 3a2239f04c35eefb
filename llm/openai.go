package llm

import (
	"encoding/json"
	"fmt"
)

// DefaultModel is the model a session uses unless WithModel says otherwise.
const DefaultModel = "gpt-4o"

// --- chat completions request types ---

type openaiRequest struct {
	Model          string               `json:"model"`
	ResponseFormat openaiResponseFormat `json:"response_format"`
	Messages       []Message            `json:"messages"`
}

type openaiResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// responseFormat builds the response_format directive. A set schema must be a
// JSON object; it is embedded verbatim.
func responseFormat(schema *string) (openaiResponseFormat, error) {
	if schema == nil {
		return openaiResponseFormat{Type: "text"}, nil
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(*schema), &doc); err != nil {
		return openaiResponseFormat{}, &Error{Kind: ErrSchemaParse, Message: "schema is not a valid JSON object", Cause: err, Raw: []byte(*schema)}
	}
	if doc == nil {
		return openaiResponseFormat{}, &Error{Kind: ErrSchemaParse, Message: "schema is null", Raw: []byte(*schema)}
	}
	return openaiResponseFormat{Type: "json_schema", JSONSchema: json.RawMessage(*schema)}, nil
}

func encodeRequest(req *Request) (*InvokeInput, error) {
	rf, err := responseFormat(req.Schema)
	if err != nil {
		return nil, err
	}

	messages := req.Messages
	if messages == nil {
		messages = []Message{}
	}

	body, err := json.Marshal(openaiRequest{
		Model:          req.Model,
		ResponseFormat: rf,
		Messages:       messages,
	})
	if err != nil {
		return nil, &Error{Kind: ErrConfig, Message: "failed to marshal request", Cause: err}
	}

	return &InvokeInput{
		ModelID:     req.Model,
		Body:        body,
		ContentType: "application/json",
		Accept:      "application/json",
	}, nil
}

// --- chat completions response types ---

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiRespMsg `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiRespMsg struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openaiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func decodeResponse(raw *RawResponse, transport string) (*Response, error) {
	if raw.StatusCode != 0 && (raw.StatusCode < 200 || raw.StatusCode > 299) {
		return nil, classifyStatus(transport, raw.StatusCode, raw.Body)
	}

	var or openaiResponse
	if err := json.Unmarshal(raw.Body, &or); err != nil {
		return nil, &Error{Kind: ErrResponseShape, Transport: transport, StatusCode: raw.StatusCode, Message: "failed to unmarshal response", Cause: err, Raw: raw.Body}
	}
	if len(or.Choices) == 0 {
		return nil, &Error{Kind: ErrResponseShape, Transport: transport, StatusCode: raw.StatusCode, Message: "response has no choices", Raw: raw.Body}
	}

	choice := or.Choices[0]
	if choice.Message.Content == nil {
		return nil, &Error{Kind: ErrResponseShape, Transport: transport, StatusCode: raw.StatusCode, Message: "response lacks choices[0].message.content", Raw: raw.Body}
	}

	return &Response{
		ID:           or.ID,
		Model:        or.Model,
		Content:      *choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     or.Usage.PromptTokens,
			CompletionTokens: or.Usage.CompletionTokens,
			TotalTokens:      or.Usage.TotalTokens,
		},
		Raw: raw.Body,
	}, nil
}

// classifyStatus maps a non-2xx reply to an error kind, preferring the API's
// own error message when the body carries one.
func classifyStatus(transport string, status int, body []byte) error {
	var message, code string
	var eb openaiErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != nil {
		message = eb.Error.Message
		code, _ = eb.Error.Code.(string)
	}
	return statusError(transport, status, message, code, body)
}

func statusError(transport string, status int, message, code string, raw []byte) error {
	var kind ErrorKind
	switch {
	case status == 400:
		kind = ErrInvalidRequest
		if code == "context_length_exceeded" {
			kind = ErrContextLength
		}
	case status == 401 || status == 403:
		kind = ErrAuthentication
	case status == 404:
		kind = ErrNotFound
	case status == 429:
		kind = ErrRateLimit
	case status >= 500:
		kind = ErrServer
	default:
		kind = ErrResponseShape
	}

	if message == "" {
		message = fmt.Sprintf("status %d", status)
	}
	return &Error{Kind: kind, Transport: transport, StatusCode: status, Message: message, Raw: raw}
}
