package llm

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestEncodeRequest_SimpleText(t *testing.T) {
	req := &Request{
		Model:    DefaultModel,
		Messages: []Message{UserMessage("Hello")},
	}
	input, err := encodeRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if input.ModelID != DefaultModel {
		t.Errorf("model = %q", input.ModelID)
	}
	if input.ContentType != "application/json" {
		t.Errorf("content type = %q", input.ContentType)
	}
	assertJSONEqual(t, input.Body, loadGolden(t, "openai/request_simple_text.json"))
}

func TestEncodeRequest_WithSchema(t *testing.T) {
	req := &Request{
		Model: "gpt-4o-mini",
		Messages: []Message{
			SystemMessage("Reply with weather data."),
			UserMessage("Weather in Oslo?"),
		},
		Schema: strPtr(testSchema),
	}
	input, err := encodeRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	assertJSONEqual(t, input.Body, loadGolden(t, "openai/request_with_schema.json"))
}

func TestEncodeRequest_Multimodal(t *testing.T) {
	req := &Request{
		Model: DefaultModel,
		Messages: []Message{
			SystemMessage("Describe images."),
			{Role: RoleUser, Parts: []ContentPart{
				TextPart("What is this?"),
				ImagePart(testImageURL),
				ImagePartWithDetail("https://example.com/other.png", ImageDetailHigh),
			}},
			AssistantMessage("A cat and a dog."),
		},
	}
	input, err := encodeRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	assertJSONEqual(t, input.Body, loadGolden(t, "openai/request_multimodal.json"))
}

func TestEncodeRequest_EmptyTranscript(t *testing.T) {
	input, err := encodeRequest(&Request{Model: DefaultModel})
	if err != nil {
		t.Fatal(err)
	}
	assertJSONEqual(t, input.Body, []byte(`{"model":"gpt-4o","response_format":{"type":"text"},"messages":[]}`))
}

func TestEncodeRequest_InvalidSchema(t *testing.T) {
	for _, schema := range []string{`{"name":`, `not json`, `null`, `["array"]`, `"string"`} {
		_, err := encodeRequest(&Request{Model: DefaultModel, Schema: strPtr(schema)})
		if !IsKind(err, ErrSchemaParse) {
			t.Errorf("schema %q: expected ErrSchemaParse, got %v", schema, err)
		}
	}
}

func TestDecodeResponse_Text(t *testing.T) {
	raw := &RawResponse{StatusCode: 200, Body: loadGolden(t, "openai/response_text.json")}
	resp, err := decodeResponse(raw, "http")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "Hello! How can I help you today?" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.ID != "chatcmpl-abc123" {
		t.Errorf("ID = %q", resp.ID)
	}
	if resp.Model != "gpt-4o-2024-08-06" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 18 || resp.Usage.PromptTokens != 9 || resp.Usage.CompletionTokens != 9 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestDecodeResponse_NoStatusFromTransport(t *testing.T) {
	raw := &RawResponse{Body: loadGolden(t, "openai/response_structured.json")}
	resp, err := decodeResponse(raw, "bedrock")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != `{"city":"Oslo","temp_c":4.5}` {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestDecodeResponse_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>bad gateway</html>`},
		{"empty body", ``},
		{"no choices key", `{"id":"x"}`},
		{"empty choices", `{"choices":[]}`},
		{"no message", `{"choices":[{"index":0}]}`},
		{"null content", string(loadGolden(t, "openai/response_refusal.json"))},
		{"content not string", `{"choices":[{"message":{"content":42}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeResponse(&RawResponse{StatusCode: 200, Body: []byte(tt.body)}, "http")
			var llmErr *Error
			if !errors.As(err, &llmErr) {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if llmErr.Kind != ErrResponseShape {
				t.Errorf("Kind = %v, want ErrResponseShape", llmErr.Kind)
			}
			if llmErr.Transport != "http" {
				t.Errorf("Transport = %q", llmErr.Transport)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     []byte
		wantKind ErrorKind
		wantMsg  string
	}{
		{"unauthorized", 401, loadGolden(t, "openai/error_unauthorized.json"), ErrAuthentication, "Incorrect API key provided: dummy_token."},
		{"forbidden", 403, nil, ErrAuthentication, "status 403"},
		{"bad request", 400, []byte(`{"error":{"message":"bad"}}`), ErrInvalidRequest, "bad"},
		{"context length", 400, loadGolden(t, "openai/error_context_length.json"), ErrContextLength, "This model's maximum context length is 128000 tokens."},
		{"not found", 404, nil, ErrNotFound, "status 404"},
		{"rate limit", 429, []byte(`{"error":{"message":"slow down"}}`), ErrRateLimit, "slow down"},
		{"server", 503, []byte(`upstream connect error`), ErrServer, "status 503"},
		{"redirect", 302, nil, ErrResponseShape, "status 302"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStatus("http", tt.status, tt.body)
			var llmErr *Error
			if !errors.As(err, &llmErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if llmErr.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", llmErr.Kind, tt.wantKind)
			}
			if llmErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", llmErr.Message, tt.wantMsg)
			}
			if llmErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d", llmErr.StatusCode)
			}
		})
	}
}

func TestDecodeResponse_Non2xxIsClassified(t *testing.T) {
	raw := &RawResponse{StatusCode: 401, Body: loadGolden(t, "openai/error_unauthorized.json")}
	_, err := decodeResponse(raw, "http")
	if !IsKind(err, ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got %v", err)
	}
}
