package llm

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const (
	testImagePath = "testdata/test_image.jpg"
	testImageURL  = "https://example.com/image.jpg"
	testSchema    = `{"name":"weather","strict":true,"schema":{"type":"object","properties":{"city":{"type":"string"},"temp_c":{"type":"number"}},"required":["city","temp_c"],"additionalProperties":false}}`
)

func loadGolden(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}
	return data
}

func assertJSONEqual(t *testing.T, got, want []byte) {
	t.Helper()
	var gotVal, wantVal any
	if err := json.Unmarshal(got, &gotVal); err != nil {
		t.Fatalf("failed to parse got JSON: %v\nraw: %s", err, got)
	}
	if err := json.Unmarshal(want, &wantVal); err != nil {
		t.Fatalf("failed to parse want JSON: %v\nraw: %s", err, want)
	}
	gotNorm, _ := json.MarshalIndent(gotVal, "", "  ")
	wantNorm, _ := json.MarshalIndent(wantVal, "", "  ")
	if string(gotNorm) != string(wantNorm) {
		t.Errorf("JSON mismatch.\ngot:\n%s\nwant:\n%s", gotNorm, wantNorm)
	}
}

func readTestImage(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(testImagePath)
	if err != nil {
		t.Fatalf("failed to read test image: %v", err)
	}
	return data
}

// fakeTransport is a test double for Transport.
type fakeTransport struct {
	resp  *RawResponse
	err   error
	calls []*InvokeInput
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Invoke(_ context.Context, in *InvokeInput) (*RawResponse, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// lastBody decodes the body of the most recent call.
func (f *fakeTransport) lastBody(t *testing.T) map[string]any {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("transport was not called")
	}
	var body map[string]any
	if err := json.Unmarshal(f.calls[len(f.calls)-1].Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	return body
}

// completion builds a minimal chat completion reply with the given content.
func completion(content string) *RawResponse {
	body, _ := json.Marshal(map[string]any{
		"id":    "chatcmpl-test",
		"model": "gpt-4o",
		"choices": []any{map[string]any{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return &RawResponse{StatusCode: 200, Body: body}
}
