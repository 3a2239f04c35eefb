package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies session errors.
type ErrorKind int

const (
	ErrConfig               ErrorKind = iota // misconfiguration
	ErrMissingCredential                     // no bearer token supplied
	ErrInvalidInput                          // caller passed mutually exclusive or malformed arguments
	ErrInputClassification                   // image input is neither URL, file path nor readable stream
	ErrSchemaParse                           // schema is not valid JSON Schema syntax
	ErrTransport                             // network/TLS failure
	ErrResponseShape                         // reply is not JSON or lacks choices[0].message.content
	ErrOutputParse                           // schema requested but model output is not JSON
	ErrAuthentication                        // 401/403
	ErrNotFound                              // 404
	ErrInvalidRequest                        // 400
	ErrRateLimit                             // 429
	ErrServer                                // 500+
	ErrContextLength                         // input too large
	ErrContentFilter                         // blocked by safety guardrails
)

var errorKindNames = [...]string{
	ErrConfig:              "config",
	ErrMissingCredential:   "missing_credential",
	ErrInvalidInput:        "invalid_input",
	ErrInputClassification: "input_classification",
	ErrSchemaParse:         "schema_parse",
	ErrTransport:           "transport",
	ErrResponseShape:       "response_shape",
	ErrOutputParse:         "output_parse",
	ErrAuthentication:      "authentication",
	ErrNotFound:            "not_found",
	ErrInvalidRequest:      "invalid_request",
	ErrRateLimit:           "rate_limit",
	ErrServer:              "server",
	ErrContextLength:       "context_length",
	ErrContentFilter:       "content_filter",
}

func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", k)
}

// Error is the library's error type.
type Error struct {
	Kind       ErrorKind
	Transport  string // transport name when the error came from a round trip
	Message    string
	StatusCode int    // HTTP status if available
	Cause      error  // underlying error
	Raw        []byte // raw response body if available
}

func (e *Error) Error() string {
	if e.Transport != "" {
		return fmt.Sprintf("llm [%s] %s: %s", e.Kind, e.Transport, e.Message)
	}
	return fmt.Sprintf("llm [%s]: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
