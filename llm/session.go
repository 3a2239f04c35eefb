package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session accumulates one conversation transcript and sends it to a chat
// completions endpoint. Messages are only ever appended.
//
// A Session is not safe for concurrent mutation; callers using it from
// several goroutines must serialize access themselves.
type Session struct {
	id         string
	credential string
	model      string
	schema     *string
	messages   []Message
	transport  Transport
	middleware []Middleware
	logger     *zap.Logger
}

type sessionConfig struct {
	model      string
	schema     *string
	transport  Transport
	middleware []Middleware
	logger     *zap.Logger
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithModel sets the model identifier. Defaults to DefaultModel.
func WithModel(model string) Option {
	return func(c *sessionConfig) {
		c.model = model
	}
}

// WithSchema requests structured output constrained by a JSON Schema document.
func WithSchema(schema string) Option {
	return func(c *sessionConfig) {
		c.schema = &schema
	}
}

// WithTransport sets the transport. Defaults to NewHTTPTransport().
func WithTransport(t Transport) Option {
	return func(c *sessionConfig) {
		c.transport = t
	}
}

// WithMiddleware adds middleware around the transport.
func WithMiddleware(m ...Middleware) Option {
	return func(c *sessionConfig) {
		c.middleware = append(c.middleware, m...)
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = l
	}
}

// NewSession creates a Session authenticated with credential. The credential
// is required even when the transport authenticates by other means.
func NewSession(credential string, opts ...Option) (*Session, error) {
	if credential == "" {
		return nil, &Error{Kind: ErrMissingCredential, Message: "no API token supplied"}
	}

	cfg := &sessionConfig{model: DefaultModel}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.transport == nil {
		cfg.transport = NewHTTPTransport()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	id := uuid.Must(uuid.NewV7()).String()
	return &Session{
		id:         id,
		credential: credential,
		model:      cfg.model,
		schema:     cfg.schema,
		transport:  cfg.transport,
		middleware: cfg.middleware,
		logger:     cfg.logger.With(zap.String("session_id", id)),
	}, nil
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// Model returns the model identifier.
func (s *Session) Model() string { return s.model }

// SetModel changes the model used by subsequent sends.
func (s *Session) SetModel(model string) { s.model = model }

// Schema returns the structured-output schema and whether one is set.
func (s *Session) Schema() (string, bool) {
	if s.schema == nil {
		return "", false
	}
	return *s.schema, true
}

// SetSchema requests structured output for subsequent sends.
func (s *Session) SetSchema(schema string) { s.schema = &schema }

// ClearSchema returns subsequent sends to plain text output.
func (s *Session) ClearSchema() { s.schema = nil }

// Len returns the number of messages in the transcript.
func (s *Session) Len() int { return len(s.messages) }

// Messages returns a copy of the transcript in conversation order.
func (s *Session) Messages() []Message {
	copied := make([]Message, len(s.messages))
	for i, m := range s.messages {
		copied[i] = m.clone()
	}
	return copied
}

func (s *Session) push(m Message) {
	s.messages = append(s.messages, m)
}

// System appends a system message.
func (s *Session) System(content string) {
	s.push(SystemMessage(content))
}

// Assistant appends an assistant message without calling the API, e.g. to
// seed few-shot examples.
func (s *Session) Assistant(content string) {
	s.push(AssistantMessage(content))
}

type userConfig struct {
	image     any
	images    []any
	hasImage  bool
	hasImages bool
}

// UserOption attaches images to a user message.
type UserOption func(*userConfig)

// WithImage attaches a single image. Accepts anything ProcessImage accepts.
func WithImage(input any) UserOption {
	return func(c *userConfig) {
		c.image = input
		c.hasImage = true
	}
}

// WithImages attaches several images in order. Cannot be combined with WithImage.
func WithImages(inputs ...any) UserOption {
	return func(c *userConfig) {
		c.images = append(c.images, inputs...)
		c.hasImages = true
	}
}

// User appends a user message. Without images the content is a plain string;
// with images it becomes a text part followed by one image part per image.
// On error the transcript is unchanged.
func (s *Session) User(content string, opts ...UserOption) error {
	cfg := &userConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.hasImage && cfg.hasImages {
		return &Error{Kind: ErrInvalidInput, Message: "pass either WithImage or WithImages, not both"}
	}

	inputs := cfg.images
	if cfg.hasImage {
		inputs = []any{cfg.image}
	}
	if len(inputs) == 0 {
		s.push(UserMessage(content))
		return nil
	}

	parts := make([]ContentPart, 0, len(inputs)+1)
	parts = append(parts, TextPart(content))
	for _, in := range inputs {
		url, err := ProcessImage(in)
		if err != nil {
			return err
		}
		parts = append(parts, ImagePart(url))
	}

	s.push(Message{Role: RoleUser, Parts: parts})
	return nil
}

// UserParts appends a user message whose content is parts, verbatim. Use it
// for fully custom content such as image parts with a detail hint.
func (s *Session) UserParts(parts []ContentPart) {
	m := Message{Role: RoleUser, Parts: make([]ContentPart, 0, len(parts))}
	m.Parts = append(m.Parts, parts...)
	s.push(m.clone())
}

// UserSegments appends a user message from the shorthand form, expanding each
// segment into a canonical part in order. On error the transcript is unchanged.
func (s *Session) UserSegments(segs ...Segment) error {
	parts := make([]ContentPart, 0, len(segs))
	for i, seg := range segs {
		if seg.Image == nil {
			parts = append(parts, TextPart(seg.Text))
			continue
		}
		if seg.Text != "" {
			return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf("segment %d has both text and image", i)}
		}
		url, err := ProcessImage(seg.Image)
		if err != nil {
			return err
		}
		parts = append(parts, ImagePart(url))
	}

	s.push(Message{Role: RoleUser, Parts: parts})
	return nil
}

// Send serializes the transcript, performs one blocking round trip and
// appends the reply as an assistant message.
//
// The assistant message is recorded before the structured-output parse, so
// an ErrOutputParse failure still leaves the raw reply in the transcript.
func (s *Session) Send(ctx context.Context) (*Reply, error) {
	req := &Request{
		Model:    s.model,
		Messages: s.messages,
		Schema:   s.schema,
	}

	in, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}
	in.Credential = s.credential

	start := time.Now()
	s.logger.Debug("sending transcript",
		zap.String("model", s.model),
		zap.String("transport", s.transport.Name()),
		zap.Int("message_count", len(s.messages)),
		zap.Bool("structured", s.schema != nil),
	)

	raw, err := chain(s.transport, s.middleware)(ctx, in)
	if err != nil {
		return nil, err
	}

	resp, err := decodeResponse(raw, s.transport.Name())
	if err != nil {
		return nil, err
	}

	s.push(AssistantMessage(resp.Content))
	s.logger.Debug("assistant replied",
		zap.String("response_id", resp.ID),
		zap.String("finish_reason", resp.FinishReason),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)

	reply := &Reply{Content: resp.Content, Response: resp, schema: s.schema != nil}
	if !reply.schema {
		return reply, nil
	}

	if err := json.Unmarshal([]byte(resp.Content), &reply.Data); err != nil {
		return nil, &Error{Kind: ErrOutputParse, Transport: s.transport.Name(), Message: "assistant content is not valid JSON", Cause: err, Raw: []byte(resp.Content)}
	}
	return reply, nil
}

// String describes the session without revealing the credential.
func (s *Session) String() string {
	schema := "nil"
	if s.schema != nil {
		schema = fmt.Sprintf("%q", *s.schema)
	}
	msgs, _ := json.Marshal(s.messages)
	return fmt.Sprintf("Session{id=%s model=%q schema=%s messages=%s}", s.id, s.model, schema, msgs)
}
