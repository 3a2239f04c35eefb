package llm

import (
	"encoding/json"
	"maps"
	"strings"
)

// Role represents a message participant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentKind identifies the type of a ContentPart.
type ContentKind string

const (
	ContentText     ContentKind = "text"
	ContentImageURL ContentKind = "image_url"
)

// ImageDetail specifies the level of detail for image processing.
type ImageDetail string

const (
	ImageDetailAuto ImageDetail = "auto"
	ImageDetailLow  ImageDetail = "low"
	ImageDetailHigh ImageDetail = "high"
)

// ContentPart is a tagged union: only the field matching Kind is populated.
type ContentPart struct {
	Kind  ContentKind
	Text  string    // Kind == ContentText
	Image *ImageURL // Kind == ContentImageURL
}

// ImageURL references an image by remote URL or data URI.
type ImageURL struct {
	URL   string         // http(s) URL or data URI
	Extra map[string]any // pass-through fields rendered next to url, e.g. "detail"
}

// TextPart creates a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: ContentText, Text: text}
}

// ImagePart creates an image content part referencing url.
func ImagePart(url string) ContentPart {
	return ContentPart{Kind: ContentImageURL, Image: &ImageURL{URL: url}}
}

// ImagePartWithDetail creates an image content part with a detail hint.
func ImagePartWithDetail(url string, detail ImageDetail) ContentPart {
	return ContentPart{
		Kind:  ContentImageURL,
		Image: &ImageURL{URL: url, Extra: map[string]any{"detail": string(detail)}},
	}
}

func (p ContentPart) clone() ContentPart {
	if p.Image != nil {
		img := *p.Image
		img.Extra = maps.Clone(p.Image.Extra)
		p.Image = &img
	}
	return p
}

func (p ContentPart) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ContentImageURL:
		img := map[string]any{}
		var url string
		if p.Image != nil {
			maps.Copy(img, p.Image.Extra)
			url = p.Image.URL
		}
		img["url"] = url
		return json.Marshal(struct {
			Type     ContentKind    `json:"type"`
			ImageURL map[string]any `json:"image_url"`
		}{ContentImageURL, img})
	default:
		return json.Marshal(struct {
			Type ContentKind `json:"type"`
			Text string      `json:"text"`
		}{ContentText, p.Text})
	}
}

// Message is a single entry in a transcript. Content is either the plain
// string in Text (Parts == nil) or the ordered Parts.
type Message struct {
	Role  Role
	Text  string
	Parts []ContentPart
}

// IsMultipart reports whether the message carries content parts rather than a plain string.
func (m Message) IsMultipart() bool {
	return m.Parts != nil
}

// Content returns the wire form of the message content: a string or a []ContentPart.
func (m Message) Content() any {
	if m.IsMultipart() {
		return m.Parts
	}
	return m.Text
}

// PlainText concatenates the text of the message, ignoring image parts.
func (m Message) PlainText() string {
	if !m.IsMultipart() {
		return m.Text
	}
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Kind == ContentText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func (m Message) clone() Message {
	if m.Parts == nil {
		return m
	}
	parts := make([]ContentPart, len(m.Parts))
	for i, p := range m.Parts {
		parts[i] = p.clone()
	}
	m.Parts = parts
	return m
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Role    Role `json:"role"`
		Content any  `json:"content"`
	}{m.Role, m.Content()})
}

// SystemMessage creates a system message with plain string content.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Text: text}
}

// UserMessage creates a user message with plain string content.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage creates an assistant message with plain string content.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// Segment is one element of the shorthand user content form: either a text
// fragment or an image input to be processed by ProcessImage.
type Segment struct {
	Text  string
	Image any
}

// TextSegment creates a text segment.
func TextSegment(text string) Segment { return Segment{Text: text} }

// ImageSegment creates an image segment. input is anything ProcessImage accepts.
func ImageSegment(input any) Segment { return Segment{Image: input} }

// Request is the unified chat-completions request built from a session.
type Request struct {
	Model    string
	Messages []Message
	Schema   *string // JSON Schema document; nil requests plain text
}

// Usage contains token counts from the response.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the parsed chat-completions reply.
type Response struct {
	ID           string
	Model        string
	Content      string
	FinishReason string
	Usage        Usage
	Raw          []byte // raw response JSON
}

// Reply is what Session.Send returns.
type Reply struct {
	Content  string    // raw assistant content, as recorded in the transcript
	Data     any       // parsed content when a schema was set
	Response *Response // full parsed response
	schema   bool
}

// Structured reports whether the reply was requested with a schema.
func (r *Reply) Structured() bool {
	return r.schema
}

// Value returns Data when a schema was set and Content otherwise.
func (r *Reply) Value() any {
	if r.schema {
		return r.Data
	}
	return r.Content
}

// Decode unmarshals the raw content into v.
func (r *Reply) Decode(v any) error {
	if err := json.Unmarshal([]byte(r.Content), v); err != nil {
		return &Error{Kind: ErrOutputParse, Message: "failed to decode assistant content", Cause: err, Raw: []byte(r.Content)}
	}
	return nil
}
