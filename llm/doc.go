// Package llm provides a Session that accumulates a chat transcript and sends it
// to an OpenAI-style chat completions endpoint.
//
// User turns may carry images given as http(s) URLs, paths to files on disk or
// seekable streams; files and streams are embedded as base64 data URIs. A
// session may request structured output by supplying a JSON Schema document,
// in which case Send also returns the reply parsed as JSON.
//
// The wire format is always the chat completions body; a Transport decides
// where it goes (plain HTTPS, the openai-go client, or Amazon Bedrock).
package llm
