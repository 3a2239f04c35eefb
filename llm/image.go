package llm

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ImageSourceKind identifies how an image input is turned into a URL.
type ImageSourceKind int

const (
	ImageSourceURL      ImageSourceKind = iota // http(s) URL, passed through
	ImageSourceFilePath                        // existing file on disk
	ImageSourceStream                          // caller-owned ReadableSource
)

func (k ImageSourceKind) String() string {
	switch k {
	case ImageSourceURL:
		return "url"
	case ImageSourceFilePath:
		return "file_path"
	case ImageSourceStream:
		return "file_like"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// ReadableSource is a stream an image can be read from. The read position is
// restored after encoding. Sources that also implement Name() string (such as
// *os.File) get their MIME type looked up from that name.
type ReadableSource interface {
	io.Reader
	io.Seeker
}

type namedSource interface {
	Name() string
}

// ClassifyImage decides whether input is a URL, an existing file path or a
// readable stream.
func ClassifyImage(input any) (ImageSourceKind, error) {
	switch v := input.(type) {
	case string:
		if u, err := url.Parse(v); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return ImageSourceURL, nil
		}
		if info, err := os.Stat(v); err == nil && info.Mode().IsRegular() {
			return ImageSourceFilePath, nil
		}
		return 0, &Error{
			Kind:    ErrInputClassification,
			Message: fmt.Sprintf("string provided is neither a valid URL (must start with http:// or https://) nor an existing file path on disk: %q", v),
		}
	case ReadableSource:
		return ImageSourceStream, nil
	default:
		return 0, &Error{
			Kind:    ErrInputClassification,
			Message: fmt.Sprintf("value provided is neither a string nor a readable, seekable stream: %T", input),
		}
	}
}

// ProcessImage turns an image input into the url of an image_url content part:
// URLs pass through unchanged, files and streams become base64 data URIs.
func ProcessImage(input any) (string, error) {
	kind, err := ClassifyImage(input)
	if err != nil {
		return "", err
	}

	switch kind {
	case ImageSourceURL:
		return input.(string), nil
	case ImageSourceFilePath:
		return encodeFile(input.(string))
	default:
		return encodeStream(input.(ReadableSource))
	}
}

func encodeFile(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", &Error{Kind: ErrInputClassification, Message: fmt.Sprintf("failed to read image %q", path), Cause: err}
	}
	return dataURI(mimeTypeFor(path), data), nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func encodeStream(src ReadableSource) (uri string, err error) {
	start, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", &Error{Kind: ErrInputClassification, Message: "failed to read stream position", Cause: err}
	}
	defer func() {
		if _, serr := src.Seek(start, io.SeekStart); serr != nil && err == nil {
			uri, err = "", &Error{Kind: ErrInputClassification, Message: "failed to restore stream position", Cause: serr}
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", &Error{Kind: ErrInputClassification, Message: "failed to read stream", Cause: err}
	}

	var mimeType string
	if n, ok := src.(namedSource); ok {
		mimeType = mimeTypeFor(n.Name())
	} else {
		mimeType = sniffMimeType(data)
	}
	return dataURI(mimeType, data), nil
}

// mimeTypeFor looks the type up by file extension. Unknown extensions yield "".
func mimeTypeFor(name string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	t, _, _ = strings.Cut(t, ";")
	return strings.TrimSpace(t)
}

func sniffMimeType(data []byte) string {
	t := http.DetectContentType(data)
	t, _, _ = strings.Cut(t, ";")
	if t == "application/octet-stream" {
		return ""
	}
	return t
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
