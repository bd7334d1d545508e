// Package format sniffs whether raw content carries a CMMN document in XML
// or JSON form. Detection only peeks at a bounded prefix and has no side
// effects.
package format

import (
	"errors"
	"path/filepath"
	"strings"
)

// Format is the detected serialization of a document.
type Format int

const (
	Unknown Format = iota
	XML
	JSON
)

// String returns a human-readable format name.
func (f Format) String() string {
	switch f {
	case XML:
		return "xml"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat is returned when content matches neither XML nor JSON.
var ErrUnknownFormat = errors.New("content is neither XML nor JSON")

// maxPeek bounds how far Detect looks into the content. A real document
// reaches its first significant byte well within this window.
const maxPeek = 256

var utf8BOM = "\xef\xbb\xbf"

// Detect inspects the first non-whitespace, non-BOM bytes of the content.
// An XML declaration or opening tag means XML; a '{' or '[' means JSON.
func Detect(content []byte) (Format, error) {
	return DetectString(string(content[:min(len(content), maxPeek)]))
}

// DetectString is Detect for string input.
func DetectString(content string) (Format, error) {
	if len(content) > maxPeek {
		content = content[:maxPeek]
	}

	content = strings.TrimPrefix(content, utf8BOM)
	content = strings.TrimLeft(content, " \t\r\n")

	if content == "" {
		return Unknown, ErrUnknownFormat
	}

	switch content[0] {
	case '<':
		return XML, nil
	case '{', '[':
		return JSON, nil
	default:
		return Unknown, ErrUnknownFormat
	}
}

// FromPath guesses the format from a file extension. Unknown means the
// caller should fall back to content detection.
func FromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".xml", ".cmmn":
		return XML
	default:
		return Unknown
	}
}
