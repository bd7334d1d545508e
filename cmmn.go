// Package cmmnparser parses CMMN case definitions from XML and JSON into a
// strongly-typed document model.
//
// The entry points detect the serialization, map the document, and resolve
// plan-item references against lexical stage scopes. JSON input is checked
// against a structural schema first; every violation is reported, not just
// the first. All errors returned by this package are *ParseError.
package cmmnparser

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cmmn-parser/internal/format"
	"cmmn-parser/internal/jsonmap"
	"cmmn-parser/internal/schema"
	"cmmn-parser/internal/xmlmap"
	"cmmn-parser/model"
)

type options struct {
	maxDepth int
	validate bool
}

// Option configures a parse call.
type Option func(*options)

// WithMaxDepth overrides the default nesting limit for stages and case file
// items. Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithoutValidation skips the structural schema check on JSON input. XML
// input is unaffected.
func WithoutValidation() Option {
	return func(o *options) {
		o.validate = false
	}
}

func buildOptions(opts []Option) options {
	o := options{validate: true}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// ParseString parses CMMN content, detecting XML or JSON from the first
// significant bytes.
func ParseString(content string, opts ...Option) (*model.Definitions, error) {
	o := buildOptions(opts)

	f, err := format.DetectString(content)
	if err != nil {
		return nil, formatError(err)
	}

	switch f {
	case format.XML:
		return parseXML([]byte(content), o)
	default:
		return parseJSONText([]byte(content), o)
	}
}

// ParseFile parses a CMMN file. The extension picks the format (".json" is
// JSON; ".xml" and ".cmmn" are XML); unrecognized extensions fall back to
// content detection.
func ParseFile(path string, opts ...Option) (*model.Definitions, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(err)
	}

	o := buildOptions(opts)

	switch format.FromPath(path) {
	case format.XML:
		return parseXML(content, o)
	case format.JSON:
		return parseJSONText(content, o)
	default:
		return ParseString(string(content), opts...)
	}
}

// ParseJSON parses a CMMN JSON document. It accepts raw text as string or
// []byte, or an already-decoded map[string]any.
func ParseJSON(data any, opts ...Option) (*model.Definitions, error) {
	o := buildOptions(opts)

	switch v := data.(type) {
	case string:
		return parseJSONText([]byte(v), o)
	case []byte:
		return parseJSONText(v, o)
	case map[string]any:
		return parseTree(v, o)
	default:
		return nil, &ParseError{
			Kind:    ErrorStructural,
			Message: fmt.Sprintf("unsupported JSON input type %T", data),
		}
	}
}

// ParseJSONFile parses a CMMN JSON file.
func ParseJSONFile(path string, opts ...Option) (*model.Definitions, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(err)
	}

	return parseJSONText(content, buildOptions(opts))
}

// ParseYAML parses a CMMN document in YAML form. The document shape is the
// same as the JSON form.
func ParseYAML(content []byte, opts ...Option) (*model.Definitions, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{Kind: ErrorStructural, Message: "invalid YAML: " + err.Error(), Cause: err}
	}

	return parseTree(doc, buildOptions(opts))
}

func parseXML(content []byte, o options) (*model.Definitions, error) {
	m := &xmlmap.Mapper{MaxDepth: o.maxDepth}

	defs, err := m.Parse(content)
	if err != nil {
		return nil, structuralError(err)
	}

	return defs, nil
}

func parseJSONText(content []byte, o options) (*model.Definitions, error) {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{Kind: ErrorStructural, Message: "invalid JSON: " + err.Error(), Cause: err}
	}

	tree, ok := doc.(map[string]any)
	if !ok {
		return nil, &ParseError{
			Kind:    ErrorStructural,
			Message: fmt.Sprintf("document must be a JSON object, got %T", doc),
		}
	}

	return parseTree(tree, o)
}

func parseTree(doc map[string]any, o options) (*model.Definitions, error) {
	if o.validate {
		if fs := schema.ValidateDepth(doc, o.maxDepth); !fs.IsValid() {
			return nil, &ParseError{
				Kind:     ErrorValidation,
				Message:  fmt.Sprintf("document has %d schema violation(s)", fs.Len()),
				Findings: fs.Strings(),
			}
		}
	}

	m := &jsonmap.Mapper{MaxDepth: o.maxDepth}

	defs, err := m.Parse(doc)
	if err != nil {
		return nil, structuralError(err)
	}

	return defs, nil
}
