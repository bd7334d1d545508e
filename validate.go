package cmmnparser

import (
	"encoding/json"
	"errors"
	"fmt"

	"cmmn-parser/internal/schema"
)

// ValidateJSON checks a CMMN JSON document against the structural schema
// without building a model. It accepts raw text as string or []byte, or an
// already-decoded map[string]any. A nil return means the document is valid;
// otherwise the *ParseError carries every violation.
func ValidateJSON(data any, opts ...Option) error {
	o := buildOptions(opts)

	doc, err := decodeDoc(data)
	if err != nil {
		return err
	}

	if fs := schema.ValidateDepth(doc, o.maxDepth); !fs.IsValid() {
		return &ParseError{
			Kind:     ErrorValidation,
			Message:  fmt.Sprintf("document has %d schema violation(s)", fs.Len()),
			Findings: fs.Strings(),
		}
	}

	return nil
}

// ValidationErrors returns every schema violation as a string, one per
// finding. It never fails: a document that cannot be decoded yields a
// single-entry slice describing the decode error, and a valid document
// yields nil.
func ValidationErrors(data any, opts ...Option) []string {
	err := ValidateJSON(data, opts...)
	if err == nil {
		return nil
	}

	var pe *ParseError
	if errors.As(err, &pe) && len(pe.Findings) > 0 {
		return pe.Findings
	}

	return []string{err.Error()}
}

// SchemaInfo describes the structural schema the validator applies.
type SchemaInfo struct {
	Title             string
	Version           string
	Description       string
	SupportedElements []string
}

// Schema returns the schema descriptor.
func Schema() SchemaInfo {
	return SchemaInfo{
		Title:             schema.Title,
		Version:           schema.Version,
		Description:       schema.Description,
		SupportedElements: schema.SupportedElements(),
	}
}

func decodeDoc(data any) (map[string]any, error) {
	switch v := data.(type) {
	case map[string]any:
		return v, nil
	case string:
		return decodeJSONBytes([]byte(v))
	case []byte:
		return decodeJSONBytes(v)
	default:
		return nil, &ParseError{
			Kind:    ErrorStructural,
			Message: fmt.Sprintf("unsupported JSON input type %T", data),
		}
	}
}

func decodeJSONBytes(content []byte) (map[string]any, error) {
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

	return tree, nil
}
