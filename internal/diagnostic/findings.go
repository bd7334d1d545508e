// Package diagnostic collects the structural findings produced while
// validating a CMMN document tree. Findings accumulate; validation never
// stops at the first problem.
package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Finding is a single validation finding, located by a dotted/bracket
// document path such as "definitions.cases[0].id".
type Finding struct {
	// Path locates the offending value in the document.
	Path string
	// Code is a stable identifier for this type of finding.
	Code string
	// Message is the human-readable description.
	Message string
}

// String returns the formatted finding.
func (f Finding) String() string {
	msg := f.Message
	if f.Code != "" {
		msg = fmt.Sprintf("[%s] %s", f.Code, msg)
	}

	if f.Path == "" {
		return msg
	}

	return f.Path + ": " + msg
}

// Findings is an ordered collection of findings.
type Findings struct {
	Items []Finding
}

// Add appends a finding.
func (fs *Findings) Add(path, code, message string) {
	fs.Items = append(fs.Items, Finding{Path: path, Code: code, Message: message})
}

// Merge appends another collection's findings to this one.
func (fs *Findings) Merge(other *Findings) {
	if other == nil {
		return
	}

	fs.Items = append(fs.Items, other.Items...)
}

// IsValid returns true if there are no findings.
func (fs *Findings) IsValid() bool {
	return len(fs.Items) == 0
}

// Len returns the number of findings.
func (fs *Findings) Len() int {
	return len(fs.Items)
}

// Strings returns the formatted findings, one per entry, in order.
func (fs *Findings) Strings() []string {
	if len(fs.Items) == 0 {
		return nil
	}

	out := make([]string, 0, len(fs.Items))
	for _, f := range fs.Items {
		out = append(out, f.String())
	}

	return out
}

// Error returns a combined error from all findings, or nil if valid.
func (fs *Findings) Error() error {
	if fs.IsValid() {
		return nil
	}

	return errors.New(strings.Join(fs.Strings(), "; "))
}
