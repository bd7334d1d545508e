// Package resolve implements the reference-resolution machinery shared by
// the XML and JSON mappers: lexical definition scopes, a deferred linker,
// and the recursion depth guard.
//
// Resolution is two-phase. The mappers register every definition of a scope
// while walking the document, defer each plan item's reference, and call
// Link once the whole document has been constructed. Forward references
// therefore resolve regardless of document order.
package resolve

import (
	"errors"

	"cmmn-parser/model"
)

// DefaultMaxDepth bounds stage and case-file-item nesting when the caller
// does not configure a limit.
const DefaultMaxDepth = 32

// ErrDepthExceeded is returned when document nesting exceeds the configured
// maximum depth.
var ErrDepthExceeded = errors.New("maximum nesting depth exceeded")

// DepthGuard tracks recursion depth during a document walk.
type DepthGuard struct {
	depth int
	limit int
}

// NewDepthGuard creates a guard with the given limit. Non-positive limits
// fall back to DefaultMaxDepth.
func NewDepthGuard(limit int) *DepthGuard {
	if limit <= 0 {
		limit = DefaultMaxDepth
	}

	return &DepthGuard{limit: limit}
}

// Enter records one level of nesting and fails when the limit is exceeded.
// A failed Enter leaves the depth unchanged; every successful Enter must be
// paired with an Exit.
func (g *DepthGuard) Enter() error {
	if g.depth >= g.limit {
		return ErrDepthExceeded
	}

	g.depth++

	return nil
}

// Exit leaves one level of nesting.
func (g *DepthGuard) Exit() {
	g.depth--
}

// Scope is one lexical definition scope: a stage or a case plan model.
// Lookups walk outward to enclosing scopes, nearest scope first.
type Scope struct {
	parent *Scope
	defs   map[string]model.Definition
}

// NewScope creates a scope chained to the given parent. A nil parent marks
// the outermost scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		defs:   make(map[string]model.Definition),
	}
}

// Register adds a definition to this scope. Definitions without an id are
// not addressable and are ignored.
func (s *Scope) Register(def model.Definition) {
	if def == nil || def.GetID() == "" {
		return
	}

	s.defs[def.GetID()] = def
}

// Lookup resolves a reference, checking this scope first and then each
// enclosing scope up to the document root.
func (s *Scope) Lookup(ref string) (model.Definition, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if def, ok := cur.defs[ref]; ok {
			return def, true
		}
	}

	return nil, false
}

// Linker collects plan items whose definition references must be resolved
// after the whole document has been walked.
type Linker struct {
	pending []pendingLink
}

type pendingLink struct {
	item  *model.PlanItem
	scope *Scope
}

// Defer schedules a plan item for resolution against the given scope.
func (l *Linker) Defer(item *model.PlanItem, scope *Scope) {
	l.pending = append(l.pending, pendingLink{item: item, scope: scope})
}

// Link resolves every deferred reference. Unresolved references keep their
// raw string and a nil definition; Link never fails.
func (l *Linker) Link() {
	for _, p := range l.pending {
		if p.item.DefinitionRef == "" {
			continue
		}

		if def, ok := p.scope.Lookup(p.item.DefinitionRef); ok {
			p.item.Definition = def
		}
	}
}
