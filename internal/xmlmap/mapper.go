// Package xmlmap maps a parsed CMMN XML element tree onto the document
// model. The walk is a recursive descent keyed by element local name;
// namespace prefixes are irrelevant. Unrecognized child elements are
// skipped for forward tolerance, but a missing required id fails fast.
package xmlmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"cmmn-parser/internal/resolve"
	"cmmn-parser/model"
)

// Mapper parses CMMN XML documents.
type Mapper struct {
	// MaxDepth bounds stage and case-file-item nesting. Non-positive means
	// resolve.DefaultMaxDepth.
	MaxDepth int
}

// walk carries the per-parse state: the depth guard and the deferred
// reference linker.
type walk struct {
	guard  *resolve.DepthGuard
	linker *resolve.Linker
}

// Parse maps XML content to a Definitions tree.
func (m *Mapper) Parse(content []byte) (*model.Definitions, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.New("no root element found")
	}

	if root.Tag != "definitions" {
		return nil, fmt.Errorf("root element must be %q, got %q", "definitions", root.Tag)
	}

	w := &walk{
		guard:  resolve.NewDepthGuard(m.MaxDepth),
		linker: &resolve.Linker{},
	}

	defs := &model.Definitions{
		ID:                 attr(root, "id"),
		Name:               attr(root, "name"),
		TargetNamespace:    attr(root, "targetNamespace"),
		ExpressionLanguage: attr(root, "expressionLanguage"),
		Exporter:           attr(root, "exporter"),
		ExporterVersion:    attr(root, "exporterVersion"),
	}

	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "import":
			defs.Imports = append(defs.Imports, &model.Import{
				ID:         attr(child, "id"),
				Namespace:  attr(child, "namespace"),
				Location:   attr(child, "location"),
				ImportType: attr(child, "importType"),
			})
		case "caseFileItemDefinition":
			cfid, err := parseCaseFileItemDefinition(child)
			if err != nil {
				return nil, err
			}

			defs.CaseFileItemDefinitions = append(defs.CaseFileItemDefinitions, cfid)
		case "case":
			c, err := w.parseCase(child)
			if err != nil {
				return nil, err
			}

			defs.Cases = append(defs.Cases, c)
		case "process":
			p, err := parseProcess(child)
			if err != nil {
				return nil, err
			}

			defs.Processes = append(defs.Processes, p)
		case "decision":
			d, err := parseDecision(child)
			if err != nil {
				return nil, err
			}

			defs.Decisions = append(defs.Decisions, d)
		}
	}

	// Every definition in the document is registered by now; link the plan
	// items so forward references resolve.
	w.linker.Link()

	return defs, nil
}

func (w *walk) parseCase(el *etree.Element) (*model.Case, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	c := &model.Case{ID: id, Name: attr(el, "name")}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "casePlanModel":
			st, err := w.parseStage(child, nil)
			if err != nil {
				return nil, err
			}

			c.CasePlanModel = &model.CasePlanModel{Stage: *st}
		case "caseFileModel":
			cfm, err := w.parseCaseFileModel(child)
			if err != nil {
				return nil, err
			}

			c.CaseFileModel = cfm
		case "caseRoles":
			for _, roleEl := range child.ChildElements() {
				if roleEl.Tag != "role" {
					continue
				}

				c.Roles = append(c.Roles, &model.Role{
					ID:   attr(roleEl, "id"),
					Name: attr(roleEl, "name"),
				})
			}
		}
	}

	return c, nil
}

// parseStage maps a stage or case plan model element. Phase one constructs
// every definition of the scope in document order; phase two constructs the
// plan items and defers their linking.
func (w *walk) parseStage(el *etree.Element, parent *resolve.Scope) (*model.Stage, error) {
	if err := w.guard.Enter(); err != nil {
		return nil, fmt.Errorf("%s %q: %w", el.Tag, attr(el, "id"), err)
	}
	defer w.guard.Exit()

	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	autoComplete, err := boolAttr(el, "autoComplete", false)
	if err != nil {
		return nil, err
	}

	st := &model.Stage{
		ID:           id,
		Name:         attr(el, "name"),
		AutoComplete: autoComplete,
	}

	scope := resolve.NewScope(parent)

	for _, child := range el.ChildElements() {
		var (
			def    model.Definition
			defErr error
		)

		switch child.Tag {
		case "stage":
			def, defErr = w.parseStage(child, scope)
		case "task", "humanTask", "processTask", "caseTask", "decisionTask":
			def, defErr = parseTask(child)
		case "milestone":
			def, defErr = parseMilestone(child)
		case "timerEventListener":
			def, defErr = parseTimerEventListener(child)
		case "userEventListener":
			def, defErr = parseUserEventListener(child)
		default:
			continue
		}

		if defErr != nil {
			return nil, defErr
		}

		st.Definitions = append(st.Definitions, def)
		scope.Register(def)
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "planItem":
			pi, err := parsePlanItem(child)
			if err != nil {
				return nil, err
			}

			st.PlanItems = append(st.PlanItems, pi)
			w.linker.Defer(pi, scope)
		case "sentry":
			sn, err := parseSentry(child)
			if err != nil {
				return nil, err
			}

			st.Sentries = append(st.Sentries, sn)
		}
	}

	return st, nil
}

func parseTask(el *etree.Element) (model.Definition, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	isBlocking, err := boolAttr(el, "isBlocking", true)
	if err != nil {
		return nil, err
	}

	core := model.Task{ID: id, Name: attr(el, "name"), IsBlocking: isBlocking}

	switch el.Tag {
	case "humanTask":
		return &model.HumanTask{
			Task:      core,
			Performer: attr(el, "performer"),
			FormKey:   attr(el, "formKey"),
		}, nil
	case "processTask":
		return &model.ProcessTask{Task: core, ProcessRef: attr(el, "processRef")}, nil
	case "caseTask":
		return &model.CaseTask{Task: core, CaseRef: attr(el, "caseRef")}, nil
	case "decisionTask":
		return &model.DecisionTask{Task: core, DecisionRef: attr(el, "decisionRef")}, nil
	default:
		return &core, nil
	}
}

func parseMilestone(el *etree.Element) (model.Definition, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	return &model.Milestone{ID: id, Name: attr(el, "name")}, nil
}

func parseTimerEventListener(el *etree.Element) (model.Definition, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	return &model.TimerEventListener{
		ID:              id,
		Name:            attr(el, "name"),
		TimerExpression: childText(el, "timerExpression"),
	}, nil
}

func parseUserEventListener(el *etree.Element) (model.Definition, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	return &model.UserEventListener{
		ID:                 id,
		Name:               attr(el, "name"),
		AuthorizedRoleRefs: strings.Fields(attr(el, "authorizedRoleRefs")),
	}, nil
}

func parsePlanItem(el *etree.Element) (*model.PlanItem, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	pi := &model.PlanItem{
		ID:                id,
		Name:              attr(el, "name"),
		DefinitionRef:     attr(el, "definitionRef"),
		EntryCriteriaRefs: strings.Fields(attr(el, "entryCriteriaRefs")),
		ExitCriteriaRefs:  strings.Fields(attr(el, "exitCriteriaRefs")),
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "entryCriterion":
			if ref := attr(child, "sentryRef"); ref != "" {
				pi.EntryCriteriaRefs = append(pi.EntryCriteriaRefs, ref)
			}
		case "exitCriterion":
			if ref := attr(child, "sentryRef"); ref != "" {
				pi.ExitCriteriaRefs = append(pi.ExitCriteriaRefs, ref)
			}
		case "itemControl":
			pi.ItemControl = parseItemControl(child)
		}
	}

	return pi, nil
}

func parseItemControl(el *etree.Element) *model.ItemControl {
	ic := &model.ItemControl{}

	for _, child := range el.ChildElements() {
		var target **string

		switch child.Tag {
		case "requiredRule":
			target = &ic.RequiredRule
		case "repetitionRule":
			target = &ic.RepetitionRule
		case "manualActivationRule":
			target = &ic.ManualActivationRule
		default:
			continue
		}

		cond := childText(child, "condition")
		*target = &cond
	}

	return ic
}

func parseSentry(el *etree.Element) (*model.Sentry, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	sn := &model.Sentry{ID: id, Name: attr(el, "name")}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		// Both spellings occur in the wild.
		case "onPart", "planItemOnPart":
			sn.OnParts = append(sn.OnParts, &model.OnPart{
				ID:            attr(child, "id"),
				SourceRef:     attr(child, "sourceRef"),
				StandardEvent: childText(child, "standardEvent"),
			})
		case "ifPart":
			ip := &model.IfPart{ID: attr(child, "id")}

			ip.Condition = childText(child, "condition")
			if ip.Condition == "" {
				ip.Condition = strings.TrimSpace(child.Text())
			}

			sn.IfPart = ip
		}
	}

	return sn, nil
}

func (w *walk) parseCaseFileModel(el *etree.Element) (*model.CaseFileModel, error) {
	cfm := &model.CaseFileModel{ID: attr(el, "id"), Name: attr(el, "name")}

	for _, child := range el.ChildElements() {
		if child.Tag != "caseFileItem" {
			continue
		}

		item, err := w.parseCaseFileItem(child)
		if err != nil {
			return nil, err
		}

		cfm.CaseFileItems = append(cfm.CaseFileItems, item)
	}

	return cfm, nil
}

func (w *walk) parseCaseFileItem(el *etree.Element) (*model.CaseFileItem, error) {
	if err := w.guard.Enter(); err != nil {
		return nil, fmt.Errorf("caseFileItem %q: %w", attr(el, "id"), err)
	}
	defer w.guard.Exit()

	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	item := &model.CaseFileItem{
		ID:            id,
		Name:          attr(el, "name"),
		DefinitionRef: attr(el, "definitionRef"),
		Multiplicity:  attr(el, "multiplicity"),
		SourceRef:     attr(el, "sourceRef"),
		TargetRefs:    strings.Fields(attr(el, "targetRefs")),
	}

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "caseFileItem":
			nested, err := w.parseCaseFileItem(child)
			if err != nil {
				return nil, err
			}

			item.Children = append(item.Children, nested)
		case "definitiveProperty":
			item.DefinitiveProperties = append(item.DefinitiveProperties, attr(child, "name"))
		}
	}

	return item, nil
}

func parseCaseFileItemDefinition(el *etree.Element) (*model.CaseFileItemDefinition, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	cfid := &model.CaseFileItemDefinition{
		ID:           id,
		Name:         attr(el, "name"),
		StructureRef: attr(el, "structureRef"),
	}

	for _, child := range el.ChildElements() {
		if child.Tag == "definitiveProperty" {
			cfid.DefinitiveProperties = append(cfid.DefinitiveProperties, attr(child, "name"))
		}
	}

	return cfid, nil
}

func parseProcess(el *etree.Element) (*model.Process, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	isExecutable, err := boolAttr(el, "isExecutable", true)
	if err != nil {
		return nil, err
	}

	return &model.Process{
		ID:                 id,
		Name:               attr(el, "name"),
		IsExecutable:       isExecutable,
		ImplementationType: attr(el, "implementationType"),
	}, nil
}

func parseDecision(el *etree.Element) (*model.Decision, error) {
	id, err := requiredAttr(el, "id")
	if err != nil {
		return nil, err
	}

	return &model.Decision{
		ID:            id,
		Name:          attr(el, "name"),
		DecisionLogic: childText(el, "decisionLogic"),
	}, nil
}

func attr(el *etree.Element, key string) string {
	return el.SelectAttrValue(key, "")
}

func requiredAttr(el *etree.Element, key string) (string, error) {
	v := attr(el, key)
	if v == "" {
		return "", fmt.Errorf("element %q: required attribute %q is missing", el.Tag, key)
	}

	return v, nil
}

// boolAttr parses "true"/"false" case-sensitively, returning the default
// when the attribute is absent. Any other literal is a structural error.
func boolAttr(el *etree.Element, key string, dflt bool) (bool, error) {
	switch v := attr(el, key); v {
	case "":
		return dflt, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("element %q: attribute %q must be \"true\" or \"false\", got %q", el.Tag, key, v)
	}
}

// childText returns the trimmed text of the first child with the given
// local name, or "" when absent.
func childText(el *etree.Element, tag string) string {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return strings.TrimSpace(child.Text())
		}
	}

	return ""
}
