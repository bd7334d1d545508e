// Package jsonmap maps a decoded CMMN JSON value tree onto the document
// model. The accepted shape is exactly what model.Definitions.ToDict emits,
// so parse and serialize round-trip. Unknown keys are ignored; a known key
// with the wrong type fails fast.
package jsonmap

import (
	"errors"
	"fmt"

	"cmmn-parser/internal/resolve"
	"cmmn-parser/model"
)

// Mapper parses decoded CMMN JSON documents.
type Mapper struct {
	// MaxDepth bounds stage and case-file-item nesting. Non-positive means
	// resolve.DefaultMaxDepth.
	MaxDepth int
}

type walk struct {
	guard  *resolve.DepthGuard
	linker *resolve.Linker
}

// Parse maps a decoded JSON document to a Definitions tree. The document
// must be an object with a "definitions" envelope.
func (m *Mapper) Parse(doc map[string]any) (*model.Definitions, error) {
	raw, ok := doc["definitions"]
	if !ok {
		return nil, errors.New(`document has no "definitions" object`)
	}

	root, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf(`"definitions" must be an object, got %T`, raw)
	}

	w := &walk{
		guard:  resolve.NewDepthGuard(m.MaxDepth),
		linker: &resolve.Linker{},
	}

	defs := &model.Definitions{}

	var err error
	if defs.ID, err = str(root, "id"); err != nil {
		return nil, err
	}

	if defs.Name, err = str(root, "name"); err != nil {
		return nil, err
	}

	if defs.TargetNamespace, err = str(root, "targetNamespace"); err != nil {
		return nil, err
	}

	if defs.ExpressionLanguage, err = str(root, "expressionLanguage"); err != nil {
		return nil, err
	}

	if defs.Exporter, err = str(root, "exporter"); err != nil {
		return nil, err
	}

	if defs.ExporterVersion, err = str(root, "exporterVersion"); err != nil {
		return nil, err
	}

	imports, err := objList(root, "imports")
	if err != nil {
		return nil, err
	}

	for _, item := range imports {
		imp, err := parseImport(item)
		if err != nil {
			return nil, err
		}

		defs.Imports = append(defs.Imports, imp)
	}

	cfids, err := objList(root, "caseFileItemDefinitions")
	if err != nil {
		return nil, err
	}

	for _, item := range cfids {
		cfid, err := parseCaseFileItemDefinition(item)
		if err != nil {
			return nil, err
		}

		defs.CaseFileItemDefinitions = append(defs.CaseFileItemDefinitions, cfid)
	}

	cases, err := objList(root, "cases")
	if err != nil {
		return nil, err
	}

	for _, item := range cases {
		c, err := w.parseCase(item)
		if err != nil {
			return nil, err
		}

		defs.Cases = append(defs.Cases, c)
	}

	processes, err := objList(root, "processes")
	if err != nil {
		return nil, err
	}

	for _, item := range processes {
		p, err := parseProcess(item)
		if err != nil {
			return nil, err
		}

		defs.Processes = append(defs.Processes, p)
	}

	decisions, err := objList(root, "decisions")
	if err != nil {
		return nil, err
	}

	for _, item := range decisions {
		d, err := parseDecision(item)
		if err != nil {
			return nil, err
		}

		defs.Decisions = append(defs.Decisions, d)
	}

	w.linker.Link()

	return defs, nil
}

func (w *walk) parseCase(obj map[string]any) (*model.Case, error) {
	id, err := requiredStr(obj, "id", "case")
	if err != nil {
		return nil, err
	}

	name, err := str(obj, "name")
	if err != nil {
		return nil, err
	}

	c := &model.Case{ID: id, Name: name}

	if cpm, err := object(obj, "casePlanModel"); err != nil {
		return nil, err
	} else if cpm != nil {
		st, err := w.parseStage(cpm, nil)
		if err != nil {
			return nil, err
		}

		c.CasePlanModel = &model.CasePlanModel{Stage: *st}
	}

	if cfm, err := object(obj, "caseFileModel"); err != nil {
		return nil, err
	} else if cfm != nil {
		fm, err := w.parseCaseFileModel(cfm)
		if err != nil {
			return nil, err
		}

		c.CaseFileModel = fm
	}

	roles, err := objList(obj, "roles")
	if err != nil {
		return nil, err
	}

	for _, item := range roles {
		role := &model.Role{}
		if role.ID, err = str(item, "id"); err != nil {
			return nil, err
		}

		if role.Name, err = str(item, "name"); err != nil {
			return nil, err
		}

		c.Roles = append(c.Roles, role)
	}

	return c, nil
}

// parseStage maps a stage object. As in the XML walk, the scope is filled
// with the stage's definitions first, then plan items are deferred to the
// linker.
func (w *walk) parseStage(obj map[string]any, parent *resolve.Scope) (*model.Stage, error) {
	if err := w.guard.Enter(); err != nil {
		return nil, fmt.Errorf("stage: %w", err)
	}
	defer w.guard.Exit()

	id, err := requiredStr(obj, "id", "stage")
	if err != nil {
		return nil, err
	}

	name, err := str(obj, "name")
	if err != nil {
		return nil, err
	}

	autoComplete, err := boolOr(obj, "autoComplete", false)
	if err != nil {
		return nil, err
	}

	st := &model.Stage{ID: id, Name: name, AutoComplete: autoComplete}

	scope := resolve.NewScope(parent)

	defObjs, err := objList(obj, "definitions")
	if err != nil {
		return nil, err
	}

	for _, item := range defObjs {
		def, err := w.parseDefinition(item, scope)
		if err != nil {
			return nil, err
		}

		st.Definitions = append(st.Definitions, def)
		scope.Register(def)
	}

	planItems, err := objList(obj, "planItems")
	if err != nil {
		return nil, err
	}

	for _, item := range planItems {
		pi, err := parsePlanItem(item)
		if err != nil {
			return nil, err
		}

		st.PlanItems = append(st.PlanItems, pi)
		w.linker.Defer(pi, scope)
	}

	sentries, err := objList(obj, "sentries")
	if err != nil {
		return nil, err
	}

	for _, item := range sentries {
		sn, err := parseSentry(item)
		if err != nil {
			return nil, err
		}

		st.Sentries = append(st.Sentries, sn)
	}

	return st, nil
}

// parseDefinition dispatches on the "type" discriminator. A missing or
// unrecognized type means a generic task.
func (w *walk) parseDefinition(obj map[string]any, scope *resolve.Scope) (model.Definition, error) {
	typ, err := str(obj, "type")
	if err != nil {
		return nil, err
	}

	kind := model.KindFromString(typ)

	if kind == model.KindStage {
		return w.parseStage(obj, scope)
	}

	id, err := requiredStr(obj, "id", "definition")
	if err != nil {
		return nil, err
	}

	name, err := str(obj, "name")
	if err != nil {
		return nil, err
	}

	switch kind {
	case model.KindMilestone:
		return &model.Milestone{ID: id, Name: name}, nil
	case model.KindTimerEventListener:
		expr, err := str(obj, "timerExpression")
		if err != nil {
			return nil, err
		}

		return &model.TimerEventListener{ID: id, Name: name, TimerExpression: expr}, nil
	case model.KindUserEventListener:
		refs, err := strList(obj, "authorizedRoleRefs")
		if err != nil {
			return nil, err
		}

		return &model.UserEventListener{ID: id, Name: name, AuthorizedRoleRefs: refs}, nil
	}

	isBlocking, err := boolOr(obj, "isBlocking", true)
	if err != nil {
		return nil, err
	}

	core := model.Task{ID: id, Name: name, IsBlocking: isBlocking}

	switch kind {
	case model.KindHumanTask:
		performer, err := str(obj, "performer")
		if err != nil {
			return nil, err
		}

		formKey, err := str(obj, "formKey")
		if err != nil {
			return nil, err
		}

		return &model.HumanTask{Task: core, Performer: performer, FormKey: formKey}, nil
	case model.KindProcessTask:
		ref, err := str(obj, "processRef")
		if err != nil {
			return nil, err
		}

		return &model.ProcessTask{Task: core, ProcessRef: ref}, nil
	case model.KindCaseTask:
		ref, err := str(obj, "caseRef")
		if err != nil {
			return nil, err
		}

		return &model.CaseTask{Task: core, CaseRef: ref}, nil
	case model.KindDecisionTask:
		ref, err := str(obj, "decisionRef")
		if err != nil {
			return nil, err
		}

		return &model.DecisionTask{Task: core, DecisionRef: ref}, nil
	default:
		return &core, nil
	}
}

func parsePlanItem(obj map[string]any) (*model.PlanItem, error) {
	id, err := requiredStr(obj, "id", "planItem")
	if err != nil {
		return nil, err
	}

	pi := &model.PlanItem{ID: id}

	if pi.Name, err = str(obj, "name"); err != nil {
		return nil, err
	}

	if pi.DefinitionRef, err = str(obj, "definitionRef"); err != nil {
		return nil, err
	}

	if pi.EntryCriteriaRefs, err = strList(obj, "entryCriteriaRefs"); err != nil {
		return nil, err
	}

	if pi.ExitCriteriaRefs, err = strList(obj, "exitCriteriaRefs"); err != nil {
		return nil, err
	}

	ic, err := object(obj, "itemControl")
	if err != nil {
		return nil, err
	}

	if ic != nil {
		ctl := &model.ItemControl{}

		for key, target := range map[string]**string{
			"requiredRule":         &ctl.RequiredRule,
			"repetitionRule":       &ctl.RepetitionRule,
			"manualActivationRule": &ctl.ManualActivationRule,
		} {
			if _, ok := ic[key]; !ok {
				continue
			}

			rule, err := str(ic, key)
			if err != nil {
				return nil, err
			}

			*target = &rule
		}

		pi.ItemControl = ctl
	}

	return pi, nil
}

func parseSentry(obj map[string]any) (*model.Sentry, error) {
	id, err := requiredStr(obj, "id", "sentry")
	if err != nil {
		return nil, err
	}

	sn := &model.Sentry{ID: id}

	if sn.Name, err = str(obj, "name"); err != nil {
		return nil, err
	}

	onParts, err := objList(obj, "onParts")
	if err != nil {
		return nil, err
	}

	for _, item := range onParts {
		op := &model.OnPart{}
		if op.ID, err = str(item, "id"); err != nil {
			return nil, err
		}

		if op.SourceRef, err = str(item, "sourceRef"); err != nil {
			return nil, err
		}

		if op.StandardEvent, err = str(item, "standardEvent"); err != nil {
			return nil, err
		}

		sn.OnParts = append(sn.OnParts, op)
	}

	ifPart, err := object(obj, "ifPart")
	if err != nil {
		return nil, err
	}

	if ifPart != nil {
		ip := &model.IfPart{}
		if ip.ID, err = str(ifPart, "id"); err != nil {
			return nil, err
		}

		if ip.Condition, err = str(ifPart, "condition"); err != nil {
			return nil, err
		}

		sn.IfPart = ip
	}

	return sn, nil
}

func (w *walk) parseCaseFileModel(obj map[string]any) (*model.CaseFileModel, error) {
	cfm := &model.CaseFileModel{}

	var err error
	if cfm.ID, err = str(obj, "id"); err != nil {
		return nil, err
	}

	if cfm.Name, err = str(obj, "name"); err != nil {
		return nil, err
	}

	items, err := objList(obj, "caseFileItems")
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		cfi, err := w.parseCaseFileItem(item)
		if err != nil {
			return nil, err
		}

		cfm.CaseFileItems = append(cfm.CaseFileItems, cfi)
	}

	return cfm, nil
}

func (w *walk) parseCaseFileItem(obj map[string]any) (*model.CaseFileItem, error) {
	if err := w.guard.Enter(); err != nil {
		return nil, fmt.Errorf("caseFileItem: %w", err)
	}
	defer w.guard.Exit()

	id, err := requiredStr(obj, "id", "caseFileItem")
	if err != nil {
		return nil, err
	}

	item := &model.CaseFileItem{ID: id}

	if item.Name, err = str(obj, "name"); err != nil {
		return nil, err
	}

	if item.DefinitionRef, err = str(obj, "definitionRef"); err != nil {
		return nil, err
	}

	if item.Multiplicity, err = str(obj, "multiplicity"); err != nil {
		return nil, err
	}

	if item.SourceRef, err = str(obj, "sourceRef"); err != nil {
		return nil, err
	}

	if item.TargetRefs, err = strList(obj, "targetRefs"); err != nil {
		return nil, err
	}

	if item.DefinitiveProperties, err = strList(obj, "definitiveProperties"); err != nil {
		return nil, err
	}

	children, err := objList(obj, "children")
	if err != nil {
		return nil, err
	}

	for _, child := range children {
		nested, err := w.parseCaseFileItem(child)
		if err != nil {
			return nil, err
		}

		item.Children = append(item.Children, nested)
	}

	return item, nil
}

func parseImport(obj map[string]any) (*model.Import, error) {
	imp := &model.Import{}

	var err error
	if imp.ID, err = str(obj, "id"); err != nil {
		return nil, err
	}

	if imp.Namespace, err = str(obj, "namespace"); err != nil {
		return nil, err
	}

	if imp.Location, err = str(obj, "location"); err != nil {
		return nil, err
	}

	if imp.ImportType, err = str(obj, "importType"); err != nil {
		return nil, err
	}

	return imp, nil
}

func parseCaseFileItemDefinition(obj map[string]any) (*model.CaseFileItemDefinition, error) {
	id, err := requiredStr(obj, "id", "caseFileItemDefinition")
	if err != nil {
		return nil, err
	}

	cfid := &model.CaseFileItemDefinition{ID: id}

	if cfid.Name, err = str(obj, "name"); err != nil {
		return nil, err
	}

	if cfid.StructureRef, err = str(obj, "structureRef"); err != nil {
		return nil, err
	}

	if cfid.DefinitiveProperties, err = strList(obj, "definitiveProperties"); err != nil {
		return nil, err
	}

	return cfid, nil
}

func parseProcess(obj map[string]any) (*model.Process, error) {
	id, err := requiredStr(obj, "id", "process")
	if err != nil {
		return nil, err
	}

	p := &model.Process{ID: id}

	if p.Name, err = str(obj, "name"); err != nil {
		return nil, err
	}

	if p.IsExecutable, err = boolOr(obj, "isExecutable", true); err != nil {
		return nil, err
	}

	if p.ImplementationType, err = str(obj, "implementationType"); err != nil {
		return nil, err
	}

	return p, nil
}

func parseDecision(obj map[string]any) (*model.Decision, error) {
	id, err := requiredStr(obj, "id", "decision")
	if err != nil {
		return nil, err
	}

	d := &model.Decision{ID: id}

	if d.Name, err = str(obj, "name"); err != nil {
		return nil, err
	}

	if d.DecisionLogic, err = str(obj, "decisionLogic"); err != nil {
		return nil, err
	}

	return d, nil
}

func str(obj map[string]any, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return "", nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string, got %T", key, raw)
	}

	return s, nil
}

func requiredStr(obj map[string]any, key, element string) (string, error) {
	s, err := str(obj, key)
	if err != nil {
		return "", err
	}

	if s == "" {
		return "", fmt.Errorf("%s: required field %q is missing", element, key)
	}

	return s, nil
}

func boolOr(obj map[string]any, key string, dflt bool) (bool, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return dflt, nil
	}

	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("field %q must be a boolean, got %T", key, raw)
	}

	return b, nil
}

func strList(obj map[string]any, key string) ([]string, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}

	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be an array, got %T", key, raw)
	}

	out := make([]string, 0, len(arr))
	for i, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, fmt.Errorf("field %q[%d] must be a string, got %T", key, i, el)
		}

		out = append(out, s)
	}

	return out, nil
}

func object(obj map[string]any, key string) (map[string]any, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}

	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be an object, got %T", key, raw)
	}

	return m, nil
}

func objList(obj map[string]any, key string) ([]map[string]any, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return nil, nil
	}

	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q must be an array, got %T", key, raw)
	}

	out := make([]map[string]any, 0, len(arr))
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q[%d] must be an object, got %T", key, i, el)
		}

		out = append(out, m)
	}

	return out, nil
}
