package model

// ToDict converts the document to a JSON-compatible value tree. The output
// carries the same envelope the JSON mapper accepts, so feeding it back
// through the parser reconstructs an equal model.
//
// Empty optional fields are omitted; boolean flags are always emitted so a
// reader never has to know the defaults.
func (d *Definitions) ToDict() map[string]any {
	defs := map[string]any{}
	putStr(defs, "id", d.ID)
	putStr(defs, "name", d.Name)
	putStr(defs, "targetNamespace", d.TargetNamespace)
	putStr(defs, "expressionLanguage", d.ExpressionLanguage)
	putStr(defs, "exporter", d.Exporter)
	putStr(defs, "exporterVersion", d.ExporterVersion)

	if len(d.Imports) > 0 {
		items := make([]any, 0, len(d.Imports))
		for _, imp := range d.Imports {
			items = append(items, importToDict(imp))
		}

		defs["imports"] = items
	}

	if len(d.CaseFileItemDefinitions) > 0 {
		items := make([]any, 0, len(d.CaseFileItemDefinitions))
		for _, cfid := range d.CaseFileItemDefinitions {
			items = append(items, caseFileItemDefToDict(cfid))
		}

		defs["caseFileItemDefinitions"] = items
	}

	if len(d.Cases) > 0 {
		items := make([]any, 0, len(d.Cases))
		for _, c := range d.Cases {
			items = append(items, caseToDict(c))
		}

		defs["cases"] = items
	}

	if len(d.Processes) > 0 {
		items := make([]any, 0, len(d.Processes))
		for _, p := range d.Processes {
			items = append(items, processToDict(p))
		}

		defs["processes"] = items
	}

	if len(d.Decisions) > 0 {
		items := make([]any, 0, len(d.Decisions))
		for _, dec := range d.Decisions {
			items = append(items, decisionToDict(dec))
		}

		defs["decisions"] = items
	}

	return map[string]any{"definitions": defs}
}

func importToDict(imp *Import) map[string]any {
	m := map[string]any{}
	putStr(m, "id", imp.ID)
	putStr(m, "namespace", imp.Namespace)
	putStr(m, "location", imp.Location)
	putStr(m, "importType", imp.ImportType)

	return m
}

func caseFileItemDefToDict(cfid *CaseFileItemDefinition) map[string]any {
	m := map[string]any{}
	putStr(m, "id", cfid.ID)
	putStr(m, "name", cfid.Name)
	putStr(m, "structureRef", cfid.StructureRef)
	putStrList(m, "definitiveProperties", cfid.DefinitiveProperties)

	return m
}

func caseToDict(c *Case) map[string]any {
	m := map[string]any{}
	putStr(m, "id", c.ID)
	putStr(m, "name", c.Name)

	if c.CasePlanModel != nil {
		m["casePlanModel"] = stageToDict(&c.CasePlanModel.Stage)
	}

	if c.CaseFileModel != nil {
		m["caseFileModel"] = caseFileModelToDict(c.CaseFileModel)
	}

	if len(c.Roles) > 0 {
		roles := make([]any, 0, len(c.Roles))
		for _, r := range c.Roles {
			rm := map[string]any{}
			putStr(rm, "id", r.ID)
			putStr(rm, "name", r.Name)
			roles = append(roles, rm)
		}

		m["roles"] = roles
	}

	return m
}

func stageToDict(s *Stage) map[string]any {
	m := map[string]any{}
	putStr(m, "id", s.ID)
	putStr(m, "name", s.Name)
	m["autoComplete"] = s.AutoComplete

	if len(s.PlanItems) > 0 {
		items := make([]any, 0, len(s.PlanItems))
		for _, pi := range s.PlanItems {
			items = append(items, planItemToDict(pi))
		}

		m["planItems"] = items
	}

	if len(s.Definitions) > 0 {
		items := make([]any, 0, len(s.Definitions))
		for _, def := range s.Definitions {
			items = append(items, definitionToDict(def))
		}

		m["definitions"] = items
	}

	if len(s.Sentries) > 0 {
		items := make([]any, 0, len(s.Sentries))
		for _, sn := range s.Sentries {
			items = append(items, sentryToDict(sn))
		}

		m["sentries"] = items
	}

	return m
}

// definitionToDict serializes a plan-item definition with its explicit
// "type" discriminator.
func definitionToDict(def Definition) map[string]any {
	var m map[string]any

	switch v := def.(type) {
	case *Stage:
		m = stageToDict(v)
	case *HumanTask:
		m = taskCoreToDict(&v.Task)
		putStr(m, "performer", v.Performer)
		putStr(m, "formKey", v.FormKey)
	case *ProcessTask:
		m = taskCoreToDict(&v.Task)
		putStr(m, "processRef", v.ProcessRef)
	case *CaseTask:
		m = taskCoreToDict(&v.Task)
		putStr(m, "caseRef", v.CaseRef)
	case *DecisionTask:
		m = taskCoreToDict(&v.Task)
		putStr(m, "decisionRef", v.DecisionRef)
	case *Task:
		m = taskCoreToDict(v)
	case *Milestone:
		m = map[string]any{}
		putStr(m, "id", v.ID)
		putStr(m, "name", v.Name)
	case *TimerEventListener:
		m = map[string]any{}
		putStr(m, "id", v.ID)
		putStr(m, "name", v.Name)
		putStr(m, "timerExpression", v.TimerExpression)
	case *UserEventListener:
		m = map[string]any{}
		putStr(m, "id", v.ID)
		putStr(m, "name", v.Name)
		putStrList(m, "authorizedRoleRefs", v.AuthorizedRoleRefs)
	default:
		m = map[string]any{}
		putStr(m, "id", def.GetID())
		putStr(m, "name", def.GetName())
	}

	m["type"] = def.Kind().String()

	return m
}

func taskCoreToDict(t *Task) map[string]any {
	m := map[string]any{}
	putStr(m, "id", t.ID)
	putStr(m, "name", t.Name)
	m["isBlocking"] = t.IsBlocking

	return m
}

func planItemToDict(pi *PlanItem) map[string]any {
	m := map[string]any{}
	putStr(m, "id", pi.ID)
	putStr(m, "name", pi.Name)
	putStr(m, "definitionRef", pi.DefinitionRef)
	putStrList(m, "entryCriteriaRefs", pi.EntryCriteriaRefs)
	putStrList(m, "exitCriteriaRefs", pi.ExitCriteriaRefs)

	if ic := pi.ItemControl; ic != nil {
		icm := map[string]any{}
		if ic.RequiredRule != nil {
			icm["requiredRule"] = *ic.RequiredRule
		}

		if ic.RepetitionRule != nil {
			icm["repetitionRule"] = *ic.RepetitionRule
		}

		if ic.ManualActivationRule != nil {
			icm["manualActivationRule"] = *ic.ManualActivationRule
		}

		m["itemControl"] = icm
	}

	return m
}

func sentryToDict(s *Sentry) map[string]any {
	m := map[string]any{}
	putStr(m, "id", s.ID)
	putStr(m, "name", s.Name)

	if len(s.OnParts) > 0 {
		parts := make([]any, 0, len(s.OnParts))
		for _, op := range s.OnParts {
			pm := map[string]any{}
			putStr(pm, "id", op.ID)
			putStr(pm, "sourceRef", op.SourceRef)
			putStr(pm, "standardEvent", op.StandardEvent)
			parts = append(parts, pm)
		}

		m["onParts"] = parts
	}

	if s.IfPart != nil {
		ifm := map[string]any{}
		putStr(ifm, "id", s.IfPart.ID)
		putStr(ifm, "condition", s.IfPart.Condition)
		m["ifPart"] = ifm
	}

	return m
}

func caseFileModelToDict(cfm *CaseFileModel) map[string]any {
	m := map[string]any{}
	putStr(m, "id", cfm.ID)
	putStr(m, "name", cfm.Name)

	if len(cfm.CaseFileItems) > 0 {
		items := make([]any, 0, len(cfm.CaseFileItems))
		for _, it := range cfm.CaseFileItems {
			items = append(items, caseFileItemToDict(it))
		}

		m["caseFileItems"] = items
	}

	return m
}

func caseFileItemToDict(it *CaseFileItem) map[string]any {
	m := map[string]any{}
	putStr(m, "id", it.ID)
	putStr(m, "name", it.Name)
	putStr(m, "definitionRef", it.DefinitionRef)
	putStr(m, "multiplicity", it.Multiplicity)
	putStr(m, "sourceRef", it.SourceRef)
	putStrList(m, "targetRefs", it.TargetRefs)
	putStrList(m, "definitiveProperties", it.DefinitiveProperties)

	if len(it.Children) > 0 {
		children := make([]any, 0, len(it.Children))
		for _, child := range it.Children {
			children = append(children, caseFileItemToDict(child))
		}

		m["children"] = children
	}

	return m
}

func processToDict(p *Process) map[string]any {
	m := map[string]any{}
	putStr(m, "id", p.ID)
	putStr(m, "name", p.Name)
	m["isExecutable"] = p.IsExecutable
	putStr(m, "implementationType", p.ImplementationType)

	return m
}

func decisionToDict(d *Decision) map[string]any {
	m := map[string]any{}
	putStr(m, "id", d.ID)
	putStr(m, "name", d.Name)
	putStr(m, "decisionLogic", d.DecisionLogic)

	return m
}

func putStr(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func putStrList(m map[string]any, key string, values []string) {
	if len(values) == 0 {
		return
	}

	items := make([]any, 0, len(values))
	for _, v := range values {
		items = append(items, v)
	}

	m[key] = items
}
