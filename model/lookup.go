package model

// CaseByID returns the case with the given id, if any.
func (d *Definitions) CaseByID(id string) (*Case, bool) {
	for _, c := range d.Cases {
		if c.ID == id {
			return c, true
		}
	}

	return nil, false
}

// AllPlanItems returns every plan item across all cases, depth-first in
// document order: a stage's own plan items first, then the plan items of
// its nested stage definitions.
func (d *Definitions) AllPlanItems() []*PlanItem {
	var out []*PlanItem

	for _, c := range d.Cases {
		if c.CasePlanModel == nil {
			continue
		}

		collectPlanItems(&c.CasePlanModel.Stage, &out)
	}

	return out
}

func collectPlanItems(s *Stage, out *[]*PlanItem) {
	*out = append(*out, s.PlanItems...)

	for _, def := range s.Definitions {
		if nested, ok := def.(*Stage); ok {
			collectPlanItems(nested, out)
		}
	}
}

// ProcessByID returns the process definition with the given id, if any.
func (d *Definitions) ProcessByID(id string) (*Process, bool) {
	for _, p := range d.Processes {
		if p.ID == id {
			return p, true
		}
	}

	return nil, false
}

// DecisionByID returns the decision definition with the given id, if any.
func (d *Definitions) DecisionByID(id string) (*Decision, bool) {
	for _, dec := range d.Decisions {
		if dec.ID == id {
			return dec, true
		}
	}

	return nil, false
}
