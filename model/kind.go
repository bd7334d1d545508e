package model

// DefinitionKind discriminates the plan-item definition variants. The string
// form doubles as the "type" discriminator in the JSON document shape and as
// the XML element local name.
type DefinitionKind int

const (
	KindUnknown DefinitionKind = iota

	KindTask
	KindHumanTask
	KindProcessTask
	KindCaseTask
	KindDecisionTask
	KindMilestone
	KindStage
	KindTimerEventListener
	KindUserEventListener

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// String returns the discriminator tag for the kind.
func (k DefinitionKind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindHumanTask:
		return "humanTask"
	case KindProcessTask:
		return "processTask"
	case KindCaseTask:
		return "caseTask"
	case KindDecisionTask:
		return "decisionTask"
	case KindMilestone:
		return "milestone"
	case KindStage:
		return "stage"
	case KindTimerEventListener:
		return "timerEventListener"
	case KindUserEventListener:
		return "userEventListener"
	default:
		return "unknown"
	}
}

// KindFromString maps a discriminator tag back to its kind.
// Unrecognized tags map to KindUnknown.
func KindFromString(s string) DefinitionKind {
	switch s {
	case "task":
		return KindTask
	case "humanTask":
		return KindHumanTask
	case "processTask":
		return KindProcessTask
	case "caseTask":
		return KindCaseTask
	case "decisionTask":
		return KindDecisionTask
	case "milestone":
		return KindMilestone
	case "stage":
		return KindStage
	case "timerEventListener":
		return KindTimerEventListener
	case "userEventListener":
		return KindUserEventListener
	default:
		return KindUnknown
	}
}

// IsTask reports whether the kind is one of the task variants.
func (k DefinitionKind) IsTask() bool {
	switch k {
	case KindTask, KindHumanTask, KindProcessTask, KindCaseTask, KindDecisionTask:
		return true
	default:
		return false
	}
}

// IsEventListener reports whether the kind is an event listener variant.
func (k DefinitionKind) IsEventListener() bool {
	return k == KindTimerEventListener || k == KindUserEventListener
}
