// Package model holds the CMMN document model: the entity graph produced by
// the XML and JSON mappers, its JSON-compatible serialization, and lookup
// helpers. Entities are immutable after construction; the mappers are the
// sole constructors.
package model

// Definition is a reusable plan-item definition: a task variant, a stage, a
// milestone or an event listener. A PlanItem references one by id through
// its definitionRef.
type Definition interface {
	// Kind is the explicit discriminator of the variant.
	Kind() DefinitionKind
	GetID() string
	GetName() string
}

// Definitions is the root of a parsed CMMN document. It exclusively owns
// every descendant entity; cross-references between entities are ids, never
// owning links.
type Definitions struct {
	ID                 string
	Name               string
	TargetNamespace    string
	ExpressionLanguage string
	Exporter           string
	ExporterVersion    string

	Imports                 []*Import
	CaseFileItemDefinitions []*CaseFileItemDefinition
	Cases                   []*Case
	Processes               []*Process
	Decisions               []*Decision
}

// Import references an external definition document.
type Import struct {
	ID         string
	Namespace  string
	Location   string
	ImportType string
}

// Case is a single case definition. A case without a plan model is valid.
type Case struct {
	ID            string
	Name          string
	CasePlanModel *CasePlanModel
	CaseFileModel *CaseFileModel
	Roles         []*Role
}

// Role is a case role that human tasks and user event listeners refer to.
type Role struct {
	ID   string
	Name string
}

// Stage is a plan-item definition that contains plan items, nested
// definitions and sentries. Stages nest recursively.
type Stage struct {
	ID           string
	Name         string
	AutoComplete bool

	PlanItems   []*PlanItem
	Definitions []Definition
	Sentries    []*Sentry
}

func (s *Stage) Kind() DefinitionKind { return KindStage }
func (s *Stage) GetID() string        { return s.ID }
func (s *Stage) GetName() string      { return s.Name }

// CasePlanModel is the root stage of a case plan.
type CasePlanModel struct {
	Stage
}

// PlanItem is an instance-in-plan of a reusable definition.
type PlanItem struct {
	ID   string
	Name string

	// DefinitionRef is the raw id reference from the source document. It is
	// always retained, even when resolution succeeded.
	DefinitionRef string

	// Definition is the resolved definition, looked up in the nearest
	// enclosing scope. Nil when the reference did not resolve; that is not
	// an error.
	Definition Definition

	ItemControl       *ItemControl
	EntryCriteriaRefs []string
	ExitCriteriaRefs  []string
}

// ItemControl carries the per-item rules. Each rule holds its condition
// expression verbatim; a nil rule is absent.
type ItemControl struct {
	RequiredRule         *string
	RepetitionRule       *string
	ManualActivationRule *string
}

// Task is the generic task definition and the shared core of every task
// variant. IsBlocking defaults to true per CMMN convention.
type Task struct {
	ID         string
	Name       string
	IsBlocking bool
}

func (t *Task) Kind() DefinitionKind { return KindTask }
func (t *Task) GetID() string        { return t.ID }
func (t *Task) GetName() string      { return t.Name }

// HumanTask is a task performed by a person.
type HumanTask struct {
	Task
	Performer string
	FormKey   string
}

func (t *HumanTask) Kind() DefinitionKind { return KindHumanTask }

// ProcessTask launches a process referenced by id.
type ProcessTask struct {
	Task
	ProcessRef string
}

func (t *ProcessTask) Kind() DefinitionKind { return KindProcessTask }

// CaseTask launches another case referenced by id.
type CaseTask struct {
	Task
	CaseRef string
}

func (t *CaseTask) Kind() DefinitionKind { return KindCaseTask }

// DecisionTask invokes a decision referenced by id.
type DecisionTask struct {
	Task
	DecisionRef string
}

func (t *DecisionTask) Kind() DefinitionKind { return KindDecisionTask }

// Milestone marks a point of achievement in the plan.
type Milestone struct {
	ID   string
	Name string
}

func (m *Milestone) Kind() DefinitionKind { return KindMilestone }
func (m *Milestone) GetID() string        { return m.ID }
func (m *Milestone) GetName() string      { return m.Name }

// TimerEventListener fires on a timer expression, stored verbatim.
type TimerEventListener struct {
	ID              string
	Name            string
	TimerExpression string
}

func (l *TimerEventListener) Kind() DefinitionKind { return KindTimerEventListener }
func (l *TimerEventListener) GetID() string        { return l.ID }
func (l *TimerEventListener) GetName() string      { return l.Name }

// UserEventListener fires when an authorized user raises it.
type UserEventListener struct {
	ID                 string
	Name               string
	AuthorizedRoleRefs []string
}

func (l *UserEventListener) Kind() DefinitionKind { return KindUserEventListener }
func (l *UserEventListener) GetID() string        { return l.ID }
func (l *UserEventListener) GetName() string      { return l.Name }

// Sentry gates entry or exit of plan items. Its if-part condition is stored
// verbatim and never evaluated here.
type Sentry struct {
	ID      string
	Name    string
	OnParts []*OnPart
	IfPart  *IfPart
}

// OnPart references a plan item by id together with a standard event name
// such as "complete".
type OnPart struct {
	ID            string
	SourceRef     string
	StandardEvent string
}

// IfPart is the boolean condition of a sentry, stored verbatim.
type IfPart struct {
	ID        string
	Condition string
}

// CaseFileModel is the data side of a case: a tree of case file items.
type CaseFileModel struct {
	ID            string
	Name          string
	CaseFileItems []*CaseFileItem
}

// CaseFileItem is a hierarchical data element. Items nest recursively
// through Children.
type CaseFileItem struct {
	ID            string
	Name          string
	DefinitionRef string
	Multiplicity  string
	SourceRef     string

	TargetRefs           []string
	DefinitiveProperties []string
	Children             []*CaseFileItem
}

// CaseFileItemDefinition is a reusable structure definition for case file
// items, referenced by id.
type CaseFileItemDefinition struct {
	ID                   string
	Name                 string
	StructureRef         string
	DefinitiveProperties []string
}

// Process is a process definition referenced by ProcessTask.ProcessRef.
type Process struct {
	ID                 string
	Name               string
	IsExecutable       bool
	ImplementationType string
}

// Decision is a decision definition referenced by DecisionTask.DecisionRef.
type Decision struct {
	ID            string
	Name          string
	DecisionLogic string
}
