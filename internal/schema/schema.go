// Package schema validates a decoded CMMN JSON document against the
// structural rules of the CMMN definitions schema: required ids, field
// types, and arrays that must be arrays even when singleton. Unknown keys
// are ignored for forward compatibility.
package schema

// Schema descriptor metadata, reported by the facade's Schema() call.
const (
	Title       = "CMMN Definitions Schema"
	Version     = "1.1"
	Description = "Structural rules for CMMN definitions in JSON form"
)

// SupportedElements lists the element types the schema and the mappers
// understand.
func SupportedElements() []string {
	return []string{
		"definitions",
		"import",
		"caseFileItemDefinition",
		"case",
		"casePlanModel",
		"caseFileModel",
		"caseFileItem",
		"stage",
		"planItem",
		"itemControl",
		"task",
		"humanTask",
		"processTask",
		"caseTask",
		"decisionTask",
		"milestone",
		"timerEventListener",
		"userEventListener",
		"sentry",
		"onPart",
		"ifPart",
		"process",
		"decision",
	}
}
