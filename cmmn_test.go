package cmmnparser

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmmn-parser/model"
)

const reviewXML = `<?xml version="1.0" encoding="UTF-8"?>
<definitions id="defs1" name="Review" targetNamespace="http://example.org/cmmn">
	<case id="case1" name="Document Review">
		<caseFileModel id="cfm1">
			<caseFileItem id="cfi1" name="Document" multiplicity="ExactlyOne"/>
		</caseFileModel>
		<casePlanModel id="cpm1" name="Review Plan" autoComplete="true">
			<planItem id="pi1" name="Review Doc" definitionRef="ht1" entryCriteriaRefs="s1"/>
			<planItem id="pi2" definitionRef="m1"/>
			<humanTask id="ht1" name="Review Doc" performer="alice"/>
			<milestone id="m1" name="Reviewed"/>
			<sentry id="s1">
				<onPart id="op1" sourceRef="pi2">
					<standardEvent>occur</standardEvent>
				</onPart>
			</sentry>
		</casePlanModel>
	</case>
	<process id="p1" name="Archive" isExecutable="true"/>
</definitions>`

func TestParseString_DetectsXML(t *testing.T) {
	defs, err := ParseString(reviewXML)
	require.NoError(t, err)

	c, ok := defs.CaseByID("case1")
	require.True(t, ok)
	assert.True(t, c.CasePlanModel.AutoComplete)

	ht, ok := c.CasePlanModel.PlanItems[0].Definition.(*model.HumanTask)
	require.True(t, ok)
	assert.Equal(t, "alice", ht.Performer)
}

func TestParseString_DetectsJSON(t *testing.T) {
	defs, err := ParseString(`{"definitions": {"id": "d1", "cases": [{"id": "c1"}]}}`)
	require.NoError(t, err)
	assert.Equal(t, "d1", defs.ID)
}

func TestParseString_UnknownFormat(t *testing.T) {
	_, err := ParseString("plain text, nothing to see")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorFormat, pe.Kind)
}

func TestParseString_EmptyContent(t *testing.T) {
	_, err := ParseString("")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorFormat, pe.Kind)
}

func TestXMLAndJSONProduceTheSameModel(t *testing.T) {
	fromXML, err := ParseString(reviewXML)
	require.NoError(t, err)

	dict := fromXML.ToDict()

	fromJSON, err := ParseJSON(dict)
	require.NoError(t, err)

	assert.Equal(t, dict, fromJSON.ToDict())
}

func TestParseJSON_RoundTripIsIdempotent(t *testing.T) {
	defs, err := ParseString(reviewXML)
	require.NoError(t, err)

	text, err := json.Marshal(defs.ToDict())
	require.NoError(t, err)

	again, err := ParseJSON(text)
	require.NoError(t, err)

	assert.Equal(t, defs.ToDict(), again.ToDict())
}

func TestParseJSON_ValidationFailureListsEveryFinding(t *testing.T) {
	_, err := ParseJSON(`{
		"definitions": {
			"cases": [
				{"name": "no id"},
				{"id": 42}
			]
		}
	}`)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorValidation, pe.Kind)
	require.Len(t, pe.Findings, 2)
	assert.Contains(t, pe.Findings[0], "definitions.cases[0].id")
	assert.Contains(t, pe.Findings[1], "definitions.cases[1].id")
}

func TestParseJSON_WithoutValidation(t *testing.T) {
	// A milestone never reads isBlocking, so the mapper tolerates the bad
	// value that the schema check rejects.
	content := `{
		"definitions": {
			"cases": [{
				"id": "c1",
				"casePlanModel": {
					"id": "cpm1",
					"definitions": [{"id": "m1", "type": "milestone", "isBlocking": "nope"}]
				}
			}]
		}
	}`

	_, err := ParseJSON(content)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorValidation, pe.Kind)

	defs, err := ParseJSON(content, WithoutValidation())
	require.NoError(t, err)
	assert.Len(t, defs.Cases, 1)
}

func TestParseJSON_UnsupportedInputType(t *testing.T) {
	_, err := ParseJSON(42)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorStructural, pe.Kind)
}

func TestParseFile_ByExtension(t *testing.T) {
	dir := t.TempDir()

	xmlPath := filepath.Join(dir, "review.cmmn")
	require.NoError(t, os.WriteFile(xmlPath, []byte(reviewXML), 0o644))

	defs, err := ParseFile(xmlPath)
	require.NoError(t, err)
	assert.Equal(t, "defs1", defs.ID)

	text, err := json.Marshal(defs.ToDict())
	require.NoError(t, err)

	jsonPath := filepath.Join(dir, "review.json")
	require.NoError(t, os.WriteFile(jsonPath, text, 0o644))

	fromJSON, err := ParseJSONFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, defs.ToDict(), fromJSON.ToDict())
}

func TestParseFile_UnknownExtensionFallsBackToDetection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.txt")
	require.NoError(t, os.WriteFile(path, []byte(reviewXML), 0o644))

	defs, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "defs1", defs.ID)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.cmmn"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorIO, pe.Kind)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseString_DepthLimit(t *testing.T) {
	content := `<definitions id="d1"><case id="c1"><casePlanModel id="cpm1">` +
		`<stage id="s1"><stage id="s2"></stage></stage>` +
		`</casePlanModel></case></definitions>`

	_, err := ParseString(content, WithMaxDepth(2))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorDepth, pe.Kind)

	_, err = ParseString(content, WithMaxDepth(3))
	assert.NoError(t, err)
}

func TestParseString_StructuralError(t *testing.T) {
	_, err := ParseString(`<definitions id="d1"><case name="no id"/></definitions>`)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorStructural, pe.Kind)
}

func TestParseYAML(t *testing.T) {
	content := []byte(`
definitions:
  id: d1
  cases:
    - id: c1
      casePlanModel:
        id: cpm1
        planItems:
          - id: pi1
            definitionRef: t1
        definitions:
          - id: t1
            type: humanTask
            performer: bob
`)

	defs, err := ParseYAML(content)
	require.NoError(t, err)

	items := defs.AllPlanItems()
	require.Len(t, items, 1)

	ht, ok := items[0].Definition.(*model.HumanTask)
	require.True(t, ok)
	assert.Equal(t, "bob", ht.Performer)
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := ParseYAML([]byte("definitions: [unclosed"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorStructural, pe.Kind)
}

func TestValidateJSON(t *testing.T) {
	assert.NoError(t, ValidateJSON(`{"definitions": {"cases": [{"id": "c1"}]}}`))

	err := ValidateJSON(`{"definitions": {"cases": [{"name": "no id"}]}}`)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrorValidation, pe.Kind)
	assert.Len(t, pe.Findings, 1)
}

func TestValidationErrors(t *testing.T) {
	assert.Nil(t, ValidationErrors(`{"definitions": {}}`))

	findings := ValidationErrors(`{"definitions": {"cases": [{"name": "x"}, {"id": 1}]}}`)
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0], "missing_required")
	assert.Contains(t, findings[1], "wrong_type")
}

func TestValidationErrors_UndecodableInput(t *testing.T) {
	findings := ValidationErrors("{not json")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "invalid JSON")
}

func TestSchema(t *testing.T) {
	info := Schema()
	assert.Equal(t, "CMMN Definitions Schema", info.Title)
	assert.Equal(t, "1.1", info.Version)
	assert.Contains(t, info.SupportedElements, "humanTask")
	assert.Contains(t, info.SupportedElements, "sentry")
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{
		Kind:     ErrorValidation,
		Message:  "document has 1 schema violation(s)",
		Findings: []string{"definitions.cases[0].id: [missing_required] x"},
	}

	assert.Contains(t, err.Error(), "validation:")
	assert.Contains(t, err.Error(), "missing_required")
}
