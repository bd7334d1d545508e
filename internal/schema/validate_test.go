package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, text string) any {
	t.Helper()

	var doc any
	require.NoError(t, json.Unmarshal([]byte(text), &doc))

	return doc
}

func TestValidate_ValidDocument(t *testing.T) {
	doc := decode(t, `{
		"definitions": {
			"id": "defs1",
			"cases": [{
				"id": "case1",
				"casePlanModel": {
					"id": "cpm1",
					"autoComplete": true,
					"planItems": [{"id": "pi1", "definitionRef": "t1"}],
					"definitions": [{"id": "t1", "type": "humanTask", "performer": "alice"}],
					"sentries": [{"id": "s1", "onParts": [{"sourceRef": "pi1", "standardEvent": "complete"}]}]
				}
			}]
		}
	}`)

	fs := Validate(doc)
	assert.True(t, fs.IsValid(), "unexpected findings: %v", fs.Strings())
}

func TestValidate_DocumentNotObject(t *testing.T) {
	fs := Validate(decode(t, `[1, 2]`))

	require.Equal(t, 1, fs.Len())
	assert.Equal(t, "document_not_object", fs.Items[0].Code)
}

func TestValidate_MissingDefinitions(t *testing.T) {
	fs := Validate(decode(t, `{"other": {}}`))

	require.Equal(t, 1, fs.Len())
	assert.Equal(t, "definitions", fs.Items[0].Path)
	assert.Equal(t, "missing_required", fs.Items[0].Code)
}

func TestValidate_MissingCaseID(t *testing.T) {
	fs := Validate(decode(t, `{"definitions": {"cases": [{"name": "anonymous"}]}}`))

	require.Equal(t, 1, fs.Len())
	assert.Equal(t, "definitions.cases[0].id", fs.Items[0].Path)
	assert.Equal(t, "missing_required", fs.Items[0].Code)
}

func TestValidate_AccumulatesAllViolations(t *testing.T) {
	fs := Validate(decode(t, `{
		"definitions": {
			"cases": [{
				"id": 42,
				"casePlanModel": {
					"autoComplete": "yes",
					"planItems": [{"name": "no id here"}]
				}
			}]
		}
	}`))

	require.Equal(t, 4, fs.Len())

	paths := make([]string, 0, fs.Len())
	for _, f := range fs.Items {
		paths = append(paths, f.Path)
	}

	assert.Contains(t, paths, "definitions.cases[0].id")
	assert.Contains(t, paths, "definitions.cases[0].casePlanModel.id")
	assert.Contains(t, paths, "definitions.cases[0].casePlanModel.autoComplete")
	assert.Contains(t, paths, "definitions.cases[0].casePlanModel.planItems[0].id")
}

func TestValidate_SingletonListMustBeArray(t *testing.T) {
	fs := Validate(decode(t, `{
		"definitions": {
			"cases": [{
				"id": "case1",
				"casePlanModel": {
					"id": "cpm1",
					"planItems": [{"id": "pi1", "entryCriteriaRefs": "s1"}]
				}
			}]
		}
	}`))

	require.Equal(t, 1, fs.Len())
	assert.Equal(t, "definitions.cases[0].casePlanModel.planItems[0].entryCriteriaRefs", fs.Items[0].Path)
	assert.Equal(t, "wrong_type", fs.Items[0].Code)
	assert.Contains(t, fs.Items[0].Message, "expected array")
}

func TestValidate_UnknownKeysIgnored(t *testing.T) {
	fs := Validate(decode(t, `{
		"definitions": {
			"vendorExtension": {"anything": true},
			"cases": [{"id": "case1", "customField": 7}]
		}
	}`))

	assert.True(t, fs.IsValid(), "unexpected findings: %v", fs.Strings())
}

func TestValidate_NestedStageRecursion(t *testing.T) {
	fs := Validate(decode(t, `{
		"definitions": {
			"cases": [{
				"id": "case1",
				"casePlanModel": {
					"id": "cpm1",
					"definitions": [{
						"type": "stage",
						"id": "inner",
						"definitions": [{"type": "humanTask"}]
					}]
				}
			}]
		}
	}`))

	require.Equal(t, 1, fs.Len())
	assert.Equal(t,
		"definitions.cases[0].casePlanModel.definitions[0].definitions[0].id",
		fs.Items[0].Path)
}

func TestValidateDepth_StageNestingLimit(t *testing.T) {
	inner := map[string]any{"type": "stage", "id": "deep"}
	for i := 0; i < 5; i++ {
		inner = map[string]any{
			"type":        "stage",
			"id":          "wrap",
			"definitions": []any{inner},
		}
	}

	doc := map[string]any{
		"definitions": map[string]any{
			"cases": []any{map[string]any{
				"id": "case1",
				"casePlanModel": map[string]any{
					"id":          "cpm1",
					"definitions": []any{inner},
				},
			}},
		},
	}

	fs := ValidateDepth(doc, 3)

	require.Equal(t, 1, fs.Len())
	assert.Equal(t, "max_depth_exceeded", fs.Items[0].Code)
}

func TestValidate_CaseFileItems(t *testing.T) {
	fs := Validate(decode(t, `{
		"definitions": {
			"cases": [{
				"id": "case1",
				"caseFileModel": {
					"caseFileItems": [{
						"id": "cfi1",
						"targetRefs": ["a", 2],
						"children": [{"name": "no id"}]
					}]
				}
			}]
		}
	}`))

	require.Equal(t, 2, fs.Len())

	paths := []string{fs.Items[0].Path, fs.Items[1].Path}
	assert.Contains(t, paths, "definitions.cases[0].caseFileModel.caseFileItems[0].targetRefs[1]")
	assert.Contains(t, paths, "definitions.cases[0].caseFileModel.caseFileItems[0].children[0].id")
}
