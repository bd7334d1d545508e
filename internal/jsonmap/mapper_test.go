package jsonmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmmn-parser/internal/resolve"
	"cmmn-parser/model"
)

func parse(t *testing.T, text string) *model.Definitions {
	t.Helper()

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &doc))

	m := &Mapper{}
	defs, err := m.Parse(doc)
	require.NoError(t, err)

	return defs
}

func TestParse_CompleteDocument(t *testing.T) {
	defs := parse(t, `{
		"definitions": {
			"id": "defs1",
			"name": "Review",
			"targetNamespace": "http://example.org/cmmn",
			"cases": [{
				"id": "case1",
				"name": "Document Review",
				"casePlanModel": {
					"id": "cpm1",
					"autoComplete": true,
					"planItems": [{"id": "pi1", "name": "Review Doc", "definitionRef": "ht1"}],
					"definitions": [{
						"id": "ht1",
						"type": "humanTask",
						"performer": "alice",
						"formKey": "review-form"
					}]
				}
			}]
		}
	}`)

	assert.Equal(t, "defs1", defs.ID)

	c, ok := defs.CaseByID("case1")
	require.True(t, ok)
	require.NotNil(t, c.CasePlanModel)
	assert.True(t, c.CasePlanModel.AutoComplete)

	require.Len(t, c.CasePlanModel.PlanItems, 1)
	ht, ok := c.CasePlanModel.PlanItems[0].Definition.(*model.HumanTask)
	require.True(t, ok)
	assert.Equal(t, "alice", ht.Performer)
	assert.True(t, ht.IsBlocking)
}

func TestParse_TypeDiscriminators(t *testing.T) {
	defs := parse(t, `{
		"definitions": {
			"cases": [{
				"id": "c1",
				"casePlanModel": {
					"id": "cpm1",
					"definitions": [
						{"id": "t1", "type": "task", "isBlocking": false},
						{"id": "t2", "type": "processTask", "processRef": "p1"},
						{"id": "t3", "type": "caseTask", "caseRef": "c2"},
						{"id": "t4", "type": "decisionTask", "decisionRef": "d1"},
						{"id": "m1", "type": "milestone"},
						{"id": "tel1", "type": "timerEventListener", "timerExpression": "P1D"},
						{"id": "uel1", "type": "userEventListener", "authorizedRoleRefs": ["admin"]},
						{"id": "anon"}
					]
				}
			}]
		}
	}`)

	stageDefs := defs.Cases[0].CasePlanModel.Definitions
	require.Len(t, stageDefs, 8)

	assert.False(t, stageDefs[0].(*model.Task).IsBlocking)
	assert.Equal(t, "p1", stageDefs[1].(*model.ProcessTask).ProcessRef)
	assert.Equal(t, "c2", stageDefs[2].(*model.CaseTask).CaseRef)
	assert.Equal(t, "d1", stageDefs[3].(*model.DecisionTask).DecisionRef)
	assert.Equal(t, model.KindMilestone, stageDefs[4].Kind())
	assert.Equal(t, "P1D", stageDefs[5].(*model.TimerEventListener).TimerExpression)
	assert.Equal(t, []string{"admin"}, stageDefs[6].(*model.UserEventListener).AuthorizedRoleRefs)

	// No discriminator means a generic task with defaults.
	anon, ok := stageDefs[7].(*model.Task)
	require.True(t, ok)
	assert.True(t, anon.IsBlocking)
}

func TestParse_NestedStageScoping(t *testing.T) {
	defs := parse(t, `{
		"definitions": {
			"cases": [{
				"id": "c1",
				"casePlanModel": {
					"id": "cpm1",
					"planItems": [{"id": "outer-pi", "definitionRef": "inner-stage"}],
					"definitions": [
						{"id": "shared", "type": "task"},
						{
							"id": "inner-stage",
							"type": "stage",
							"planItems": [{"id": "inner-pi", "definitionRef": "shared"}]
						}
					]
				}
			}]
		}
	}`)

	items := defs.AllPlanItems()
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Definition)
	assert.Equal(t, model.KindStage, items[0].Definition.Kind())

	require.NotNil(t, items[1].Definition)
	assert.Equal(t, "shared", items[1].Definition.GetID())
}

func TestParse_UnresolvedReferenceIsNotAnError(t *testing.T) {
	defs := parse(t, `{
		"definitions": {
			"cases": [{
				"id": "c1",
				"casePlanModel": {
					"id": "cpm1",
					"planItems": [{"id": "pi1", "definitionRef": "ghost"}]
				}
			}]
		}
	}`)

	items := defs.AllPlanItems()
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Definition)
	assert.Equal(t, "ghost", items[0].DefinitionRef)
}

func TestParse_MissingEnvelope(t *testing.T) {
	m := &Mapper{}

	_, err := m.Parse(map[string]any{"cases": []any{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitions")
}

func TestParse_WrongFieldType(t *testing.T) {
	m := &Mapper{}

	_, err := m.Parse(map[string]any{
		"definitions": map[string]any{
			"cases": []any{map[string]any{
				"id": "c1",
				"casePlanModel": map[string]any{
					"id":           "cpm1",
					"autoComplete": "yes",
				},
			}},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "autoComplete")
}

func TestParse_StageNestingLimit(t *testing.T) {
	inner := map[string]any{"type": "stage", "id": "deep"}
	for i := 0; i < 4; i++ {
		inner = map[string]any{
			"type":        "stage",
			"id":          "wrap",
			"definitions": []any{inner},
		}
	}

	doc := map[string]any{
		"definitions": map[string]any{
			"cases": []any{map[string]any{
				"id": "c1",
				"casePlanModel": map[string]any{
					"id":          "cpm1",
					"definitions": []any{inner},
				},
			}},
		},
	}

	m := &Mapper{MaxDepth: 3}
	_, err := m.Parse(doc)
	assert.ErrorIs(t, err, resolve.ErrDepthExceeded)

	m = &Mapper{MaxDepth: 10}
	_, err = m.Parse(doc)
	assert.NoError(t, err)
}

func TestParse_RoundTripThroughToDict(t *testing.T) {
	text := `{
		"definitions": {
			"id": "defs1",
			"exporter": "unit",
			"imports": [{"id": "imp1", "namespace": "urn:other"}],
			"caseFileItemDefinitions": [{"id": "cfid1", "definitiveProperties": ["title"]}],
			"cases": [{
				"id": "c1",
				"roles": [{"id": "r1", "name": "Reviewer"}],
				"caseFileModel": {
					"id": "cfm1",
					"caseFileItems": [{
						"id": "cfi1",
						"multiplicity": "OneOrMore",
						"children": [{"id": "cfi1a"}]
					}]
				},
				"casePlanModel": {
					"id": "cpm1",
					"autoComplete": true,
					"planItems": [{
						"id": "pi1",
						"definitionRef": "ht1",
						"entryCriteriaRefs": ["s1"],
						"itemControl": {"requiredRule": "${ready}"}
					}],
					"definitions": [{"id": "ht1", "type": "humanTask", "performer": "alice"}],
					"sentries": [{
						"id": "s1",
						"onParts": [{"sourceRef": "pi0", "standardEvent": "complete"}],
						"ifPart": {"condition": "${ok}"}
					}]
				}
			}],
			"processes": [{"id": "p1", "isExecutable": false}],
			"decisions": [{"id": "d1", "decisionLogic": "table1"}]
		}
	}`

	first := parse(t, text)
	dict := first.ToDict()

	m := &Mapper{}
	second, err := m.Parse(dict)
	require.NoError(t, err)

	assert.Equal(t, dict, second.ToDict())
}
