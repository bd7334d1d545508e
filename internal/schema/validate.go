package schema

import (
	"fmt"

	"cmmn-parser/internal/diagnostic"
	"cmmn-parser/internal/resolve"
)

// Validate checks a decoded JSON value tree against the structural schema
// and returns every finding, not just the first. The input is never
// mutated. An empty result means the document is valid.
func Validate(doc any) *diagnostic.Findings {
	return ValidateDepth(doc, 0)
}

// ValidateDepth is Validate with an explicit nesting limit. A non-positive
// limit means resolve.DefaultMaxDepth.
func ValidateDepth(doc any, maxDepth int) *diagnostic.Findings {
	v := &validator{
		fs:    &diagnostic.Findings{},
		guard: resolve.NewDepthGuard(maxDepth),
	}

	root, ok := doc.(map[string]any)
	if !ok {
		v.fs.Add("", "document_not_object", fmt.Sprintf("document must be an object, got %s", typeName(doc)))
		return v.fs
	}

	raw, ok := root["definitions"]
	if !ok {
		v.fs.Add("definitions", "missing_required", `required object "definitions" is missing`)
		return v.fs
	}

	defs, ok := raw.(map[string]any)
	if !ok {
		v.wrongType("definitions", "object", raw)
		return v.fs
	}

	v.definitions("definitions", defs)

	return v.fs
}

type validator struct {
	fs    *diagnostic.Findings
	guard *resolve.DepthGuard
}

func (v *validator) definitions(path string, obj map[string]any) {
	v.optString(path, obj, "id")
	v.optString(path, obj, "name")
	v.optString(path, obj, "targetNamespace")
	v.optString(path, obj, "expressionLanguage")
	v.optString(path, obj, "exporter")
	v.optString(path, obj, "exporterVersion")

	v.objectArray(path, obj, "imports", func(p string, item map[string]any) {
		v.optString(p, item, "id")
		v.optString(p, item, "namespace")
		v.optString(p, item, "location")
		v.optString(p, item, "importType")
	})

	v.objectArray(path, obj, "caseFileItemDefinitions", func(p string, item map[string]any) {
		v.requireString(p, item, "id")
		v.optString(p, item, "name")
		v.optString(p, item, "structureRef")
		v.stringList(p, item, "definitiveProperties")
	})

	v.objectArray(path, obj, "cases", v.caseObj)

	v.objectArray(path, obj, "processes", func(p string, item map[string]any) {
		v.requireString(p, item, "id")
		v.optString(p, item, "name")
		v.optBool(p, item, "isExecutable")
		v.optString(p, item, "implementationType")
	})

	v.objectArray(path, obj, "decisions", func(p string, item map[string]any) {
		v.requireString(p, item, "id")
		v.optString(p, item, "name")
		v.optString(p, item, "decisionLogic")
	})
}

func (v *validator) caseObj(path string, obj map[string]any) {
	v.requireString(path, obj, "id")
	v.optString(path, obj, "name")

	v.object(path, obj, "casePlanModel", v.stage)
	v.object(path, obj, "caseFileModel", v.caseFileModel)

	v.objectArray(path, obj, "roles", func(p string, item map[string]any) {
		v.optString(p, item, "id")
		v.optString(p, item, "name")
	})
}

func (v *validator) stage(path string, obj map[string]any) {
	if err := v.guard.Enter(); err != nil {
		v.fs.Add(path, "max_depth_exceeded", err.Error())
		return
	}
	defer v.guard.Exit()

	v.requireString(path, obj, "id")
	v.optString(path, obj, "name")
	v.optBool(path, obj, "autoComplete")

	v.objectArray(path, obj, "planItems", v.planItem)
	v.objectArray(path, obj, "sentries", v.sentry)
	v.objectArray(path, obj, "definitions", v.definitionEntry)
}

func (v *validator) definitionEntry(path string, obj map[string]any) {
	typ := v.optString(path, obj, "type")

	// Nested stages recurse; every other variant is flat.
	if typ == "stage" {
		v.stage(path, obj)
		return
	}

	v.requireString(path, obj, "id")
	v.optString(path, obj, "name")
	v.optBool(path, obj, "isBlocking")
	v.optString(path, obj, "performer")
	v.optString(path, obj, "formKey")
	v.optString(path, obj, "processRef")
	v.optString(path, obj, "caseRef")
	v.optString(path, obj, "decisionRef")
	v.optString(path, obj, "timerExpression")
	v.stringList(path, obj, "authorizedRoleRefs")
}

func (v *validator) planItem(path string, obj map[string]any) {
	v.requireString(path, obj, "id")
	v.optString(path, obj, "name")
	v.optString(path, obj, "definitionRef")
	v.stringList(path, obj, "entryCriteriaRefs")
	v.stringList(path, obj, "exitCriteriaRefs")

	v.object(path, obj, "itemControl", func(p string, item map[string]any) {
		v.optString(p, item, "requiredRule")
		v.optString(p, item, "repetitionRule")
		v.optString(p, item, "manualActivationRule")
	})
}

func (v *validator) sentry(path string, obj map[string]any) {
	v.requireString(path, obj, "id")
	v.optString(path, obj, "name")

	v.objectArray(path, obj, "onParts", func(p string, item map[string]any) {
		v.optString(p, item, "id")
		v.optString(p, item, "sourceRef")
		v.optString(p, item, "standardEvent")
	})

	v.object(path, obj, "ifPart", func(p string, item map[string]any) {
		v.optString(p, item, "id")
		v.optString(p, item, "condition")
	})
}

func (v *validator) caseFileModel(path string, obj map[string]any) {
	v.optString(path, obj, "id")
	v.optString(path, obj, "name")

	v.objectArray(path, obj, "caseFileItems", v.caseFileItem)
}

func (v *validator) caseFileItem(path string, obj map[string]any) {
	if err := v.guard.Enter(); err != nil {
		v.fs.Add(path, "max_depth_exceeded", err.Error())
		return
	}
	defer v.guard.Exit()

	v.requireString(path, obj, "id")
	v.optString(path, obj, "name")
	v.optString(path, obj, "definitionRef")
	v.optString(path, obj, "multiplicity")
	v.optString(path, obj, "sourceRef")
	v.stringList(path, obj, "targetRefs")
	v.stringList(path, obj, "definitiveProperties")

	v.objectArray(path, obj, "children", v.caseFileItem)
}

// requireString flags a missing or non-string required field.
func (v *validator) requireString(path string, obj map[string]any, key string) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		v.fs.Add(path+"."+key, "missing_required", fmt.Sprintf("required field %q is missing", key))
		return
	}

	if _, ok := raw.(string); !ok {
		v.wrongType(path+"."+key, "string", raw)
	}
}

// optString flags a present non-string field and returns the value when it
// is a string.
func (v *validator) optString(path string, obj map[string]any, key string) string {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return ""
	}

	s, ok := raw.(string)
	if !ok {
		v.wrongType(path+"."+key, "string", raw)
		return ""
	}

	return s
}

func (v *validator) optBool(path string, obj map[string]any, key string) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return
	}

	if _, ok := raw.(bool); !ok {
		v.wrongType(path+"."+key, "boolean", raw)
	}
}

// stringList validates an optional array-of-strings field. Arrays must be
// arrays even when singleton.
func (v *validator) stringList(path string, obj map[string]any, key string) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return
	}

	arr, ok := raw.([]any)
	if !ok {
		v.wrongType(path+"."+key, "array", raw)
		return
	}

	for i, el := range arr {
		if _, ok := el.(string); !ok {
			v.wrongType(fmt.Sprintf("%s.%s[%d]", path, key, i), "string", el)
		}
	}
}

// object validates an optional object field and descends into it.
func (v *validator) object(path string, obj map[string]any, key string, fn func(string, map[string]any)) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return
	}

	m, ok := raw.(map[string]any)
	if !ok {
		v.wrongType(path+"."+key, "object", raw)
		return
	}

	fn(path+"."+key, m)
}

// objectArray validates an optional array-of-objects field and descends
// into each element.
func (v *validator) objectArray(path string, obj map[string]any, key string, fn func(string, map[string]any)) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return
	}

	arr, ok := raw.([]any)
	if !ok {
		v.wrongType(path+"."+key, "array", raw)
		return
	}

	for i, el := range arr {
		elPath := fmt.Sprintf("%s.%s[%d]", path, key, i)

		m, ok := el.(map[string]any)
		if !ok {
			v.wrongType(elPath, "object", el)
			continue
		}

		fn(elPath, m)
	}
}

func (v *validator) wrongType(path, want string, got any) {
	v.fs.Add(path, "wrong_type", fmt.Sprintf("expected %s, got %s", want, typeName(got)))
}

func typeName(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64, uint64:
		return "number"
	default:
		return fmt.Sprintf("%T", val)
	}
}
