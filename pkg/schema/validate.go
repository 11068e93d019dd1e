package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
)

// ValidateSkill checks a raw skill object. Absent optional fields produce nothing;
// present fields of the wrong shape produce errors. It never panics on malformed input.
func ValidateSkill(raw map[string]any) findings.List {
	w := &walker{root: "skill"}
	w.document(raw, SkillSpec)
	w.semanticVersion(raw, "metadata", "version")
	w.outputSchemas(raw)
	return w.out
}

// ValidateSolution checks the solution envelope (id, grants, handoffs, routing).
func ValidateSolution(raw map[string]any) findings.List {
	w := &walker{root: "solution"}
	w.document(raw, SolutionSpec)
	if v, ok := raw["version"].(string); ok && v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			w.errorf("solution", "version", "version", "version %q is not a valid semantic version", v)
		}
	}
	return w.out
}

// ValidateContext checks the connector registry and the uploaded source bundles.
func ValidateContext(raw map[string]any) findings.List {
	w := &walker{root: "context"}
	w.document(raw, ContextSpec)
	return w.out
}

// FailedSections returns the sections that carry at least one schema error.
// Downstream stages skip checks whose source section is listed here.
func FailedSections(l findings.List) map[string]bool {
	failed := map[string]bool{}
	for _, f := range l {
		if f.IsError() && strings.HasPrefix(f.Check, findings.SchemaPrefix) {
			failed[f.Section] = true
		}
	}
	return failed
}

type walker struct {
	root string
	out  findings.List
}

// location identifies a value: its section, its index-free code path relative to
// the section, and its concrete path for humans.
type location struct {
	section string
	code    string
	path    string
}

func (l location) child(name string) location {
	code := name
	if l.code != "" {
		code = l.code + "." + name
	}
	return location{section: l.section, code: code, path: l.path + "." + name}
}

func (l location) index(i int) location {
	return location{section: l.section, code: l.code, path: fmt.Sprintf("%s[%d]", l.path, i)}
}

func (l location) key(k string) location {
	return location{section: l.section, code: l.code, path: l.path + "." + k}
}

func (w *walker) document(raw map[string]any, specs []FieldSpec) {
	for _, spec := range specs {
		loc := location{section: spec.Name, path: spec.Name}
		if isScalar(spec.Kind) {
			loc = location{section: w.root, code: spec.Name, path: spec.Name}
		}
		v, present := raw[spec.Name]
		w.field(loc, v, present, spec)
	}
}

func (w *walker) field(loc location, v any, present bool, spec FieldSpec) {
	if !present || v == nil {
		if spec.Required {
			w.errorf(loc.section, loc.code, loc.path, "%s is required", loc.path)
		}
		return
	}
	w.value(loc, v, spec)
}

func (w *walker) value(loc location, v any, spec FieldSpec) {
	if !matches(v, spec.Kind) {
		w.errorf(loc.section, loc.code, loc.path, "%s must be %s, got %s", loc.path, describe(spec.Kind), jsonType(v))
		return
	}

	switch t := v.(type) {
	case string:
		if spec.NonEmpty && strings.TrimSpace(t) == "" {
			w.errorf(loc.section, loc.code, loc.path, "%s must be a non-empty string", loc.path)
			return
		}
		if len(spec.Enum) > 0 && !contains(spec.Enum, t) {
			w.errorf(loc.section, loc.code, loc.path, "%s must be one of [%s], got %q", loc.path, strings.Join(spec.Enum, ", "), t)
		}
	case map[string]any:
		if spec.Kind == KindMap && spec.Values != nil {
			for _, k := range sortedKeys(t) {
				if t[k] == nil {
					w.errorf(loc.section, loc.code, loc.key(k).path, "%s must be %s, got null", loc.key(k).path, describe(spec.Values.Kind))
					continue
				}
				w.value(loc.key(k), t[k], *spec.Values)
			}
			return
		}
		for _, child := range spec.Fields {
			cv, ok := t[child.Name]
			w.field(loc.child(child.Name), cv, ok, child)
		}
	case []any:
		if spec.Items == nil {
			return
		}
		for i, item := range t {
			if item == nil {
				w.errorf(loc.section, loc.code, loc.index(i).path, "%s must be %s, got null", loc.index(i).path, describe(spec.Items.Kind))
				continue
			}
			w.value(loc.index(i), item, *spec.Items)
		}
	}
}

func (w *walker) semanticVersion(raw map[string]any, section, field string) {
	m, ok := raw[section].(map[string]any)
	if !ok {
		return
	}
	v, ok := m[field].(string)
	if !ok || v == "" {
		return
	}
	if _, err := semver.NewVersion(v); err != nil {
		w.errorf(section, field, section+"."+field, "%s.%s %q is not a valid semantic version", section, field, v)
	}
}

// outputSchemas compiles every declared tools[].output.schema.
func (w *walker) outputSchemas(raw map[string]any) {
	tools, ok := raw["tools"].([]any)
	if !ok {
		return
	}
	for i, item := range tools {
		tool, ok := item.(map[string]any)
		if !ok {
			continue
		}
		output, ok := tool["output"].(map[string]any)
		if !ok {
			continue
		}
		doc, ok := output["schema"].(map[string]any)
		if !ok {
			continue
		}
		name, _ := tool["name"].(string)
		if name == "" {
			name = fmt.Sprintf("tool-%d", i)
		}
		if _, err := CompileJSONSchema(name, doc); err != nil {
			path := fmt.Sprintf("tools[%d].output.schema", i)
			w.errorf("tools", "output.schema", path, "%s is not a valid JSON Schema: %v", path, err)
		}
	}
}

func (w *walker) errorf(section, code, path, format string, args ...any) {
	w.out = append(w.out, findings.Error(findings.SchemaCheck(section, code), format, args...).At(section, path))
}

func isScalar(k Kind) bool {
	switch k {
	case KindString, KindNumber, KindBoolean:
		return true
	}
	return false
}

func matches(v any, k Kind) bool {
	switch k {
	case KindAny:
		return true
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindObject, KindMap:
		_, ok := v.(map[string]any)
		return ok
	case KindArray:
		_, ok := v.([]any)
		return ok
	case KindStringOrArray:
		switch v.(type) {
		case string, []any:
			return true
		}
		return false
	case KindStringOrObject:
		switch v.(type) {
		case string, map[string]any:
			return true
		}
		return false
	}
	return true
}

func describe(k Kind) string {
	switch k {
	case KindString:
		return "a string"
	case KindNumber:
		return "a number"
	case KindBoolean:
		return "a boolean"
	case KindObject, KindMap:
		return "an object"
	case KindArray:
		return "an array"
	case KindStringOrArray:
		return "a string or an array"
	case KindStringOrObject:
		return "a string or an object"
	}
	return "any value"
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
