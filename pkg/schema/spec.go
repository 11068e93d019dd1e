// Package schema performs structural and type checks on skill, solution and
// connector-context documents against a fixed per-section field table.
//
// It never inspects semantics (whether references resolve), only shape. Every
// problem becomes an error finding with check code schema.<section>.<field>.
package schema

// Kind is the expected JSON type of a value.
type Kind string

const (
	KindString         Kind = "string"
	KindNumber         Kind = "number"
	KindBoolean        Kind = "boolean"
	KindObject         Kind = "object"
	KindArray          Kind = "array"
	KindStringOrArray  Kind = "string|array"
	KindStringOrObject Kind = "string|object"
	KindMap            Kind = "map" // object with arbitrary keys, every value described by Values
	KindAny            Kind = "any"
)

// FieldSpec describes a single field.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool
	NonEmpty bool     // strings only
	Enum     []string // strings only
	Fields   []FieldSpec
	Items    *FieldSpec // element spec for arrays
	Values   *FieldSpec // value spec for maps
}

func str(name string) FieldSpec { return FieldSpec{Name: name, Kind: KindString} }

func reqStr(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindString, Required: true, NonEmpty: true}
}

func strList(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: KindArray, Items: &FieldSpec{Kind: KindString}}
}

func objects(name string, fields ...FieldSpec) FieldSpec {
	return FieldSpec{Name: name, Kind: KindArray, Items: &FieldSpec{Kind: KindObject, Fields: fields}}
}

func object(name string, fields ...FieldSpec) FieldSpec {
	return FieldSpec{Name: name, Kind: KindObject, Fields: fields}
}

// SkillSpec is the field table of a skill document. Top-level scalars belong to the
// "skill" section; every other top-level field is its own section.
var SkillSpec = []FieldSpec{
	str("id"),
	str("name"),
	object("problem",
		str("statement"),
		str("context"),
		strList("goals"),
	),
	objects("scenarios",
		str("id"),
		str("name"),
		str("description"),
		FieldSpec{Name: "steps", Kind: KindArray},
		str("expected_outcome"),
	),
	object("role",
		str("name"),
		str("persona"),
		strList("goals"),
		strList("limitations"),
	),
	objects("intents",
		str("id"),
		str("name"),
		str("description"),
		strList("examples"),
		str("maps_to_workflow"),
	),
	objects("tools",
		str("id"),
		reqStr("name"),
		str("description"),
		objects("parameters",
			reqStr("name"),
			str("type"),
			str("description"),
			FieldSpec{Name: "required", Kind: KindBoolean},
		),
		object("output",
			str("type"),
			str("description"),
			object("schema"),
		),
		object("security",
			FieldSpec{Name: "classification", Kind: KindString, Enum: []string{"public", "pii_read", "pii_write", "financial", "destructive"}},
			str("risk"),
			str("data_owner_field"),
		),
	),
	object("policy",
		objects("guardrails",
			str("id"),
			FieldSpec{Name: "type", Kind: KindString, Enum: []string{"never", "always"}},
			reqStr("rule"),
		),
		objects("workflows",
			reqStr("id"),
			str("name"),
			str("trigger"),
			FieldSpec{
				Name:     "steps",
				Kind:     KindArray,
				Required: true,
				Items:    &FieldSpec{Kind: KindStringOrObject, Fields: []FieldSpec{reqStr("tool")}},
			},
		),
		FieldSpec{Name: "approvals", Kind: KindArray},
	),
	object("engine",
		str("provider"),
		str("model"),
		FieldSpec{Name: "temperature", Kind: KindNumber},
		FieldSpec{Name: "max_tokens", Kind: KindNumber},
	),
	objects("mocks",
		reqStr("toolId"),
		FieldSpec{Name: "responses", Kind: KindArray},
	),
	object("metadata",
		str("version"),
		str("author"),
		strList("tags"),
	),
	object("access_policy",
		objects("rules",
			FieldSpec{Name: "tools", Kind: KindStringOrArray, Required: true},
			FieldSpec{Name: "when", Kind: KindStringOrObject},
			FieldSpec{Name: "require", Kind: KindStringOrArray},
			FieldSpec{Name: "effect", Kind: KindString, Required: true, Enum: []string{"allow", "deny", "constrain"}},
		),
	),
	objects("grant_mappings",
		reqStr("tool"),
		FieldSpec{Name: "on_success", Kind: KindBoolean},
		FieldSpec{
			Name:     "grants",
			Kind:     KindArray,
			Required: true,
			Items:    &FieldSpec{Kind: KindObject, Fields: []FieldSpec{reqStr("key"), str("value_from")}},
		},
	),
	objects("response_filters",
		str("id"),
		FieldSpec{Name: "tools", Kind: KindStringOrArray},
		strList("strip_fields"),
		strList("mask_fields"),
	),
	strList("connectors"),
}

// SolutionSpec is the field table of a solution document, excluding the skill
// bodies, which are checked with SkillSpec.
var SolutionSpec = []FieldSpec{
	str("id"),
	str("name"),
	str("version"),
	FieldSpec{Name: "skills", Kind: KindArray, Items: &FieldSpec{Kind: KindObject}},
	objects("grants",
		reqStr("key"),
		FieldSpec{Name: "issued_by", Kind: KindStringOrArray},
		FieldSpec{Name: "consumed_by", Kind: KindStringOrArray},
	),
	objects("handoffs",
		str("id"),
		reqStr("from"),
		reqStr("to"),
		str("trigger"),
		strList("grants_passed"),
	),
	FieldSpec{
		Name: "routing",
		Kind: KindMap,
		Values: &FieldSpec{Kind: KindObject, Fields: []FieldSpec{
			str("default_skill"),
			objects("rules",
				FieldSpec{Name: "match", Kind: KindAny},
				reqStr("skill"),
				FieldSpec{Name: "requires_grants", Kind: KindStringOrArray},
			),
		}},
	},
}

// ContextSpec is the field table of a validation context: the connector registry
// plus the uploaded source bundles keyed by connector id.
var ContextSpec = []FieldSpec{
	objects("connectors",
		reqStr("id"),
		str("name"),
		FieldSpec{Name: "transport", Kind: KindString, Enum: []string{"stdio", "http"}},
		str("command"),
		strList("args"),
		str("url"),
		FieldSpec{Name: "env", Kind: KindObject},
	),
	FieldSpec{
		Name: "mcp_store",
		Kind: KindMap,
		Values: &FieldSpec{Kind: KindArray, Items: &FieldSpec{Kind: KindObject, Fields: []FieldSpec{
			reqStr("path"),
			FieldSpec{Name: "content", Kind: KindString, Required: true},
		}}},
	},
}
