// Package skill models skill and solution documents.
//
// Documents arrive as loosely typed JSON/YAML. Decode never fails: every value the
// validators reason about is kept as a Field with an explicit Presence, and the raw
// map is retained for the schema stage.
package skill

// Section names, in the order the pipeline reports them.
const (
	SectionSkill           = "skill"
	SectionProblem         = "problem"
	SectionScenarios       = "scenarios"
	SectionRole            = "role"
	SectionIntents         = "intents"
	SectionTools           = "tools"
	SectionPolicy          = "policy"
	SectionEngine          = "engine"
	SectionMocks           = "mocks"
	SectionMetadata        = "metadata"
	SectionAccessPolicy    = "access_policy"
	SectionGrantMappings   = "grant_mappings"
	SectionResponseFilters = "response_filters"
	SectionConnectors      = "connectors"
)

// Tool security classifications.
const (
	ClassPublic      = "public"
	ClassPIIRead     = "pii_read"
	ClassPIIWrite    = "pii_write"
	ClassFinancial   = "financial"
	ClassDestructive = "destructive"
)

// Classifications lists every valid classification.
var Classifications = []string{ClassPublic, ClassPIIRead, ClassPIIWrite, ClassFinancial, ClassDestructive}

// Access policy effects.
const (
	EffectAllow     = "allow"
	EffectDeny      = "deny"
	EffectConstrain = "constrain"
)

// Document is a decoded skill.
type Document struct {
	// Index is the position of the skill inside a solution's skills list.
	Index int
	ID    Text
	Name  Text

	Problem   *Problem
	Scenarios []Scenario
	Role      *Role
	Intents   []Intent
	Tools     []Tool
	Policy    *Policy
	Engine    *Engine
	Mocks     []Mock
	Metadata  *Metadata

	AccessPolicy    *AccessPolicy
	GrantMappings   []GrantMapping
	ResponseFilters []ResponseFilter
	Connectors      []string

	// Raw is the untouched input, consumed by the schema stage.
	Raw map[string]any

	sections map[string]Presence
}

// Section returns the presence of a top-level section.
func (d *Document) Section(name string) Presence {
	if d == nil || d.sections == nil {
		return Absent
	}
	return d.sections[name]
}

// Problem describes what the skill solves.
type Problem struct {
	Statement Text
	Context   Text
}

// Scenario is an example conversation the skill must handle.
type Scenario struct {
	Index       int
	ID          Text
	Name        Text
	Description Text
}

// Role is the agent persona.
type Role struct {
	Name    Text
	Persona Text
}

// Intent is a recognised user goal, optionally routed to a workflow.
type Intent struct {
	Index          int
	ID             Text
	Name           Text
	Description    Text
	MapsToWorkflow Text
}

// Tool is a ToolDefinition.
type Tool struct {
	Index       int
	ID          Text
	Name        Text
	Description Text
	Parameters  []Parameter
	Output      Field[Output]
	Security    *ToolSecurity
}

// Key is the identifier other sections use for the tool: its id, else its name.
func (t Tool) Key() string {
	return Or(t.ID, t.Name.Value)
}

// Classification returns the declared classification, or "" when none is usable.
func (t Tool) Classification() string {
	if t.Security == nil {
		return ""
	}
	c, _ := t.Security.Classification.Get()
	return c
}

// Parameter is one tool input.
type Parameter struct {
	Name     Text
	Type     Text
	Required Field[bool]
}

// Output describes the tool result; Schema is an optional JSON Schema.
type Output struct {
	Type        Text
	Description Text
	Schema      map[string]any
}

// ToolSecurity carries the access-control classification of a tool.
type ToolSecurity struct {
	Classification Text
	Risk           Text
}

// Policy groups guardrails and workflows.
type Policy struct {
	Guardrails []Guardrail
	Workflows  []Workflow
}

// Guardrail is a never/always rule.
type Guardrail struct {
	Index int
	ID    Text
	Type  Text
	Rule  Text
}

// Workflow is a WorkflowDefinition.
type Workflow struct {
	Index int
	ID    Text
	Name  Text
	Steps []Step
}

// Step references a tool by name or id.
type Step struct {
	Index int
	Tool  Text
}

// Engine selects the model.
type Engine struct {
	Provider Text
	Model    Text
}

// Mock holds canned responses for a tool.
type Mock struct {
	Index     int
	ToolID    Text
	Responses []any
}

// Metadata is free-form bookkeeping; Version is semver when present.
type Metadata struct {
	Version Text
	Author  Text
}

// AccessPolicy is an ordered, first-match-wins list of rules.
type AccessPolicy struct {
	Rules []Rule
}

// Rule is an AccessPolicyRule. Only its structure is inspected, never evaluated.
type Rule struct {
	Index   int
	Tools   ToolSelector
	When    Field[any]
	Require []string
	Effect  Text
}

// Conditional reports whether the rule is gated by a condition or grant requirement.
func (r Rule) Conditional() bool {
	return !r.When.IsAbsent() || len(r.Require) > 0
}

// ToolSelector is either "*" or an explicit list of tool names/ids.
type ToolSelector struct {
	All      bool
	Names    []string
	Presence Presence
}

// Matches reports whether the selector would select the given tool.
func (s ToolSelector) Matches(t Tool) bool {
	if s.All {
		return true
	}
	for _, n := range s.Names {
		if n == "" {
			continue
		}
		if n == t.Name.Value || (t.ID.IsPresent() && n == t.ID.Value) {
			return true
		}
	}
	return false
}

// GrantMapping issues grants after a tool call succeeds.
type GrantMapping struct {
	Index  int
	Tool   Text
	Grants []string
}

// ResponseFilter strips or masks fields from tool responses.
type ResponseFilter struct {
	Index    int
	ID       Text
	AllTools bool
	Tools    []string
}

// Applies reports whether the filter covers the tool.
func (f ResponseFilter) Applies(t Tool) bool {
	if f.AllTools {
		return true
	}
	for _, n := range f.Tools {
		if n == t.Name.Value || (t.ID.IsPresent() && n == t.ID.Value) {
			return true
		}
	}
	return false
}
