// Package references indexes the ID-bearing sections of a skill and resolves the
// cross-references between them: workflow step to tool, mock to tool and intent
// to workflow.
package references

import (
	"fmt"
	"sort"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/schema"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
)

// Options tunes resolution.
type Options struct {
	// SharedIDNamespace treats tool, intent, scenario, guardrail and workflow IDs
	// as one namespace and reports collisions between sections.
	SharedIDNamespace bool
}

// Unresolved lists references that named something that does not exist.
type Unresolved struct {
	Tools     []string `json:"tools"`
	Workflows []string `json:"workflows"`
	Intents   []string `json:"intents"`
	Mocks     []string `json:"mocks"`
}

// Empty reports whether nothing is unresolved.
func (u Unresolved) Empty() bool {
	return len(u.Tools)+len(u.Workflows)+len(u.Intents)+len(u.Mocks) == 0
}

// IntentResolution is the per-intent outcome of maps_to_workflow lookup.
type IntentResolution struct {
	ID             string `json:"id"`
	MapsToWorkflow string `json:"maps_to_workflow,omitempty"`
	Resolved       bool   `json:"maps_to_workflow_resolved"`
}

// Report is the outcome of Resolve.
type Report struct {
	Resolved   bool               `json:"resolved"`
	Unresolved Unresolved         `json:"unresolved"`
	Duplicates []string           `json:"duplicates"`
	Intents    []IntentResolution `json:"intents"`
	Findings   findings.List      `json:"-"`
}

// Resolve builds the ID index of doc and checks every reference against it.
// Sections listed in failed (see schema.FailedSections) are not inspected, and
// neither are references that depend on them.
func Resolve(doc *skill.Document, failed map[string]bool, opts Options) *Report {
	r := &resolver{
		doc:    doc,
		failed: failed,
		report: &Report{
			Unresolved: Unresolved{Tools: []string{}, Workflows: []string{}, Intents: []string{}, Mocks: []string{}},
			Duplicates: []string{},
			Intents:    []IntentResolution{},
		},
		seen: map[string]bool{},
	}
	if doc == nil {
		r.report.Resolved = true
		return r.report
	}

	r.indexSections()
	if opts.SharedIDNamespace {
		r.crossSection()
	}
	r.workflowSteps()
	r.mocks()
	r.intents()

	r.report.Resolved = r.report.Unresolved.Empty()
	return r.report
}

// entry is one ID-bearing entity.
type entry struct {
	id      string
	section string
	field   string
}

type resolver struct {
	doc    *skill.Document
	failed map[string]bool
	report *Report

	// namespaces maps a namespace (tools, intents, ...) to its unique IDs.
	namespaces map[string]map[string]entry
	// toolRefs holds every name and id a tool can be referenced by.
	toolRefs  map[string]skill.Tool
	workflows map[string]bool
	seen      map[string]bool
}

func (r *resolver) indexSections() {
	d := r.doc
	r.namespaces = map[string]map[string]entry{}
	r.toolRefs = map[string]skill.Tool{}
	r.workflows = map[string]bool{}

	if !r.failed[skill.SectionTools] {
		var tools []entry
		for _, t := range d.Tools {
			if skill.NonEmpty(t.Name) {
				r.toolRefs[t.Name.Value] = t
			}
			if skill.NonEmpty(t.ID) {
				r.toolRefs[t.ID.Value] = t
			}
			field := fmt.Sprintf("tools[%d].id", t.Index)
			if !skill.NonEmpty(t.ID) {
				field = fmt.Sprintf("tools[%d].name", t.Index)
			}
			tools = append(tools, entry{id: t.Key(), section: skill.SectionTools, field: field})
		}
		r.index("tools", tools)
	}

	if !r.failed[skill.SectionIntents] {
		var intents []entry
		for _, in := range d.Intents {
			intents = append(intents, entry{id: text(in.ID), section: skill.SectionIntents, field: fmt.Sprintf("intents[%d].id", in.Index)})
		}
		r.index("intents", intents)
	}

	if !r.failed[skill.SectionScenarios] {
		var scenarios []entry
		for _, s := range d.Scenarios {
			scenarios = append(scenarios, entry{id: text(s.ID), section: skill.SectionScenarios, field: fmt.Sprintf("scenarios[%d].id", s.Index)})
		}
		r.index("scenarios", scenarios)
	}

	if d.Policy != nil && !r.failed[skill.SectionPolicy] {
		var guardrails, workflows []entry
		for _, g := range d.Policy.Guardrails {
			guardrails = append(guardrails, entry{id: text(g.ID), section: skill.SectionPolicy, field: fmt.Sprintf("policy.guardrails[%d].id", g.Index)})
		}
		for _, w := range d.Policy.Workflows {
			if id := text(w.ID); id != "" {
				r.workflows[id] = true
			}
			workflows = append(workflows, entry{id: text(w.ID), section: skill.SectionPolicy, field: fmt.Sprintf("policy.workflows[%d].id", w.Index)})
		}
		r.index("guardrails", guardrails)
		r.index("workflows", workflows)
	}
}

// index records the entries of one namespace and reports IDs declared twice.
// Entries without an ID are not indexed.
func (r *resolver) index(namespace string, entries []entry) {
	ids := map[string]entry{}
	for _, e := range entries {
		if e.id == "" {
			continue
		}
		if first, dup := ids[e.id]; dup {
			r.addDuplicate(e.id)
			r.report.Findings = append(r.report.Findings,
				findings.Error(findings.CheckDuplicateID, "%s id %q is declared more than once (first at %s)", singular(namespace), e.id, first.field).
					At(e.section, e.field).
					WithFix("give %s a unique id", e.field))
			continue
		}
		ids[e.id] = e
	}
	r.namespaces[namespace] = ids
}

func (r *resolver) crossSection() {
	owners := map[string][]string{}
	for ns, ids := range r.namespaces {
		for id := range ids {
			owners[id] = append(owners[id], ns)
		}
	}
	ids := make([]string, 0, len(owners))
	for id, nss := range owners {
		if len(nss) > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		nss := owners[id]
		sort.Strings(nss)
		e := r.namespaces[nss[1]][id]
		r.addDuplicate(id)
		r.report.Findings = append(r.report.Findings,
			findings.Error(findings.CheckCrossSectionDuplicate, "id %q is used by %s", id, joinAnd(nss)).
				At(e.section, e.field).
				WithFix("ids share one namespace; rename one of the %s entries", joinAnd(nss)))
	}
}

func (r *resolver) workflowSteps() {
	d := r.doc
	if d.Policy == nil || r.failed[skill.SectionPolicy] || r.failed[skill.SectionTools] {
		return
	}
	u := &r.report.Unresolved
	for _, w := range d.Policy.Workflows {
		wid := text(w.ID)
		if wid == "" {
			wid = fmt.Sprintf("workflows[%d]", w.Index)
		}
		broken := false
		for _, s := range w.Steps {
			name, ok := s.Tool.Get()
			if !ok || name == "" {
				continue
			}
			if _, found := r.toolRefs[name]; found {
				continue
			}
			broken = true
			u.Tools = appendUnique(u.Tools, name)
			r.report.Findings = append(r.report.Findings,
				findings.Error(findings.CheckWorkflowToolUnresolved, "workflow %q step %d references unknown tool %q", wid, s.Index, name).
					At(skill.SectionPolicy, fmt.Sprintf("policy.workflows[%d].steps[%d]", w.Index, s.Index)).
					WithFix("declare a tool named %q or fix the step", name))
		}
		if broken {
			u.Workflows = appendUnique(u.Workflows, wid)
		}
	}
}

func (r *resolver) mocks() {
	d := r.doc
	if r.failed[skill.SectionMocks] || r.failed[skill.SectionTools] {
		return
	}
	u := &r.report.Unresolved
	for _, m := range d.Mocks {
		id, ok := m.ToolID.Get()
		if !ok || id == "" {
			continue
		}
		tool, found := r.toolRefs[id]
		if !found {
			u.Mocks = appendUnique(u.Mocks, id)
			r.report.Findings = append(r.report.Findings,
				findings.Error(findings.CheckMockToolUnresolved, "mock references unknown tool %q", id).
					At(skill.SectionMocks, fmt.Sprintf("mocks[%d].toolId", m.Index)).
					WithFix("set toolId to the id or name of a declared tool"))
			continue
		}
		r.mockOutputs(m, tool)
	}
}

// mockOutputs checks canned responses against the tool's declared output schema.
// A schema that does not compile is reported by the schema stage, not here.
func (r *resolver) mockOutputs(m skill.Mock, tool skill.Tool) {
	out, ok := tool.Output.Get()
	if !ok || out.Schema == nil {
		return
	}
	compiled, err := schema.CompileJSONSchema(tool.Key(), out.Schema)
	if err != nil {
		return
	}
	for i, resp := range m.Responses {
		if err := compiled.Validate(resp); err != nil {
			r.report.Findings = append(r.report.Findings,
				findings.Warning(findings.CheckMockOutputMismatch, "mock response %d for tool %q does not match its output schema: %v", i, tool.Key(), err).
					At(skill.SectionMocks, fmt.Sprintf("mocks[%d].responses[%d]", m.Index, i)))
		}
	}
}

func (r *resolver) intents() {
	d := r.doc
	if r.failed[skill.SectionIntents] {
		return
	}
	checkable := !r.failed[skill.SectionPolicy]
	u := &r.report.Unresolved
	for _, in := range d.Intents {
		id := text(in.ID)
		if id == "" {
			id = fmt.Sprintf("intents[%d]", in.Index)
		}
		res := IntentResolution{ID: id, Resolved: true}
		target, ok := in.MapsToWorkflow.Get()
		// An absent or empty reference declares nothing and is trivially satisfied.
		if ok && target != "" {
			res.MapsToWorkflow = target
			if checkable && !r.workflows[target] {
				res.Resolved = false
				u.Intents = appendUnique(u.Intents, id)
				r.report.Findings = append(r.report.Findings,
					findings.Error(findings.CheckIntentWorkflowUnresolved, "intent %q maps to unknown workflow %q", id, target).
						At(skill.SectionIntents, fmt.Sprintf("intents[%d].maps_to_workflow", in.Index)).
						WithFix("declare workflow %q under policy.workflows or remove maps_to_workflow", target))
			}
		}
		r.report.Intents = append(r.report.Intents, res)
	}
}

func (r *resolver) addDuplicate(id string) {
	if r.seen[id] {
		return
	}
	r.seen[id] = true
	r.report.Duplicates = append(r.report.Duplicates, id)
}

func text(t skill.Text) string {
	v, ok := t.Get()
	if !ok {
		return ""
	}
	return v
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func singular(namespace string) string {
	return namespace[:len(namespace)-1]
}

func joinAnd(list []string) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	}
	out := list[0]
	for _, s := range list[1 : len(list)-1] {
		out += ", " + s
	}
	return out + " and " + list[len(list)-1]
}
