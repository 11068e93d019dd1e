package skill

// Decode builds a Document from a raw JSON/YAML object. It never fails; values of
// the wrong type are recorded as Invalid and left for the schema stage to report.
func Decode(raw map[string]any) *Document {
	if raw == nil {
		raw = map[string]any{}
	}
	d := &Document{
		ID:       text(raw, "id"),
		Name:     text(raw, "name"),
		Raw:      raw,
		sections: map[string]Presence{},
	}

	if m, p := object(raw, SectionProblem); d.mark(SectionProblem, p) {
		d.Problem = &Problem{Statement: text(m, "statement"), Context: text(m, "context")}
	}
	if items, p := list(raw, SectionScenarios); d.mark(SectionScenarios, p) {
		eachObject(items, func(i int, m map[string]any) {
			d.Scenarios = append(d.Scenarios, Scenario{
				Index:       i,
				ID:          text(m, "id"),
				Name:        text(m, "name"),
				Description: text(m, "description"),
			})
		})
	}
	if m, p := object(raw, SectionRole); d.mark(SectionRole, p) {
		d.Role = &Role{Name: text(m, "name"), Persona: text(m, "persona")}
	}
	if items, p := list(raw, SectionIntents); d.mark(SectionIntents, p) {
		eachObject(items, func(i int, m map[string]any) {
			d.Intents = append(d.Intents, Intent{
				Index:          i,
				ID:             text(m, "id"),
				Name:           text(m, "name"),
				Description:    text(m, "description"),
				MapsToWorkflow: text(m, "maps_to_workflow"),
			})
		})
	}
	if items, p := list(raw, SectionTools); d.mark(SectionTools, p) {
		eachObject(items, func(i int, m map[string]any) {
			d.Tools = append(d.Tools, decodeTool(i, m))
		})
	}
	if m, p := object(raw, SectionPolicy); d.mark(SectionPolicy, p) {
		d.Policy = decodePolicy(m)
	}
	if m, p := object(raw, SectionEngine); d.mark(SectionEngine, p) {
		d.Engine = &Engine{Provider: text(m, "provider"), Model: text(m, "model")}
	}
	if items, p := list(raw, SectionMocks); d.mark(SectionMocks, p) {
		eachObject(items, func(i int, m map[string]any) {
			responses, _ := list(m, "responses")
			d.Mocks = append(d.Mocks, Mock{Index: i, ToolID: text(m, "toolId"), Responses: responses})
		})
	}
	if m, p := object(raw, SectionMetadata); d.mark(SectionMetadata, p) {
		d.Metadata = &Metadata{Version: text(m, "version"), Author: text(m, "author")}
	}
	if m, p := object(raw, SectionAccessPolicy); d.mark(SectionAccessPolicy, p) {
		d.AccessPolicy = decodeAccessPolicy(m)
	}
	if items, p := list(raw, SectionGrantMappings); d.mark(SectionGrantMappings, p) {
		eachObject(items, func(i int, m map[string]any) {
			gm := GrantMapping{Index: i, Tool: text(m, "tool")}
			grants, _ := list(m, "grants")
			eachObject(grants, func(_ int, g map[string]any) {
				if key := text(g, "key"); NonEmpty(key) {
					gm.Grants = append(gm.Grants, key.Value)
				}
			})
			d.GrantMappings = append(d.GrantMappings, gm)
		})
	}
	if items, p := list(raw, SectionResponseFilters); d.mark(SectionResponseFilters, p) {
		eachObject(items, func(i int, m map[string]any) {
			f := ResponseFilter{Index: i, ID: text(m, "id")}
			// An absent or empty tools list, "*" or "all" means every tool.
			switch sel := selector(m, "tools"); sel.Presence {
			case Absent:
				f.AllTools = true
			case Present:
				f.AllTools = sel.All || len(sel.Names) == 0 || contains(sel.Names, "all")
				f.Tools = sel.Names
			}
			d.ResponseFilters = append(d.ResponseFilters, f)
		})
	}
	if _, p := list(raw, SectionConnectors); d.mark(SectionConnectors, p) {
		d.Connectors = stringList(raw, SectionConnectors)
	}
	return d
}

func (d *Document) mark(section string, p Presence) bool {
	if p != Absent {
		d.sections[section] = p
	}
	return p == Present
}

func decodeTool(i int, m map[string]any) Tool {
	t := Tool{
		Index:       i,
		ID:          text(m, "id"),
		Name:        text(m, "name"),
		Description: text(m, "description"),
	}
	params, _ := list(m, "parameters")
	eachObject(params, func(_ int, pm map[string]any) {
		t.Parameters = append(t.Parameters, Parameter{
			Name:     text(pm, "name"),
			Type:     text(pm, "type"),
			Required: boolean(pm, "required"),
		})
	})
	if om, p := object(m, "output"); p == Present {
		out := Output{Type: text(om, "type"), Description: text(om, "description")}
		out.Schema, _ = object(om, "schema")
		t.Output = Set(out)
	} else {
		t.Output.Presence = p
	}
	if sm, p := object(m, "security"); p == Present {
		t.Security = &ToolSecurity{
			Classification: text(sm, "classification"),
			Risk:           text(sm, "risk"),
		}
	}
	return t
}

func decodePolicy(m map[string]any) *Policy {
	pol := &Policy{}
	guardrails, _ := list(m, "guardrails")
	eachObject(guardrails, func(i int, g map[string]any) {
		pol.Guardrails = append(pol.Guardrails, Guardrail{
			Index: i,
			ID:    text(g, "id"),
			Type:  text(g, "type"),
			Rule:  text(g, "rule"),
		})
	})
	workflows, _ := list(m, "workflows")
	eachObject(workflows, func(i int, w map[string]any) {
		wf := Workflow{Index: i, ID: text(w, "id"), Name: text(w, "name")}
		steps, _ := list(w, "steps")
		for si, s := range steps {
			switch v := s.(type) {
			case string:
				wf.Steps = append(wf.Steps, Step{Index: si, Tool: Set(v)})
			case map[string]any:
				wf.Steps = append(wf.Steps, Step{Index: si, Tool: text(v, "tool")})
			default:
				wf.Steps = append(wf.Steps, Step{Index: si, Tool: Text{Presence: Invalid}})
			}
		}
		pol.Workflows = append(pol.Workflows, wf)
	})
	return pol
}

func decodeAccessPolicy(m map[string]any) *AccessPolicy {
	ap := &AccessPolicy{}
	rules, _ := list(m, "rules")
	eachObject(rules, func(i int, r map[string]any) {
		rule := Rule{
			Index:  i,
			Tools:  selector(r, "tools"),
			Effect: text(r, "effect"),
		}
		if w, ok := r["when"]; ok && w != nil {
			switch w.(type) {
			case string, map[string]any:
				rule.When = Set(w)
			default:
				rule.When = Field[any]{Value: w, Presence: Invalid}
			}
		}
		rule.Require = stringList(r, "require")
		ap.Rules = append(ap.Rules, rule)
	})
	return ap
}

// --- raw accessors ---

func text(m map[string]any, key string) Text {
	v, ok := m[key]
	if !ok || v == nil {
		return Text{}
	}
	if s, ok := v.(string); ok {
		return Set(s)
	}
	return Text{Presence: Invalid}
}

func boolean(m map[string]any, key string) Field[bool] {
	v, ok := m[key]
	if !ok || v == nil {
		return Field[bool]{}
	}
	if b, ok := v.(bool); ok {
		return Set(b)
	}
	return Field[bool]{Presence: Invalid}
}

func object(m map[string]any, key string) (map[string]any, Presence) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, Absent
	}
	if o, ok := v.(map[string]any); ok {
		return o, Present
	}
	return nil, Invalid
}

func list(m map[string]any, key string) ([]any, Presence) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, Absent
	}
	if l, ok := v.([]any); ok {
		return l, Present
	}
	return nil, Invalid
}

// stringList accepts a single string or a list of strings; non-string items are dropped.
func stringList(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func selector(m map[string]any, key string) ToolSelector {
	v, ok := m[key]
	if !ok || v == nil {
		return ToolSelector{}
	}
	switch t := v.(type) {
	case string:
		if t == "*" {
			return ToolSelector{All: true, Presence: Present}
		}
		return ToolSelector{Names: []string{t}, Presence: Present}
	case []any:
		sel := ToolSelector{Presence: Present}
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s == "*" {
				sel.All = true
			}
			sel.Names = append(sel.Names, s)
		}
		return sel
	}
	return ToolSelector{Presence: Invalid}
}

func eachObject(items []any, fn func(i int, m map[string]any)) {
	for i, item := range items {
		if m, ok := item.(map[string]any); ok {
			fn(i, m)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
