package validation

import (
	"fmt"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
)

// solutionChecker checks the wiring between the skills of a solution: handoffs,
// routing, grants and connector references.
type solutionChecker struct {
	sol    *skill.Solution
	keys   []string
	cctx   *connector.Context
	failed map[string]bool

	skills   map[string]bool
	declared map[string]bool
	out      findings.List
}

// checkSolution runs the solution-level checks. Envelope sections listed in
// failed are skipped.
func checkSolution(sol *skill.Solution, keys []string, cctx *connector.Context, failed map[string]bool) findings.List {
	c := &solutionChecker{
		sol:      sol,
		keys:     keys,
		cctx:     cctx,
		failed:   failed,
		skills:   map[string]bool{},
		declared: map[string]bool{},
	}
	c.skillIDs()
	c.declaredGrants()
	if !failed["grants"] {
		c.grants()
	}
	if !failed["handoffs"] {
		c.handoffs()
	}
	if !failed["routing"] {
		c.routing()
	}
	c.connectorRefs()
	c.out = append(c.out, duplicateConnectors(cctx)...)
	return c.out
}

func (c *solutionChecker) skillIDs() {
	if len(c.sol.Skills) == 0 && !c.failed["skills"] {
		c.out = append(c.out, findings.Warning(findings.CheckSolutionNoSkills, "solution declares no skills").
			At("skills", "skills").
			WithFix("add at least one skill to the solution"))
		return
	}
	first := map[string]int{}
	for _, d := range c.sol.Skills {
		id, ok := d.ID.Get()
		if !ok || id == "" {
			continue
		}
		c.skills[id] = true
		if prev, dup := first[id]; dup {
			c.out = append(c.out, findings.Error(findings.CheckSolutionDuplicateSkillID,
				"skill id %q is used by skills[%d] and skills[%d]", id, prev, d.Index).
				At("skills", fmt.Sprintf("skills[%d].id", d.Index)).
				WithFix("give every skill in the solution a unique id"))
			continue
		}
		first[id] = d.Index
	}
}

// declaredGrants collects every grant key the solution or one of its skills issues.
func (c *solutionChecker) declaredGrants() {
	for _, g := range c.sol.Grants {
		if key, ok := g.Key.Get(); ok && key != "" {
			c.declared[key] = true
		}
	}
	for _, d := range c.sol.Skills {
		for _, m := range d.GrantMappings {
			for _, key := range m.Grants {
				c.declared[key] = true
			}
		}
	}
}

func (c *solutionChecker) grants() {
	for _, g := range c.sol.Grants {
		key := skill.Or(g.Key, "")
		c.grantSkills(g, key, "issued_by", g.IssuedBy)
		c.grantSkills(g, key, "consumed_by", g.ConsumedBy)
	}
}

func (c *solutionChecker) grantSkills(g skill.Grant, key, field string, names []string) {
	for _, name := range names {
		if c.skills[name] {
			continue
		}
		c.out = append(c.out, findings.Warning(findings.CheckSolutionGrantUnknownSkill,
			"grant %q lists unknown skill %q in %s", key, name, field).
			At("grants", fmt.Sprintf("grants[%d].%s", g.Index, field)))
	}
}

func (c *solutionChecker) handoffs() {
	for _, h := range c.sol.Handoffs {
		id := skill.Or(h.ID, fmt.Sprintf("handoffs[%d]", h.Index))
		for _, end := range []struct {
			field string
			ref   skill.Text
		}{{"from", h.From}, {"to", h.To}} {
			name, ok := end.ref.Get()
			if !ok || name == "" || c.skills[name] {
				continue
			}
			c.out = append(c.out, findings.Error(findings.CheckSolutionHandoffUnknownSkill,
				"handoff %s references unknown skill %q in %s", id, name, end.field).
				At("handoffs", fmt.Sprintf("handoffs[%d].%s", h.Index, end.field)).
				WithFix("point the handoff at one of the solution's skill ids"))
		}
		for _, grant := range h.GrantsPassed {
			if c.declared[grant] {
				continue
			}
			c.out = append(c.out, findings.Warning(findings.CheckSolutionHandoffGrantUndecl,
				"handoff %s passes grant %q that no skill declares", id, grant).
				At("handoffs", fmt.Sprintf("handoffs[%d].grants_passed", h.Index)))
		}
	}
}

func (c *solutionChecker) routing() {
	for _, ch := range c.sol.Routing {
		base := "routing." + ch.Name
		if name, ok := ch.DefaultSkill.Get(); ok && name != "" && !c.skills[name] {
			c.out = append(c.out, findings.Error(findings.CheckSolutionRoutingUnknownSkill,
				"channel %s defaults to unknown skill %q", ch.Name, name).
				At("routing", base+".default_skill"))
		}
		for _, r := range ch.Rules {
			field := fmt.Sprintf("%s.rules[%d]", base, r.Index)
			if name, ok := r.Skill.Get(); ok && name != "" && !c.skills[name] {
				c.out = append(c.out, findings.Error(findings.CheckSolutionRoutingUnknownSkill,
					"channel %s routes to unknown skill %q", ch.Name, name).
					At("routing", field+".skill"))
			}
			for _, grant := range r.RequiresGrants {
				if c.declared[grant] {
					continue
				}
				c.out = append(c.out, findings.Error(findings.CheckSolutionRoutingGrantUndecl,
					"channel %s requires grant %q that no skill declares", ch.Name, grant).
					At("routing", field+".requires_grants").
					WithFix("declare %q under grants with the skill that issues it", grant))
			}
		}
	}
}

// connectorRefs checks that every connector a skill names is registered. Without
// a context there is nothing to check against.
func (c *solutionChecker) connectorRefs() {
	if c.cctx == nil {
		return
	}
	registered := map[string]bool{}
	for _, id := range c.cctx.IDs() {
		registered[id] = true
	}
	for i, d := range c.sol.Skills {
		for _, id := range d.Connectors {
			if registered[id] {
				continue
			}
			c.out = append(c.out, findings.Warning(findings.CheckSolutionSkillUnknownConnector,
				"skill uses connector %q which is not registered", id).
				At(skill.SectionConnectors, "connectors").
				ForSkill(c.keys[i]))
		}
	}
}

// duplicateConnectors reports connector ids registered more than once.
func duplicateConnectors(cctx *connector.Context) findings.List {
	if cctx == nil {
		return nil
	}
	var out findings.List
	first := map[string]int{}
	for _, cfg := range cctx.Connectors {
		if cfg.ID == "" {
			continue
		}
		if prev, dup := first[cfg.ID]; dup {
			out = append(out, findings.Error(findings.CheckSolutionDuplicateConnectorID,
				"connector id %q is registered by connectors[%d] and connectors[%d]", cfg.ID, prev, cfg.Index).
				At(connector.Section, fmt.Sprintf("connectors[%d].id", cfg.Index)).
				ForConnector(cfg.ID))
			continue
		}
		first[cfg.ID] = cfg.Index
	}
	return out
}
