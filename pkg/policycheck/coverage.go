// Package policycheck checks that access-control artifacts cover the tools that
// need them. It reasons about the structure of an access policy, in order, but
// never evaluates it: that is the runtime policy engine's job.
package policycheck

import (
	"fmt"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
)

// HighRisk reports whether a classification requires an explicit access rule.
func HighRisk(classification string) bool {
	switch classification {
	case skill.ClassPIIWrite, skill.ClassFinancial, skill.ClassDestructive:
		return true
	}
	return false
}

// HandlesPII reports whether a classification should be covered by a response filter.
func HandlesPII(classification string) bool {
	return classification == skill.ClassPIIRead || classification == skill.ClassPIIWrite
}

// ValidateSecurity checks policy coverage for doc. Checks whose source section is
// in failed are skipped.
func ValidateSecurity(doc *skill.Document, failed map[string]bool) findings.List {
	if doc == nil {
		return nil
	}
	c := &checker{doc: doc, failed: failed, tools: map[string]bool{}}
	for _, t := range doc.Tools {
		if skill.NonEmpty(t.Name) {
			c.tools[t.Name.Value] = true
		}
		if skill.NonEmpty(t.ID) {
			c.tools[t.ID.Value] = true
		}
	}

	if !failed[skill.SectionTools] {
		c.toolCoverage()
	}
	if doc.AccessPolicy != nil && !failed[skill.SectionAccessPolicy] {
		c.rules()
	}
	if !failed[skill.SectionGrantMappings] && !failed[skill.SectionTools] {
		c.grantMappings()
	}
	if !failed[skill.SectionResponseFilters] && !failed[skill.SectionTools] {
		c.filterTargets()
	}
	return c.out
}

type checker struct {
	doc    *skill.Document
	failed map[string]bool
	tools  map[string]bool
	out    findings.List
}

// usesSecurityModel reports whether the skill opted into access control at all.
// Skills that declare none of it are not nagged about missing classifications.
func (c *checker) usesSecurityModel() bool {
	d := c.doc
	if d.AccessPolicy != nil || len(d.GrantMappings) > 0 || len(d.ResponseFilters) > 0 {
		return true
	}
	for _, t := range d.Tools {
		if t.Security != nil {
			return true
		}
	}
	return false
}

func (c *checker) toolCoverage() {
	secured := c.usesSecurityModel()
	rulesUsable := !c.failed[skill.SectionAccessPolicy]
	filtersUsable := !c.failed[skill.SectionResponseFilters]

	for _, t := range c.doc.Tools {
		class := t.Classification()
		field := fmt.Sprintf("tools[%d].security.classification", t.Index)

		if class == "" {
			if secured {
				c.out = append(c.out,
					findings.Warning(findings.CheckClassificationMissing, "tool %q has no security classification", t.Key()).
						At(skill.SectionTools, field).
						WithFix("set security.classification to one of public, pii_read, pii_write, financial, destructive"))
			}
			continue
		}

		if HighRisk(class) && rulesUsable {
			rule, ok := c.firstMatch(t)
			switch {
			case !ok:
				c.out = append(c.out,
					findings.Error(findings.CheckPolicyMissing, "%s tool %q is not covered by any access_policy rule", class, t.Key()).
						At(skill.SectionTools, field).
						WithFix("add an access_policy rule with tools: [%s]", t.Key()))
			case rule.Effect.Value == skill.EffectAllow && !rule.Conditional():
				c.out = append(c.out,
					findings.Warning(findings.CheckUnconditionalAllow, "%s tool %q is first matched by access_policy.rules[%d], an unconditional allow", class, t.Key(), rule.Index).
						At(skill.SectionAccessPolicy, fmt.Sprintf("access_policy.rules[%d]", rule.Index)).
						WithFix("gate the rule with when or require, or use effect deny/constrain"))
			}
		}

		if HandlesPII(class) && filtersUsable && !c.filtered(t) {
			c.out = append(c.out,
				findings.Warning(findings.CheckResponseFilterMissing, "%s tool %q has no response filter", class, t.Key()).
					At(skill.SectionTools, field).
					WithFix("add a response_filters entry covering %s", t.Key()))
		}
	}
}

// firstMatch returns the rule a first-match-wins engine would apply to t.
func (c *checker) firstMatch(t skill.Tool) (skill.Rule, bool) {
	if c.doc.AccessPolicy == nil {
		return skill.Rule{}, false
	}
	for _, r := range c.doc.AccessPolicy.Rules {
		if r.Tools.Matches(t) {
			return r, true
		}
	}
	return skill.Rule{}, false
}

func (c *checker) filtered(t skill.Tool) bool {
	for _, f := range c.doc.ResponseFilters {
		if f.Applies(t) {
			return true
		}
	}
	return false
}
