package policycheck

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
)

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

// conditionEnv declares the variables a rule condition may reference at runtime.
func conditionEnv() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.Variable("caller", cel.DynType),
			cel.Variable("grants", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("args", cel.DynType),
		)
		if envErr != nil {
			envErr = fmt.Errorf("failed to create CEL environment: %w", envErr)
		}
	})
	return env, envErr
}

// CompileCondition type-checks a rule condition without evaluating it.
func CompileCondition(expr string) error {
	e, err := conditionEnv()
	if err != nil {
		return err
	}
	ast, issues := e.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return issues.Err()
	}
	if out := ast.OutputType(); !out.IsAssignableType(cel.BoolType) {
		return fmt.Errorf("condition must evaluate to bool, got %s", out)
	}
	return nil
}

func (c *checker) rules() {
	issued := map[string]bool{}
	for _, gm := range c.doc.GrantMappings {
		for _, g := range gm.Grants {
			issued[g] = true
		}
	}
	checkTools := !c.failed[skill.SectionTools]
	checkGrants := !c.failed[skill.SectionGrantMappings]

	shadowedBy := -1
	for _, r := range c.doc.AccessPolicy.Rules {
		field := fmt.Sprintf("access_policy.rules[%d]", r.Index)

		if shadowedBy >= 0 {
			c.out = append(c.out,
				findings.Warning(findings.CheckRuleShadowed, "rule %d is never reached: rule %d matches every tool unconditionally", r.Index, shadowedBy).
					At(skill.SectionAccessPolicy, field).
					WithFix("move the catch-all rule to the end of access_policy.rules"))
		} else if r.Tools.All && !r.Conditional() {
			shadowedBy = r.Index
		}

		if checkTools {
			for _, name := range r.Tools.Names {
				if name == "*" || c.tools[name] {
					continue
				}
				c.out = append(c.out,
					findings.Warning(findings.CheckRuleUnknownTool, "rule %d names unknown tool %q", r.Index, name).
						At(skill.SectionAccessPolicy, field+".tools"))
			}
		}

		if expr, ok := r.When.Value.(string); ok && r.When.IsPresent() {
			if err := CompileCondition(expr); err != nil {
				c.out = append(c.out,
					findings.Error(findings.CheckRuleConditionInvalid, "rule %d condition does not compile: %v", r.Index, err).
						At(skill.SectionAccessPolicy, field+".when").
						WithFix("write when as a boolean CEL expression over caller, grants and args"))
			}
		}

		if checkGrants {
			for _, key := range r.Require {
				if issued[key] {
					continue
				}
				c.out = append(c.out,
					findings.Warning(findings.CheckGrantNotIssued, "rule %d requires grant %q, which no grant mapping issues", r.Index, key).
						At(skill.SectionAccessPolicy, field+".require").
						WithFix("add a grant_mappings entry issuing %q", key))
			}
		}
	}
}

func (c *checker) grantMappings() {
	for _, gm := range c.doc.GrantMappings {
		name, ok := gm.Tool.Get()
		if !ok || name == "" || c.tools[name] {
			continue
		}
		c.out = append(c.out,
			findings.Error(findings.CheckGrantMappingUnknownTool, "grant mapping %d issues grants after unknown tool %q", gm.Index, name).
				At(skill.SectionGrantMappings, fmt.Sprintf("grant_mappings[%d].tool", gm.Index)))
	}
}

func (c *checker) filterTargets() {
	for _, f := range c.doc.ResponseFilters {
		if f.AllTools {
			continue
		}
		for _, name := range f.Tools {
			if c.tools[name] {
				continue
			}
			c.out = append(c.out,
				findings.Warning(findings.CheckFilterUnknownTool, "response filter %d names unknown tool %q", f.Index, name).
					At(skill.SectionResponseFilters, fmt.Sprintf("response_filters[%d].tools", f.Index)))
		}
	}
}
