// Package completeness scores each skill section against its minimum-viable-content
// threshold and derives the ready-to-export flag.
package completeness

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
)

// MinTextLength is the minimum character count of problem.statement and role.persona.
const MinTextLength = 10

// Sections lists the scored sections in report order.
var Sections = []string{
	skill.SectionProblem,
	skill.SectionScenarios,
	skill.SectionRole,
	skill.SectionIntents,
	skill.SectionTools,
	skill.SectionPolicy,
	skill.SectionEngine,
}

// Report is the completeness outcome of one skill.
type Report struct {
	Sections      map[string]bool `json:"sections"`
	ReadyToExport bool            `json:"ready_to_export"`
	Findings      findings.List   `json:"-"`
}

var predicates = map[string]func(*skill.Document) bool{
	skill.SectionProblem: func(d *skill.Document) bool {
		return d.Problem != nil && long(d.Problem.Statement)
	},
	skill.SectionScenarios: func(d *skill.Document) bool {
		for _, s := range d.Scenarios {
			if skill.NonEmpty(s.Name) && skill.NonEmpty(s.Description) {
				return true
			}
		}
		return false
	},
	skill.SectionRole: func(d *skill.Document) bool {
		return d.Role != nil && long(d.Role.Persona)
	},
	skill.SectionIntents: func(d *skill.Document) bool {
		for _, in := range d.Intents {
			if skill.NonEmpty(in.Name) && skill.NonEmpty(in.Description) {
				return true
			}
		}
		return false
	},
	skill.SectionTools: func(d *skill.Document) bool {
		for _, t := range d.Tools {
			if skill.NonEmpty(t.Name) && skill.NonEmpty(t.Description) && t.Output.IsPresent() {
				return true
			}
		}
		return false
	},
	skill.SectionPolicy: func(d *skill.Document) bool {
		return d.Policy != nil
	},
	skill.SectionEngine: func(d *skill.Document) bool {
		return d.Engine != nil && skill.NonEmpty(d.Engine.Provider) && skill.NonEmpty(d.Engine.Model)
	},
}

var hints = map[string]string{
	skill.SectionProblem:   "write a problem.statement of at least 10 characters",
	skill.SectionScenarios: "add a scenario with a name and a description",
	skill.SectionRole:      "write a role.persona of at least 10 characters",
	skill.SectionIntents:   "add an intent with a name and a description",
	skill.SectionTools:     "add a tool with a name, a description and an output",
	skill.SectionPolicy:    "add a policy section",
	skill.SectionEngine:    "set engine.provider and engine.model",
}

// Check scores doc. A section that failed schema is incomplete regardless of its
// content. prior holds the findings of the schema and reference stages; any error
// among them blocks export. Warnings never do.
func Check(doc *skill.Document, failed map[string]bool, prior findings.List) *Report {
	if doc == nil {
		doc = skill.Decode(nil)
	}
	rep := &Report{Sections: make(map[string]bool, len(Sections)), ReadyToExport: true}
	for _, section := range Sections {
		ok := !failed[section] && predicates[section](doc)
		rep.Sections[section] = ok
		if !ok {
			rep.ReadyToExport = false
			rep.Findings = append(rep.Findings,
				findings.Warning(findings.CompletenessCheck(section), "section %s is incomplete", section).
					At(section, "").
					WithFix("%s", hints[section]))
		}
	}
	if blocking(prior) {
		rep.ReadyToExport = false
	}
	return rep
}

// blocking reports whether prior contains a schema or reference error.
func blocking(prior findings.List) bool {
	for _, f := range prior {
		if !f.IsError() {
			continue
		}
		if strings.HasPrefix(f.Check, findings.SchemaPrefix) || strings.HasPrefix(f.Check, "reference.") {
			return true
		}
	}
	return false
}

// long reports whether t holds at least MinTextLength characters once trimmed
// and NFC-normalised, so composed and decomposed input count the same.
func long(t skill.Text) bool {
	v, ok := t.Get()
	if !ok {
		return false
	}
	return utf8.RuneCountInString(norm.NFC.String(strings.TrimSpace(v))) >= MinTextLength
}
