// Package findings defines the error/warning model shared by every validation stage.
//
// A Finding always carries a stable machine-readable check code (see codes.go) so that
// callers can branch on the failure kind without parsing messages.
package findings

import "fmt"

// Severity is either error (blocks export) or warning (advisory).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one error or warning produced by a validation stage.
type Finding struct {
	Severity  Severity `json:"severity"`
	Check     string   `json:"check"`
	Skill     string   `json:"skill,omitempty"`
	Section   string   `json:"section,omitempty"`
	Field     string   `json:"field,omitempty"`
	Connector string   `json:"connector,omitempty"`
	Message   string   `json:"message"`
	Fix       string   `json:"fix,omitempty"`
}

// Error builds an error-severity finding.
func Error(check, format string, args ...any) Finding {
	return Finding{Severity: SeverityError, Check: check, Message: fmt.Sprintf(format, args...)}
}

// Warning builds a warning-severity finding.
func Warning(check, format string, args ...any) Finding {
	return Finding{Severity: SeverityWarning, Check: check, Message: fmt.Sprintf(format, args...)}
}

// At locates the finding inside a document section.
func (f Finding) At(section, field string) Finding {
	f.Section = section
	f.Field = field
	return f
}

// ForConnector tags the finding with the connector bundle it belongs to.
func (f Finding) ForConnector(id string) Finding {
	f.Connector = id
	return f
}

// ForSkill tags the finding with the skill it belongs to.
func (f Finding) ForSkill(id string) Finding {
	f.Skill = id
	return f
}

// WithFix attaches an actionable remediation hint.
func (f Finding) WithFix(format string, args ...any) Finding {
	f.Fix = fmt.Sprintf(format, args...)
	return f
}

// IsError reports whether the finding blocks export.
func (f Finding) IsError() bool {
	return f.Severity == SeverityError
}

func (f Finding) String() string {
	loc := f.Section
	if f.Field != "" {
		loc = f.Field
	}
	if f.Connector != "" {
		loc = "connector " + f.Connector
	}
	if f.Skill != "" {
		loc = f.Skill + ": " + loc
	}
	return fmt.Sprintf("[%s] %s (%s): %s", f.Severity, f.Check, loc, f.Message)
}

// List is an ordered collection of findings.
type List []Finding

// Errors returns the error-severity findings in order.
func (l List) Errors() List {
	return l.filter(func(f Finding) bool { return f.IsError() })
}

// Warnings returns the warning-severity findings in order.
func (l List) Warnings() List {
	return l.filter(func(f Finding) bool { return !f.IsError() })
}

// HasErrors reports whether any finding is an error.
func (l List) HasErrors() bool {
	for _, f := range l {
		if f.IsError() {
			return true
		}
	}
	return false
}

// CountErrors returns the number of error-severity findings.
func (l List) CountErrors() int {
	n := 0
	for _, f := range l {
		if f.IsError() {
			n++
		}
	}
	return n
}

// ByCheck returns the findings carrying the given check code.
func (l List) ByCheck(check string) List {
	return l.filter(func(f Finding) bool { return f.Check == check })
}

// Tag sets the skill on every finding that does not already carry one.
func (l List) Tag(skill string) List {
	out := make(List, len(l))
	for i, f := range l {
		if f.Skill == "" {
			f.Skill = skill
		}
		out[i] = f
	}
	return out
}

func (l List) filter(keep func(Finding) bool) List {
	out := List{}
	for _, f := range l {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
