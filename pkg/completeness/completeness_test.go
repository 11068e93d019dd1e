package completeness_test

import (
	"strings"
	"testing"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/completeness"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func complete() map[string]any {
	return map[string]any{
		"problem":   map[string]any{"statement": "Patients cannot book after hours."},
		"scenarios": []any{map[string]any{"name": "Late booking", "description": "Book at 11pm"}},
		"role":      map[string]any{"persona": "A friendly receptionist"},
		"intents":   []any{map[string]any{"name": "Book", "description": "Wants a slot"}},
		"tools": []any{map[string]any{
			"name":        "find_slots",
			"description": "Find open slots",
			"output":      map[string]any{"type": "object"},
		}},
		"policy": map[string]any{},
		"engine": map[string]any{"provider": "openai", "model": "gpt-4o"},
	}
}

func TestCheck_CompleteDocumentIsReady(t *testing.T) {
	rep := completeness.Check(skill.Decode(complete()), nil, nil)
	assert.True(t, rep.ReadyToExport)
	assert.Empty(t, rep.Findings)
	assert.Len(t, rep.Sections, len(completeness.Sections))
	for _, s := range completeness.Sections {
		assert.True(t, rep.Sections[s], s)
	}
}

func TestCheck_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		section string
	}{
		{"short statement", func(m map[string]any) { m["problem"] = map[string]any{"statement": "  too short  "} }, "problem"},
		{"scenario without description", func(m map[string]any) { m["scenarios"] = []any{map[string]any{"name": "x"}} }, "scenarios"},
		{"short persona", func(m map[string]any) { m["role"] = map[string]any{"persona": "clerk"} }, "role"},
		{"no intents", func(m map[string]any) { delete(m, "intents") }, "intents"},
		{"tool without output", func(m map[string]any) {
			m["tools"] = []any{map[string]any{"name": "a", "description": "b"}}
		}, "tools"},
		{"no policy", func(m map[string]any) { delete(m, "policy") }, "policy"},
		{"engine without model", func(m map[string]any) { m["engine"] = map[string]any{"provider": "openai"} }, "engine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := complete()
			tt.mutate(raw)
			rep := completeness.Check(skill.Decode(raw), nil, nil)

			assert.False(t, rep.ReadyToExport)
			assert.False(t, rep.Sections[tt.section])
			require.Len(t, rep.Findings, 1)
			assert.Equal(t, "completeness."+tt.section, rep.Findings[0].Check)
			assert.False(t, rep.Findings[0].IsError())
		})
	}
}

func TestCheck_CountsComposedCharacters(t *testing.T) {
	raw := complete()
	// Decomposed e + combining acute accent: two runes before NFC, one after.
	raw["role"] = map[string]any{"persona": strings.Repeat("e\u0301", 10)}
	rep := completeness.Check(skill.Decode(raw), nil, nil)
	assert.True(t, rep.Sections["role"])

	raw["role"] = map[string]any{"persona": strings.Repeat("e\u0301", 5)}
	rep = completeness.Check(skill.Decode(raw), nil, nil)
	assert.False(t, rep.Sections["role"], "ten runes but five characters")
}

func TestCheck_FailedSectionIsIncomplete(t *testing.T) {
	rep := completeness.Check(skill.Decode(complete()), map[string]bool{"tools": true}, nil)
	assert.False(t, rep.Sections["tools"])
	assert.False(t, rep.ReadyToExport)
}

func TestCheck_PriorErrorsBlockExport(t *testing.T) {
	doc := skill.Decode(complete())

	rep := completeness.Check(doc, nil, findings.List{
		findings.Warning(findings.CheckMockOutputMismatch, "advisory"),
		findings.Error(findings.CheckPolicyMissing, "not a blocking stage"),
	})
	assert.True(t, rep.ReadyToExport, "warnings and later-stage errors do not block")

	rep = completeness.Check(doc, nil, findings.List{findings.Error(findings.CheckMockToolUnresolved, "x")})
	assert.False(t, rep.ReadyToExport)

	rep = completeness.Check(doc, nil, findings.List{findings.Error("schema.engine.model", "x")})
	assert.False(t, rep.ReadyToExport)
}

func TestCheck_EmptyDocumentDegradesToIncomplete(t *testing.T) {
	rep := completeness.Check(nil, nil, nil)
	assert.False(t, rep.ReadyToExport)
	assert.Len(t, rep.Findings, len(completeness.Sections))
}
