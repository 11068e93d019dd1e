package skill_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clinicYAML = `
id: clinic-scheduler
name: Clinic Scheduler
problem:
  statement: Patients cannot book appointments outside office hours.
role:
  persona: A friendly receptionist for a dental clinic.
intents:
  - id: book
    name: Book appointment
    description: Patient wants a slot
    maps_to_workflow: booking_flow
  - id: faq
    name: FAQ
    description: General questions
tools:
  - id: t1
    name: find_slots
    description: Find open slots
    output: {type: object}
  - name: create_booking
    description: Create booking
    security: {classification: pii_write}
policy:
  workflows:
    - id: booking_flow
      steps: [find_slots, {tool: create_booking}, 42]
access_policy:
  rules:
    - tools: "*"
      effect: deny
    - tools: [create_booking]
      when: "caller.verified == true"
      require: customer_id
      effect: allow
response_filters:
  - id: strip
    tools: all
mocks:
  - toolId: find_slots
    responses: [{slots: 3}]
`

func TestParseObject_YAMLNormalizesToJSONTypes(t *testing.T) {
	raw, err := skill.ParseObject([]byte(clinicYAML))
	require.NoError(t, err)

	mocks := raw["mocks"].([]any)
	resp := mocks[0].(map[string]any)["responses"].([]any)[0].(map[string]any)
	assert.IsType(t, float64(0), resp["slots"], "numbers must decode as float64")
}

func TestParseObject_RejectsNonObject(t *testing.T) {
	_, err := skill.ParseObject([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top level must be an object")
}

func TestDecode_Clinic(t *testing.T) {
	raw, err := skill.ParseObject([]byte(clinicYAML))
	require.NoError(t, err)
	doc := skill.Decode(raw)

	assert.Equal(t, "clinic-scheduler", doc.ID.Value)
	require.NotNil(t, doc.Problem)
	assert.True(t, skill.NonEmpty(doc.Problem.Statement))

	require.Len(t, doc.Intents, 2)
	assert.True(t, doc.Intents[0].MapsToWorkflow.IsPresent())
	assert.True(t, doc.Intents[1].MapsToWorkflow.IsAbsent())

	require.Len(t, doc.Tools, 2)
	assert.Equal(t, "t1", doc.Tools[0].Key())
	assert.Equal(t, "create_booking", doc.Tools[1].Key())
	assert.True(t, doc.Tools[0].Output.IsPresent())
	assert.True(t, doc.Tools[1].Output.IsAbsent())
	assert.Equal(t, skill.ClassPIIWrite, doc.Tools[1].Classification())

	require.NotNil(t, doc.Policy)
	steps := doc.Policy.Workflows[0].Steps
	require.Len(t, steps, 3)
	assert.Equal(t, "find_slots", steps[0].Tool.Value)
	assert.Equal(t, "create_booking", steps[1].Tool.Value)
	assert.Equal(t, skill.Invalid, steps[2].Tool.Presence)

	require.NotNil(t, doc.AccessPolicy)
	rules := doc.AccessPolicy.Rules
	assert.True(t, rules[0].Tools.All)
	assert.False(t, rules[0].Conditional())
	assert.True(t, rules[1].Conditional())
	assert.Equal(t, []string{"customer_id"}, rules[1].Require)
	assert.True(t, rules[1].Tools.Matches(doc.Tools[1]))
	assert.False(t, rules[1].Tools.Matches(doc.Tools[0]))

	require.Len(t, doc.ResponseFilters, 1)
	assert.True(t, doc.ResponseFilters[0].AllTools)

	require.Len(t, doc.Mocks, 1)
	assert.Equal(t, "find_slots", doc.Mocks[0].ToolID.Value)
}

func TestDecode_AbsentVersusInvalid(t *testing.T) {
	doc := skill.Decode(map[string]any{
		"problem": "not an object",
		"tools":   []any{map[string]any{"name": 7, "output": "text"}},
	})

	assert.Equal(t, skill.Invalid, doc.Section(skill.SectionProblem))
	assert.Nil(t, doc.Problem)
	assert.Equal(t, skill.Absent, doc.Section(skill.SectionRole))
	assert.Equal(t, skill.Present, doc.Section(skill.SectionTools))
	assert.Equal(t, skill.Invalid, doc.Tools[0].Name.Presence)
	assert.Equal(t, skill.Invalid, doc.Tools[0].Output.Presence)
}

func TestDecode_NilIsEmptyDocument(t *testing.T) {
	doc := skill.Decode(nil)
	require.NotNil(t, doc)
	assert.Empty(t, doc.Tools)
	assert.Equal(t, skill.Absent, doc.Section(skill.SectionTools))
}

func TestDecodeSolution(t *testing.T) {
	raw, err := skill.ParseObject([]byte(`
id: clinic
skills:
  - id: front-desk
  - "not a skill"
  - id: billing
grants:
  - key: customer_id
    issued_by: front-desk
    consumed_by: [billing]
handoffs:
  - from: front-desk
    to: billing
    grants_passed: [customer_id]
routing:
  whatsapp:
    default_skill: front-desk
  email:
    rules:
      - skill: billing
        requires_grants: [customer_id]
`))
	require.NoError(t, err)
	sol := skill.DecodeSolution(raw)

	require.Len(t, sol.Skills, 2)
	assert.Equal(t, 0, sol.Skills[0].Index)
	assert.Equal(t, 2, sol.Skills[1].Index, "index must point at the raw position")

	require.Len(t, sol.Grants, 1)
	assert.Equal(t, []string{"front-desk"}, sol.Grants[0].IssuedBy)

	require.Len(t, sol.Routing, 2)
	assert.Equal(t, "email", sol.Routing[0].Name, "channels are sorted")
	assert.Equal(t, []string{"customer_id"}, sol.Routing[0].Rules[0].RequiresGrants)
	assert.Equal(t, "front-desk", sol.Routing[1].DefaultSkill.Value)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skill.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"s1","engine":{"provider":"openai","model":"gpt"}}`), 0600))

	doc, err := skill.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s1", doc.ID.Value)
	assert.Equal(t, "openai", doc.Engine.Provider.Value)

	_, err = skill.LoadFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
