package findings

import (
	"fmt"
	"sort"
	"strings"
)

// Check codes are stable identifiers. They MUST NOT change between releases;
// tests, UIs and CI gates match on them.
const (
	// --- Schema (dynamic: schema.<section>.<field>) ---
	SchemaPrefix = "schema."

	// --- Reference resolution ---
	CheckDuplicateID              = "reference.duplicate_id"
	CheckCrossSectionDuplicate    = "reference.cross_section_duplicate"
	CheckWorkflowToolUnresolved   = "reference.workflow_tool_unresolved"
	CheckMockToolUnresolved       = "reference.mock_tool_unresolved"
	CheckIntentWorkflowUnresolved = "reference.intent_workflow_unresolved"
	CheckMockOutputMismatch       = "reference.mock_output_mismatch"

	// --- Completeness (dynamic: completeness.<section>) ---
	CompletenessPrefix = "completeness."

	// --- Security / policy coverage ---
	CheckPolicyMissing           = "security.policy_missing"
	CheckResponseFilterMissing   = "security.response_filter_missing"
	CheckRuleShadowed            = "security.rule_shadowed"
	CheckUnconditionalAllow      = "security.policy_unconditional_allow"
	CheckRuleUnknownTool         = "security.rule_unknown_tool"
	CheckRuleConditionInvalid    = "security.rule_condition_invalid"
	CheckGrantNotIssued          = "security.grant_not_issued"
	CheckGrantMappingUnknownTool = "security.grant_mapping_unknown_tool"
	CheckFilterUnknownTool       = "security.filter_unknown_tool"
	CheckClassificationMissing   = "security.classification_missing"

	// --- Connector static analysis ---
	CheckConnectorMissingPackageJSON  = "connector_missing_package_json"
	CheckConnectorMissingDependencies = "connector_missing_dependencies"
	CheckConnectorDeprecatedPath      = "connector_deprecated_path"
	CheckConnectorPathMismatch        = "connector_path_mismatch"
	CheckConnectorInvalidDepVersion   = "connector_invalid_dependency_version"
	CheckConnectorEntrypointMissing   = "connector_entrypoint_missing"

	// --- Solution ---
	CheckSolutionNoSkills              = "solution.no_skills"
	CheckSolutionDuplicateSkillID      = "solution.duplicate_skill_id"
	CheckSolutionHandoffUnknownSkill   = "solution.handoff_unknown_skill"
	CheckSolutionHandoffGrantUndecl    = "solution.handoff_grant_undeclared"
	CheckSolutionRoutingUnknownSkill   = "solution.routing_unknown_skill"
	CheckSolutionRoutingGrantUndecl    = "solution.routing_grant_undeclared"
	CheckSolutionGrantUnknownSkill     = "solution.grant_unknown_skill"
	CheckSolutionDuplicateConnectorID  = "solution.duplicate_connector_id"
	CheckSolutionSkillUnknownConnector = "solution.skill_unknown_connector"
)

var (
	registered = map[string]bool{}
	families   = []string{SchemaPrefix, CompletenessPrefix}
)

func init() {
	for _, code := range []string{
		CheckDuplicateID,
		CheckCrossSectionDuplicate,
		CheckWorkflowToolUnresolved,
		CheckMockToolUnresolved,
		CheckIntentWorkflowUnresolved,
		CheckMockOutputMismatch,
		CheckPolicyMissing,
		CheckResponseFilterMissing,
		CheckRuleShadowed,
		CheckUnconditionalAllow,
		CheckRuleUnknownTool,
		CheckRuleConditionInvalid,
		CheckGrantNotIssued,
		CheckGrantMappingUnknownTool,
		CheckFilterUnknownTool,
		CheckClassificationMissing,
		CheckConnectorMissingPackageJSON,
		CheckConnectorMissingDependencies,
		CheckConnectorDeprecatedPath,
		CheckConnectorPathMismatch,
		CheckConnectorInvalidDepVersion,
		CheckConnectorEntrypointMissing,
		CheckSolutionNoSkills,
		CheckSolutionDuplicateSkillID,
		CheckSolutionHandoffUnknownSkill,
		CheckSolutionHandoffGrantUndecl,
		CheckSolutionRoutingUnknownSkill,
		CheckSolutionRoutingGrantUndecl,
		CheckSolutionGrantUnknownSkill,
		CheckSolutionDuplicateConnectorID,
		CheckSolutionSkillUnknownConnector,
	} {
		MustRegister(code)
	}
}

// MustRegister adds a check code to the registry. A collision is a programming
// defect, not a user-facing error, so it panics.
func MustRegister(code string) {
	if code == "" {
		panic("findings: empty check code")
	}
	if registered[code] {
		panic(fmt.Sprintf("findings: check code %q registered twice", code))
	}
	for _, fam := range families {
		if strings.HasPrefix(code, fam) {
			panic(fmt.Sprintf("findings: check code %q collides with family %q", code, fam))
		}
	}
	registered[code] = true
}

// Known reports whether code is a registered code or belongs to a dynamic family.
func Known(code string) bool {
	if registered[code] {
		return true
	}
	for _, fam := range families {
		if strings.HasPrefix(code, fam) && len(code) > len(fam) {
			return true
		}
	}
	return false
}

// SchemaCheck returns the dynamic schema code for a section field path,
// e.g. SchemaCheck("tools", "security.classification").
func SchemaCheck(section, field string) string {
	if field == "" {
		return SchemaPrefix + section
	}
	return SchemaPrefix + section + "." + field
}

// CompletenessCheck returns the dynamic completeness code for a section.
func CompletenessCheck(section string) string {
	return CompletenessPrefix + section
}

// AllCheckCodes returns every registered static code, sorted, followed by the
// dynamic family patterns.
func AllCheckCodes() []string {
	codes := make([]string, 0, len(registered)+len(families))
	for c := range registered {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	for _, fam := range families {
		codes = append(codes, fam+"*")
	}
	return codes
}
