//go:build property
// +build property

package validation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/skill"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/validation"
)

// buildSolution assembles a solution whose skills reference each other's tools,
// workflows and ids by name, so that some references resolve and some do not.
func buildSolution(ids, tools []string) *skill.Solution {
	skills := make([]any, 0, len(ids))
	for i, id := range ids {
		var toolList, steps []any
		for j, name := range tools {
			if (i+j)%2 == 0 {
				toolList = append(toolList, map[string]any{"name": name, "description": "d", "output": map[string]any{}})
			}
			steps = append(steps, name)
		}
		skills = append(skills, map[string]any{
			"id":     id,
			"tools":  toolList,
			"policy": map[string]any{"workflows": []any{map[string]any{"id": "wf", "steps": steps}}},
		})
	}
	handoffs := make([]any, 0, len(ids))
	for i := range ids {
		handoffs = append(handoffs, map[string]any{"from": ids[i], "to": fmt.Sprintf("skill-%d", i)})
	}
	return skill.DecodeSolution(map[string]any{"id": "p", "skills": skills, "handoffs": handoffs})
}

func buildContext(ids []string) *connector.Context {
	connectors := make([]any, 0, len(ids))
	store := map[string]any{}
	for _, id := range ids {
		connectors = append(connectors, map[string]any{
			"id":      id,
			"command": "node",
			"args":    []any{"/opt/mcp-connectors/" + id + "/server.js"},
		})
		store[id] = []any{map[string]any{"path": "server.js", "content": "require('" + id + "/lib')"}}
	}
	return connector.DecodeContext(map[string]any{"connectors": connectors, "mcp_store": store})
}

// TestValidateSolutionIsIdempotent verifies the orchestrator is a pure function
// whose output does not depend on the worker count.
// Property: json(Validate(s, c, 1 worker)) == json(Validate(s, c, n workers))
func TestValidateSolutionIsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("results are byte-identical across runs and worker counts", prop.ForAll(
		func(ids, tools, connectors []string, workers int) bool {
			sol := buildSolution(ids, tools)
			cctx := buildContext(connectors)

			run := func(n int) []byte {
				res := validation.New(validation.Options{Workers: n}).ValidateSolution(context.Background(), sol, cctx)
				data, err := json.Marshal(res)
				if err != nil {
					return nil
				}
				return data
			}

			first := run(1)
			return first != nil && bytes.Equal(first, run(1)) && bytes.Equal(first, run(workers))
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.Identifier()),
		gen.IntRange(1, 16),
	))

	properties.TestingRun(t)
}
