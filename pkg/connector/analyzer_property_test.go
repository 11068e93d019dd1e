//go:build property
// +build property

package connector_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
)

var builtinNames = []any{"fs", "path", "http", "https", "crypto", "child_process", "os", "url", "util", "events", "stream", "zlib"}

// TestBuiltinsNeverRequireManifest verifies builtin-only connectors are never
// flagged for a missing package.json.
// Property: source importing only builtins => no connector_missing_package_json
func TestBuiltinsNeverRequireManifest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("builtin imports need no package.json", prop.ForAll(
		func(names []string, esm []bool) bool {
			var b strings.Builder
			for i, n := range names {
				switch {
				case i < len(esm) && esm[i]:
					fmt.Fprintf(&b, "import x%d from 'node:%s';\n", i, n)
				case i%3 == 0:
					fmt.Fprintf(&b, "import * as x%d from \"%s/promises\";\n", i, n)
				default:
					fmt.Fprintf(&b, "const x%d = require('%s');\n", i, n)
				}
			}
			files := []connector.File{{Path: "server.js", Content: b.String()}}
			got := connector.AnalyzeConnector(connector.Config{ID: "p"}, files)
			return len(got.ByCheck(findings.CheckConnectorMissingPackageJSON)) == 0
		},
		gen.SliceOf(gen.OneConstOf(builtinNames...), reflect.TypeOf("")),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

// TestAnalyzeIsDeterministic verifies the analyzer is a pure function.
// Property: Analyze(c, f) == Analyze(c, f)
func TestAnalyzeIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated analysis yields identical findings", prop.ForAll(
		func(id string, pkgs []string, segment string, withManifest bool) bool {
			var b strings.Builder
			for _, p := range pkgs {
				fmt.Fprintf(&b, "require('%s/sub');\n", p)
			}
			files := []connector.File{{Path: "server.js", Content: b.String()}}
			if withManifest {
				files = append(files, connector.File{Path: "package.json", Content: `{"dependencies":{"a":"^1.0.0"}}`})
			}
			cfg := connector.Config{
				ID:      id,
				Command: "node",
				Args:    []string{"/opt/mcp-connectors/" + segment + "/server.js", "/mcp-store/" + segment + "/server.js"},
			}
			first := connector.AnalyzeConnector(cfg, files)
			second := connector.AnalyzeConnector(cfg, files)
			return reflect.DeepEqual(first, second)
		},
		gen.Identifier(),
		gen.SliceOf(gen.Identifier()),
		gen.Identifier(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
