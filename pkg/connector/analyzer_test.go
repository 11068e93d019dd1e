package connector_test

import (
	"testing"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sqliteServer = `
const Database = require('better-sqlite3');
const { Server } = require('@modelcontextprotocol/sdk/server');
const fs = require('fs');
`

func stdio(id string, args ...string) connector.Config {
	return connector.Config{ID: id, Transport: connector.TransportStdio, Command: "node", Args: args}
}

func TestAnalyze_BuiltinsNeedNoManifest(t *testing.T) {
	files := []connector.File{{Path: "server.js", Content: `
const fs = require('fs');
const path = require('path');
const http = require('http');
const crypto = require('crypto');
import { readFile } from 'node:fs/promises';
import { spawn } from 'child_process';
const local = require('./lib/db.js');
`}}
	got := connector.AnalyzeConnector(stdio("my-mcp", "/mcp-store/my-mcp/server.js"), files)
	assert.Empty(t, got.ByCheck(findings.CheckConnectorMissingPackageJSON))
	assert.Empty(t, got)
}

func TestAnalyze_MissingPackageJSON(t *testing.T) {
	files := []connector.File{{Path: "server.js", Content: sqliteServer}}
	got := connector.AnalyzeConnector(stdio("my-mcp", "/mcp-store/my-mcp/server.js"), files)

	missing := got.ByCheck(findings.CheckConnectorMissingPackageJSON)
	require.Len(t, missing, 1)
	f := missing[0]
	assert.True(t, f.IsError())
	assert.Equal(t, "my-mcp", f.Connector)
	assert.Contains(t, f.Message, "better-sqlite3")
	assert.Contains(t, f.Message, "@modelcontextprotocol/sdk")
	assert.NotContains(t, f.Message, "@modelcontextprotocol/sdk/server", "deep imports are attributed to the package root")
	assert.NotContains(t, f.Message, `"fs"`)
}

func TestAnalyze_MissingPackageJSONNamesFirstOffenders(t *testing.T) {
	files := []connector.File{{Path: "index.mjs", Content: `
import a from 'alpha';
import b from 'beta';
import c from 'gamma';
import d from 'delta';
import e from 'epsilon';
`}}
	got := connector.AnalyzeConnector(stdio("x"), files)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, `"alpha", "beta", "gamma" and 2 more`)
	assert.Contains(t, got[0].Fix, "delta")
}

func TestAnalyze_DependencyCompleteness(t *testing.T) {
	partial := []connector.File{
		{Path: "server.js", Content: sqliteServer},
		{Path: "package.json", Content: `{"dependencies": {"better-sqlite3": "^11.0.0"}}`},
	}
	got := connector.AnalyzeConnector(stdio("my-mcp"), partial)
	assert.Empty(t, got.ByCheck(findings.CheckConnectorMissingPackageJSON))
	warn := got.ByCheck(findings.CheckConnectorMissingDependencies)
	require.Len(t, warn, 1)
	assert.False(t, warn[0].IsError())
	assert.Contains(t, warn[0].Message, "@modelcontextprotocol/sdk")
	assert.NotContains(t, warn[0].Message, "better-sqlite3")

	full := []connector.File{
		{Path: "server.js", Content: sqliteServer},
		{Path: "package.json", Content: `{
  "dependencies": {"better-sqlite3": "^11.0.0"},
  "devDependencies": {"@modelcontextprotocol/sdk": "~1.12.0"}
}`},
	}
	assert.Empty(t, connector.AnalyzeConnector(stdio("my-mcp"), full))
}

func TestAnalyze_UnparsableManifestSkipsDependencyCheck(t *testing.T) {
	files := []connector.File{
		{Path: "server.js", Content: sqliteServer},
		{Path: "package.json", Content: `{"dependencies": ["not", "a", "map"`},
	}
	assert.Empty(t, connector.AnalyzeConnector(stdio("my-mcp"), files))
}

func TestAnalyze_InvalidDependencyVersion(t *testing.T) {
	files := []connector.File{
		{Path: "server.js", Content: `require('zod')`},
		{Path: "package.json", Content: `{"dependencies": {
  "zod": "^3.23",
  "a": "file:../a",
  "b": "github:org/b",
  "c": "latest",
  "d": ">=1.2.0 <2.0.0 || 3.x",
  "e": "not a version!",
  "f": 7
}}`},
	}
	got := connector.AnalyzeConnector(stdio("x"), files)
	bad := got.ByCheck(findings.CheckConnectorInvalidDepVersion)
	require.Len(t, bad, 2)
	assert.Equal(t, "package.json#dependencies.e", bad[0].Field)
	assert.Equal(t, "package.json#dependencies.f", bad[1].Field)
}

func TestAnalyze_ManifestLookupIgnoresNodeModules(t *testing.T) {
	files := []connector.File{
		{Path: "server.js", Content: `require('left-pad')`},
		{Path: "node_modules/left-pad/package.json", Content: `{"dependencies": {}}`},
		{Path: "node_modules/left-pad/index.js", Content: `require('should-not-count')`},
	}
	got := connector.AnalyzeConnector(stdio("x"), files)
	require.Len(t, got, 1)
	assert.Equal(t, findings.CheckConnectorMissingPackageJSON, got[0].Check)
	assert.NotContains(t, got[0].Message, "should-not-count")
}

func TestAnalyze_DeprecatedPath(t *testing.T) {
	files := []connector.File{{Path: "server.js", Content: `require('fs')`}}

	got := connector.AnalyzeConnector(stdio("x", "/opt/mcp-connectors/x/server.js", "--config", "/opt/mcp-connectors/x/config.json"), files)
	dep := got.ByCheck(findings.CheckConnectorDeprecatedPath)
	require.Len(t, dep, 1, "one error per connector")
	assert.True(t, dep[0].IsError())
	assert.NotEmpty(t, dep[0].Fix)
	assert.Contains(t, dep[0].Fix, "/mcp-store/x/server.js")
	assert.Equal(t, "args[0]", dep[0].Field)

	got = connector.AnalyzeConnector(stdio("x", "/mcp-store/x/server.js"), files)
	assert.Empty(t, got.ByCheck(findings.CheckConnectorDeprecatedPath))
}

func TestAnalyze_PathMismatch(t *testing.T) {
	files := []connector.File{{Path: "server.js", Content: `require('fs')`}}

	got := connector.AnalyzeConnector(stdio("my-mcp", "/mcp-store/wrong-id/server.js", "/mcp-store/wrong-id/data"), files)
	mm := got.ByCheck(findings.CheckConnectorPathMismatch)
	require.Len(t, mm, 1)
	assert.False(t, mm[0].IsError())
	assert.Contains(t, mm[0].Message, "wrong-id")
	assert.Contains(t, mm[0].Message, "my-mcp")

	got = connector.AnalyzeConnector(stdio("my-mcp", "/mcp-store/my-mcp/server.js"), files)
	assert.Empty(t, got)
}

func TestAnalyze_EntrypointMissing(t *testing.T) {
	files := []connector.File{{Path: "src/server.js", Content: `require('fs')`}}

	got := connector.AnalyzeConnector(stdio("x", "/mcp-store/x/server.js"), files)
	ep := got.ByCheck(findings.CheckConnectorEntrypointMissing)
	require.Len(t, ep, 1)
	assert.Contains(t, ep[0].Message, "server.js")

	assert.Empty(t, connector.AnalyzeConnector(stdio("x", "/mcp-store/x/src/server.js"), files))
	assert.Empty(t, connector.AnalyzeConnector(stdio("x", "./src/server.js"), files))

	httpCfg := connector.Config{ID: "x", Transport: connector.TransportHTTP, Command: "node", Args: []string{"missing.js"}}
	assert.Empty(t, connector.AnalyzeConnector(httpCfg, files))
}

func TestAnalyze_SkipsConnectorsWithoutFiles(t *testing.T) {
	cfg := stdio("x", "/opt/mcp-connectors/other/server.js", "/mcp-store/other/server.js")
	assert.Empty(t, connector.AnalyzeConnector(cfg, nil))
	assert.Empty(t, connector.AnalyzeConnector(cfg, []connector.File{}))
}

func TestAnalyze_CustomExtractor(t *testing.T) {
	a := connector.Analyzer{Extract: func(string) []string { return []string{"from-lexer"} }}
	got := a.Analyze(stdio("x"), []connector.File{{Path: "a.js"}})
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "from-lexer")
}

func TestAnalyze_ClinicScheduler(t *testing.T) {
	cfg := stdio("clinic-scheduler", "/opt/mcp-connectors/clinic-scheduler/server.js")
	files := []connector.File{{Path: "server.js", Content: `
const Database = require('better-sqlite3');
const { McpServer } = require('@modelcontextprotocol/sdk/server/mcp.js');
const { StdioServerTransport } = require('@modelcontextprotocol/sdk/server/stdio.js');
`}}
	got := connector.AnalyzeConnector(cfg, files)
	require.Len(t, got, 2)
	assert.Equal(t, findings.CheckConnectorMissingPackageJSON, got[0].Check)
	assert.Equal(t, findings.CheckConnectorDeprecatedPath, got[1].Check)
	assert.True(t, got.HasErrors())
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"express":                          "express",
		"lodash/fp":                        "lodash",
		"@modelcontextprotocol/sdk/server": "@modelcontextprotocol/sdk",
		"@scope/pkg":                       "@scope/pkg",
		"@scope":                           "",
		"./local":                          "",
		"../up":                            "",
		"/abs/path":                        "",
		"node:fs":                          "",
		"https://esm.sh/react":             "",
		"#internal":                        "",
	}
	for spec, want := range tests {
		assert.Equal(t, want, connector.PackageName(spec), spec)
	}
	assert.True(t, connector.IsBuiltin("fs"))
	assert.True(t, connector.IsBuiltin("node:child_process"))
	assert.False(t, connector.IsBuiltin("better-sqlite3"))
}

func TestDecodeContext(t *testing.T) {
	ctx := connector.DecodeContext(map[string]any{
		"connectors": []any{
			map[string]any{"id": "a", "transport": "stdio", "command": "node", "args": []any{"x.js", 3}},
			"junk",
			map[string]any{"id": "b"},
		},
		"mcp_store": map[string]any{
			"a": []any{map[string]any{"path": "x.js", "content": "require('fs')"}, map[string]any{"content": "no path"}},
			"b": "junk",
		},
	})
	require.Len(t, ctx.Connectors, 2)
	assert.Equal(t, []string{"x.js", ""}, ctx.Connectors[0].Args)
	assert.Equal(t, 2, ctx.Connectors[1].Index)
	assert.Equal(t, []string{"a", "b"}, ctx.IDs())
	assert.Len(t, ctx.Files("a"), 1)
	assert.Empty(t, ctx.Files("b"))

	var nilCtx *connector.Context
	assert.Nil(t, nilCtx.Files("a"))
}

func TestAnalyze_ArgFieldsKeepRegistryPositions(t *testing.T) {
	ctx := connector.DecodeContext(map[string]any{
		"connectors": []any{map[string]any{
			"id":      "x",
			"command": "node",
			"args":    []any{"--port", 8080, "/opt/mcp-connectors/x/server.js"},
		}},
		"mcp_store": map[string]any{
			"x": []any{map[string]any{"path": "server.js", "content": "require('fs')"}},
		},
	})

	got := connector.AnalyzeConnector(ctx.Connectors[0], ctx.Files("x"))
	dep := got.ByCheck(findings.CheckConnectorDeprecatedPath)
	require.Len(t, dep, 1)
	assert.Equal(t, "args[2]", dep[0].Field)
}

func TestAnalyze_StringsDoNotHideImports(t *testing.T) {
	src := `const glob = 'tools/*.js';
const Database = require('better-sqlite3');
/** Opens the clinic database. */
function open() { return new Database('clinic.db'); }
`
	got := connector.AnalyzeConnector(stdio("x"), []connector.File{{Path: "server.js", Content: src}})
	missing := got.ByCheck(findings.CheckConnectorMissingPackageJSON)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "better-sqlite3")
}
