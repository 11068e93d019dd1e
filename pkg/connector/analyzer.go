// Package connector statically analyzes the embedded source of connector bundles
// to predict deployment failures before a solution is exported: missing
// dependency manifests, undeclared packages, deprecated filesystem paths and
// paths that point at another connector's directory.
package connector

import (
	"fmt"
	"path"
	"strings"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/connector/jsimports"
	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
)

// Section is the finding section used for connector findings.
const Section = "connectors"

// maxNamed caps how many offending specifiers a message lists.
const maxNamed = 3

// Extractor returns the module specifiers referenced by one source file.
type Extractor func(source string) []string

// Analyzer runs the static checks. The zero value uses jsimports.Extract.
type Analyzer struct {
	Extract Extractor
}

// AnalyzeConnector runs the default Analyzer.
func AnalyzeConnector(cfg Config, files []File) findings.List {
	return Analyzer{}.Analyze(cfg, files)
}

// Analyze checks one connector against its uploaded files. Connectors without
// embedded source are prebuilt and get no findings at all. The result depends
// only on the inputs.
func (a Analyzer) Analyze(cfg Config, files []File) findings.List {
	if len(files) == 0 {
		return nil
	}
	extract := a.Extract
	if extract == nil {
		extract = jsimports.Extract
	}

	var out findings.List
	packages := externalPackages(files, extract)
	manifest, hasManifest := findManifest(files)

	switch {
	case !hasManifest && len(packages) > 0:
		out = append(out,
			findings.Error(findings.CheckConnectorMissingPackageJSON, "connector %q imports %s but ships no package.json", cfg.ID, nameFirst(packages)).
				At(Section, "files").
				ForConnector(cfg.ID).
				WithFix("add a package.json declaring %s", strings.Join(packages, ", ")))
	case hasManifest:
		out = append(out, checkManifest(cfg.ID, manifest, packages)...)
	}

	out = append(out, checkPaths(cfg)...)
	out = append(out, checkEntrypoint(cfg, files)...)
	return out
}

// externalPackages collects the installed packages the source files import, in
// first-appearance order, with builtins removed.
func externalPackages(files []File, extract Extractor) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range files {
		if !isSource(f.Path) {
			continue
		}
		for _, spec := range extract(f.Content) {
			name := PackageName(spec)
			if name == "" || IsBuiltin(name) || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func isSource(p string) bool {
	p = cleanPath(p)
	if p == "node_modules" || strings.HasPrefix(p, "node_modules/") || strings.Contains(p, "/node_modules/") {
		return false
	}
	switch path.Ext(p) {
	case ".js", ".mjs", ".cjs":
		return true
	}
	return false
}

// cleanPath normalizes a bundle path to a slash-separated path relative to the
// bundle root.
func cleanPath(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// nameFirst renders the first offenders, e.g. `"a", "b", "c" and 2 more`.
func nameFirst(names []string) string {
	n := len(names)
	if n > maxNamed {
		n = maxNamed
	}
	quoted := make([]string, n)
	for i := range quoted {
		quoted[i] = fmt.Sprintf("%q", names[i])
	}
	s := strings.Join(quoted, ", ")
	if rest := len(names) - n; rest > 0 {
		s += fmt.Sprintf(" and %d more", rest)
	}
	return s
}
