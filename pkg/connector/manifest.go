package connector

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
)

const manifestName = "package.json"

// packageJSON is the subset of package.json the analyzer reads.
type packageJSON struct {
	Dependencies     map[string]any `json:"dependencies"`
	DevDependencies  map[string]any `json:"devDependencies"`
	PeerDependencies map[string]any `json:"peerDependencies"`
}

// findManifest returns the bundle's root package.json: the shallowest one outside
// node_modules.
func findManifest(files []File) (string, bool) {
	best, depth := -1, 0
	for i, f := range files {
		p := cleanPath(f.Path)
		if parts := strings.Split(p, "/"); parts[len(parts)-1] != manifestName {
			continue
		}
		if strings.Contains("/"+p, "/node_modules/") {
			continue
		}
		d := strings.Count(p, "/")
		if best < 0 || d < depth {
			best, depth = i, d
		}
	}
	if best < 0 {
		return "", false
	}
	return files[best].Content, true
}

// checkManifest compares the imported packages with the declared dependencies.
// A manifest that does not parse skips the check.
func checkManifest(id, content string, packages []string) findings.List {
	var pkg packageJSON
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil
	}

	var out findings.List
	var missing []string
	for _, name := range packages {
		if !pkg.declares(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		out = append(out,
			findings.Warning(findings.CheckConnectorMissingDependencies, "connector %q imports %s, not declared in package.json", id, nameFirst(missing)).
				At(Section, manifestName).
				ForConnector(id).
				WithFix("add %s to dependencies", strings.Join(missing, ", ")))
	}

	for _, group := range []struct {
		name string
		deps map[string]any
	}{
		{"dependencies", pkg.Dependencies},
		{"devDependencies", pkg.DevDependencies},
		{"peerDependencies", pkg.PeerDependencies},
	} {
		for _, name := range sortedKeys(group.deps) {
			spec, ok := group.deps[name].(string)
			if ok && validVersion(spec) {
				continue
			}
			out = append(out,
				findings.Warning(findings.CheckConnectorInvalidDepVersion, "%s.%s has version %s, which is not a valid version range", group.name, name, describeVersion(group.deps[name])).
					At(Section, fmt.Sprintf("%s#%s.%s", manifestName, group.name, name)).
					ForConnector(id))
		}
	}
	return out
}

func (p packageJSON) declares(name string) bool {
	for _, deps := range []map[string]any{p.Dependencies, p.DevDependencies, p.PeerDependencies} {
		if _, ok := deps[name]; ok {
			return true
		}
	}
	return false
}

// validVersion accepts semver ranges and the non-registry forms npm understands
// (tags, file/link/git/workspace/alias specs, URLs, GitHub shorthands).
func validVersion(spec string) bool {
	spec = strings.TrimSpace(spec)
	switch spec {
	case "", "*", "latest", "next", "x":
		return true
	}
	for _, prefix := range []string{"file:", "link:", "git", "github:", "http:", "https:", "npm:", "workspace:", "portal:", "patch:"} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}
	if strings.Contains(spec, "/") {
		return true
	}
	_, err := semver.NewConstraint(spec)
	return err == nil
}

func describeVersion(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
