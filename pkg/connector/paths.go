package connector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ariekogan/adas-mcp-toolbox-buider-sub005/pkg/findings"
)

const (
	// DeprecatedRoot is the old connector mount, no longer provided by the runtime.
	DeprecatedRoot = "/opt/mcp-connectors/"
	// StoreRoot is the current connector mount; the runtime resolves
	// StoreRoot/<id>/ to the connector's uploaded bundle.
	StoreRoot = "/mcp-store/"
)

var (
	deprecatedSegment = regexp.MustCompile(`/opt/mcp-connectors/([^/\s"']+)/?`)
	storeSegment      = regexp.MustCompile(`/mcp-store/([^/\s"']+)/`)
)

// launchValue is one command or argument of the launch configuration.
type launchValue struct {
	field string
	value string
}

func launchValues(cfg Config) []launchValue {
	var out []launchValue
	if cfg.Command != "" {
		out = append(out, launchValue{field: "command", value: cfg.Command})
	}
	for i, a := range cfg.Args {
		if a == "" {
			continue
		}
		out = append(out, launchValue{field: fmt.Sprintf("args[%d]", i), value: a})
	}
	return out
}

// checkPaths reports deprecated mounts (one error per connector) and store paths
// that name a different connector (one warning per distinct segment).
func checkPaths(cfg Config) findings.List {
	var out findings.List
	values := launchValues(cfg)

	for _, v := range values {
		if !strings.Contains(v.value, DeprecatedRoot) {
			continue
		}
		suggestion := deprecatedSegment.ReplaceAllString(v.value, StoreRoot+cfg.ID+"/")
		out = append(out,
			findings.Error(findings.CheckConnectorDeprecatedPath, "connector %q launches from deprecated path %q", cfg.ID, v.value).
				At(Section, v.field).
				ForConnector(cfg.ID).
				WithFix("use the %s<id>/ convention, e.g. %q; the runtime resolves it at deploy time", StoreRoot, suggestion))
		break
	}

	seen := map[string]bool{}
	for _, v := range values {
		for _, m := range storeSegment.FindAllStringSubmatch(v.value, -1) {
			segment := m[1]
			if segment == cfg.ID || seen[segment] {
				continue
			}
			seen[segment] = true
			out = append(out,
				findings.Warning(findings.CheckConnectorPathMismatch, "connector %q launches from %s%s/, which belongs to connector %q", cfg.ID, StoreRoot, segment, segment).
					At(Section, v.field).
					ForConnector(cfg.ID).
					WithFix("replace %s%s/ with %s%s/", StoreRoot, segment, StoreRoot, cfg.ID))
		}
	}
	return out
}

// checkEntrypoint warns when a stdio connector launches a script the bundle does
// not contain.
func checkEntrypoint(cfg Config, files []File) findings.List {
	if cfg.Transport == TransportHTTP {
		return nil
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[cleanPath(f.Path)] = true
	}

	var out findings.List
	for _, v := range launchValues(cfg) {
		rel, ok := bundlePath(v.value, cfg.ID)
		if !ok || !isScript(rel) || present[rel] {
			continue
		}
		out = append(out,
			findings.Warning(findings.CheckConnectorEntrypointMissing, "connector %q launches %q, which is not in the uploaded files", cfg.ID, rel).
				At(Section, v.field).
				ForConnector(cfg.ID).
				WithFix("upload %s or fix the launch %s", rel, v.field))
	}
	return out
}

// bundlePath maps a launch value to a path inside the connector's own bundle.
// Paths under another connector's directory, or outside any mount, are not the
// bundle's concern and report false.
func bundlePath(value, id string) (string, bool) {
	for _, root := range []string{StoreRoot, DeprecatedRoot} {
		i := strings.Index(value, root)
		if i < 0 {
			continue
		}
		rest := value[i+len(root):]
		segment, rel, found := strings.Cut(rest, "/")
		if !found || rel == "" {
			return "", false
		}
		if root == StoreRoot && segment != id {
			return "", false
		}
		return cleanPath(rel), true
	}
	if strings.HasPrefix(value, "/") || strings.HasPrefix(value, "-") || strings.Contains(value, "://") {
		return "", false
	}
	return cleanPath(value), true
}

func isScript(p string) bool {
	for _, ext := range []string{".js", ".mjs", ".cjs"} {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
