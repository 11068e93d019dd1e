package connector

import "strings"

// builtins are the modules shipped with Node.js. They never need installing.
var builtins = map[string]bool{
	"assert":              true,
	"async_hooks":         true,
	"buffer":              true,
	"child_process":       true,
	"cluster":             true,
	"console":             true,
	"constants":           true,
	"crypto":              true,
	"dgram":               true,
	"diagnostics_channel": true,
	"dns":                 true,
	"domain":              true,
	"events":              true,
	"fs":                  true,
	"http":                true,
	"http2":               true,
	"https":               true,
	"inspector":           true,
	"module":              true,
	"net":                 true,
	"os":                  true,
	"path":                true,
	"perf_hooks":          true,
	"process":             true,
	"punycode":            true,
	"querystring":         true,
	"readline":            true,
	"repl":                true,
	"stream":              true,
	"string_decoder":      true,
	"sys":                 true,
	"test":                true,
	"timers":              true,
	"tls":                 true,
	"trace_events":        true,
	"tty":                 true,
	"url":                 true,
	"util":                true,
	"v8":                  true,
	"vm":                  true,
	"wasi":                true,
	"worker_threads":      true,
	"zlib":                true,
}

// IsBuiltin reports whether a package name is a Node.js builtin module.
func IsBuiltin(name string) bool {
	return builtins[strings.TrimPrefix(name, "node:")]
}

// PackageName reduces a module specifier to the name of the package that must be
// installed for it to resolve: "@scope/pkg/deep/path" becomes "@scope/pkg" and
// "pkg/sub" becomes "pkg". It returns "" for specifiers that are not installed
// packages: relative and absolute paths, node: and other URL schemes, and
// package-internal "#" imports.
func PackageName(spec string) string {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "", spec == ".", spec == "..":
		return ""
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"), strings.HasPrefix(spec, "/"):
		return ""
	case strings.HasPrefix(spec, "#"):
		return ""
	case strings.Contains(strings.SplitN(spec, "/", 2)[0], ":"):
		// node:fs, file:..., https://..., data:...
		return ""
	}
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") {
		if len(parts) < 2 || parts[1] == "" {
			return ""
		}
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
