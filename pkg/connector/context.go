package connector

import "sort"

// Transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is a connector's launch configuration as held by the connector registry.
type Config struct {
	Index     int      `json:"-"`
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Transport string   `json:"transport,omitempty"`
	Command   string   `json:"command,omitempty"`
	// Args keeps the registry's positions; non-string entries decode to "".
	Args      []string `json:"args,omitempty"`
}

// File is one uploaded source file of a connector bundle.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Context is the validation context of a solution: the connector registry plus
// the uploaded source bundles keyed by connector id. The two are owned by
// different subsystems and arrive separately.
type Context struct {
	Connectors []Config          `json:"connectors"`
	Store      map[string][]File `json:"mcp_store"`

	// Raw is the untouched input, consumed by the schema stage.
	Raw map[string]any `json:"-"`
}

// Files returns the bundle uploaded for a connector id, or nil.
func (c *Context) Files(id string) []File {
	if c == nil {
		return nil
	}
	return c.Store[id]
}

// IDs returns the registered connector ids in declaration order.
func (c *Context) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Connectors))
	for _, cfg := range c.Connectors {
		ids = append(ids, cfg.ID)
	}
	return ids
}

// DecodeContext builds a Context from a raw object. Entries of the wrong shape are
// dropped; the schema stage reports them.
func DecodeContext(raw map[string]any) *Context {
	ctx := &Context{Store: map[string][]File{}, Raw: raw}
	if raw == nil {
		return ctx
	}

	if items, ok := raw["connectors"].([]any); ok {
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			cfg := Config{
				Index:     i,
				ID:        str(m, "id"),
				Name:      str(m, "name"),
				Transport: str(m, "transport"),
				Command:   str(m, "command"),
			}
			if args, ok := m["args"].([]any); ok {
				cfg.Args = make([]string, len(args))
				for j, a := range args {
					cfg.Args[j], _ = a.(string)
				}
			}
			ctx.Connectors = append(ctx.Connectors, cfg)
		}
	}

	if store, ok := raw["mcp_store"].(map[string]any); ok {
		ids := make([]string, 0, len(store))
		for id := range store {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			entries, ok := store[id].([]any)
			if !ok {
				continue
			}
			var files []File
			for _, e := range entries {
				m, ok := e.(map[string]any)
				if !ok {
					continue
				}
				p, ok := m["path"].(string)
				if !ok || p == "" {
					continue
				}
				files = append(files, File{Path: p, Content: str(m, "content")})
			}
			ctx.Store[id] = files
		}
	}
	return ctx
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
