package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrExternalRef is returned for a $ref that leaves the schema document.
var ErrExternalRef = errors.New("external schema references are not allowed")

// CompileJSONSchema compiles an embedded JSON Schema document (for example a tool's
// output.schema). Schemas without a $schema keyword are treated as draft 2020-12.
// References may only point inside doc: the compiler never touches the network
// or the file system.
func CompileJSONSchema(name string, doc map[string]any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema marshal failed: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("%w: %s", ErrExternalRef, s)
	}
	schemaURL := fmt.Sprintf("https://skillcheck.schemas.local/tools/%s.schema.json", url.PathEscape(name))
	if err := c.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed: %w", err)
	}
	return compiled, nil
}
