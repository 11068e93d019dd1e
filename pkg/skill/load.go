package skill

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseObject parses JSON or YAML bytes into a JSON-typed object
// (map[string]any, []any, string, float64, bool, nil).
func ParseObject(data []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	normalized, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}
	obj, ok := normalized.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse document: top level must be an object, got %T", normalized)
	}
	return obj, nil
}

// LoadFile reads a skill document from a JSON or YAML file.
func LoadFile(path string) (*Document, error) {
	raw, err := readObject(path)
	if err != nil {
		return nil, err
	}
	return Decode(raw), nil
}

// LoadSolutionFile reads a solution document from a JSON or YAML file.
func LoadSolutionFile(path string) (*Solution, error) {
	raw, err := readObject(path)
	if err != nil {
		return nil, err
	}
	return DecodeSolution(raw), nil
}

// ReadObjectFile reads any JSON or YAML object file.
func ReadObjectFile(path string) (map[string]any, error) {
	return readObject(path)
}

func readObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	raw, err := ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// normalize converts YAML-decoded values to the shapes encoding/json produces,
// so every stage sees the same types regardless of input format.
func normalize(v any) (any, error) {
	v = stringKeys(v)
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	}
	return v
}
