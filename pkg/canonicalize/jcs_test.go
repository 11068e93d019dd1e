package canonicalize

import (
	"strings"
	"testing"
)

func TestJCS_Sorting(t *testing.T) {
	input := map[string]any{
		"c": 3,
		"a": 1,
		"b": map[string]any{"y": "foo", "x": "bar"},
	}

	expected := `{"a":1,"b":{"x":"bar","y":"foo"},"c":3}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}
	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestJCS_NoHTMLEscaping(t *testing.T) {
	input := map[string]string{"message": "tool <create_booking> & friends"}

	expected := `{"message":"tool <create_booking> & friends"}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}
	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestDigest_StableAcrossConstruction(t *testing.T) {
	type report struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	d1, err := Digest(report{Valid: false, Errors: []string{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	d2, err := Digest(map[string]any{"errors": []any{"x"}, "valid": false})
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Errorf("Digest mismatch: %s vs %s", d1, d2)
	}
	if !strings.HasPrefix(d1, DigestPrefix) || len(d1) != len(DigestPrefix)+64 {
		t.Errorf("unexpected digest format %q", d1)
	}
}

func TestJCS_RejectsUnmarshalable(t *testing.T) {
	if _, err := JCS(map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("expected error for channel value")
	}
}
