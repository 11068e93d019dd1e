package skill

import "strings"

// Presence distinguishes a field that was never declared from one that was
// declared with the wrong type. The two must not share a code path: an absent
// reference is trivially satisfied, an invalid one is a schema error.
type Presence uint8

const (
	Absent Presence = iota
	Invalid
	Present
)

func (p Presence) String() string {
	switch p {
	case Invalid:
		return "invalid"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

// Field is an optional document value together with its presence.
type Field[T any] struct {
	Value    T
	Presence Presence
}

// Set returns a present field.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Presence: Present}
}

// Get returns the value and whether it is present and well-typed.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Presence == Present
}

// IsPresent reports whether the field was declared with the expected type.
func (f Field[T]) IsPresent() bool { return f.Presence == Present }

// IsAbsent reports whether the field was not declared at all.
func (f Field[T]) IsAbsent() bool { return f.Presence == Absent }

// Text is a string field.
type Text = Field[string]

// NonEmpty reports whether a text field is present with non-blank content.
func NonEmpty(t Text) bool {
	return t.Presence == Present && strings.TrimSpace(t.Value) != ""
}

// Or returns the text value when non-empty, otherwise fallback.
func Or(t Text, fallback string) string {
	if NonEmpty(t) {
		return t.Value
	}
	return fallback
}
