package utils

import "strconv"

// Ptr returns a pointer to a copy of v, for optional fields and filters.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v; nil yields the zero value.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// OptionalBool reads a tri-state flag. Empty or unparsable input means "unset".
func OptionalBool(s string) *bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}
