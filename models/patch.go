package models

// Patch holds one field of a partial update. The zero value leaves the field untouched.
type Patch[T any] struct {
	value T
	set   bool
}

// Set returns a patch that replaces the field with v
func Set[T any](v T) Patch[T] {
	return Patch[T]{value: v, set: true}
}

// Get returns the patched value and whether the field is part of the update
func (p Patch[T]) Get() (T, bool) {
	return p.value, p.set
}

// IsSet reports whether the field is part of the update
func (p Patch[T]) IsSet() bool {
	return p.set
}
