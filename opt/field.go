// Package opt provides a tri-state optional value for request inputs.
//
// A Field is either unset, explicitly null, or holds a value. The zero value
// is unset. Combined with the `omitzero` JSON tag option, unset fields are
// left out of a request body while null fields are sent as JSON null:
//
//	type input struct {
//		Lead opt.Field[string] `json:"leadUserName,omitzero"`
//	}
package opt

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	unset state = iota
	null
	present
)

// Field holds an optional value of type T.
type Field[T any] struct {
	state state
	val   T
}

// Of returns a Field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{state: present, val: v}
}

// Null returns a Field that is explicitly null.
func Null[T any]() Field[T] {
	return Field[T]{state: null}
}

// FromPtr returns Of(*v), or an unset Field when v is nil.
func FromPtr[T any](v *T) Field[T] {
	if v == nil {
		return Field[T]{}
	}
	return Of(*v)
}

// IsSet reports whether the field was provided, either as a value or as null.
func (f Field[T]) IsSet() bool {
	return f.state != unset
}

// IsNull reports whether the field is explicitly null.
func (f Field[T]) IsNull() bool {
	return f.state == null
}

// IsZero reports whether the field is unset.
func (f Field[T]) IsZero() bool {
	return f.state == unset
}

// Get returns the value and whether one is present.
func (f Field[T]) Get() (T, bool) {
	return f.val, f.state == present
}

// OrElse returns the value, or def when none is present.
func (f Field[T]) OrElse(def T) T {
	if f.state == present {
		return f.val
	}
	return def
}

// MarshalJSON implements json.Marshaler. Unset fields marshal as null; use
// `omitzero` to drop them.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != present {
		return []byte("null"), nil
	}
	return json.Marshal(f.val)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state, f.val = null, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state, f.val = present, v
	return nil
}
