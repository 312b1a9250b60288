package jira

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

var errEmptyTimestamp = errors.New("empty timestamp")

// Parser decodes a JSON document into a value of type T.
// Failures are *DecodeError values naming the offending field.
type Parser[T any] func(data json.RawMessage) (T, error)

// object reads fields of a JSON object. The first failure sticks; later
// reads return zero values.
type object struct {
	entity string
	fields map[string]json.RawMessage
	err    error
}

func decodeObject(entity string, data json.RawMessage) (*object, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, &DecodeError{Entity: entity, Err: err}
	}
	if fields == nil {
		return nil, &DecodeError{Entity: entity, Err: errNotObject}
	}
	return &object{entity: entity, fields: fields}, nil
}

// objectParser builds a Parser for a JSON object read by read.
func objectParser[T any](entity string, read func(o *object) T) Parser[T] {
	return func(data json.RawMessage) (T, error) {
		var zero T
		o, err := decodeObject(entity, data)
		if err != nil {
			return zero, err
		}
		v := read(o)
		if o.err != nil {
			return zero, o.err
		}
		return v, nil
	}
}

// ArrayParser parses a top-level JSON array with elem.
func ArrayParser[T any](elem Parser[T]) Parser[[]T] {
	return func(data json.RawMessage) ([]T, error) {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, &DecodeError{Entity: "array", Err: err}
		}
		out := make([]T, 0, len(items))
		for i, item := range items {
			v, err := elem(item)
			if err != nil {
				return nil, rootErr("array", fmt.Sprintf("[%d]", i), err)
			}
			out = append(out, v)
		}
		return out, nil
	}
}

// FieldArrayParser parses the JSON array stored under key of an enclosing
// object, e.g. {"issueLinkTypes": [...]}.
func FieldArrayParser[T any](key string, elem Parser[T]) Parser[[]T] {
	return objectParser(key, func(o *object) []T {
		raw, ok := o.raw(key)
		if !ok {
			o.fail(key, errMissingField)
			return nil
		}
		items, err := ArrayParser(elem)(raw)
		if err != nil {
			o.failNested(key, err)
			return nil
		}
		return items
	})
}

// rootErr places a nested parse error under prefix.
func rootErr(entity, prefix string, err error) error {
	if de, ok := err.(*DecodeError); ok {
		return de.within(entity, prefix)
	}
	return &DecodeError{Entity: entity, Field: prefix, Err: err}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (o *object) fail(field string, err error) {
	if o.err == nil {
		o.err = &DecodeError{Entity: o.entity, Field: field, Err: err}
	}
}

func (o *object) failNested(field string, err error) {
	if o.err == nil {
		o.err = rootErr(o.entity, field, err)
	}
}

// raw returns the field when present and not null.
func (o *object) raw(key string) (json.RawMessage, bool) {
	v, ok := o.fields[key]
	if !ok || isNull(v) {
		return nil, false
	}
	return v, true
}

func (o *object) has(key string) bool {
	_, ok := o.raw(key)
	return ok
}

func (o *object) require(key string) (json.RawMessage, bool) {
	if o.err != nil {
		return nil, false
	}
	v, ok := o.raw(key)
	if !ok {
		o.fail(key, errMissingField)
	}
	return v, ok
}

func (o *object) optional(key string) (json.RawMessage, bool) {
	if o.err != nil {
		return nil, false
	}
	return o.raw(key)
}

func decodeInto[T any](o *object, key string, raw json.RawMessage) T {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		o.fail(key, err)
	}
	return v
}

func (o *object) str(key string) string {
	raw, ok := o.require(key)
	if !ok {
		return ""
	}
	return decodeInto[string](o, key, raw)
}

func (o *object) optStr(key string) string {
	raw, ok := o.optional(key)
	if !ok {
		return ""
	}
	return decodeInto[string](o, key, raw)
}

// text reads a rich text field, flattening ADF documents to plain text.
func (o *object) text(key string) string {
	raw, ok := o.optional(key)
	if !ok {
		return ""
	}
	s, ok := richText(raw)
	if !ok {
		o.fail(key, fmt.Errorf("expected a string or ADF document"))
	}
	return s
}

func (o *object) boolean(key string) bool {
	raw, ok := o.require(key)
	if !ok {
		return false
	}
	return decodeInto[bool](o, key, raw)
}

func (o *object) optBool(key string) bool {
	raw, ok := o.optional(key)
	if !ok {
		return false
	}
	return decodeInto[bool](o, key, raw)
}

func (o *object) integer(key string) int {
	raw, ok := o.require(key)
	if !ok {
		return 0
	}
	return decodeInto[int](o, key, raw)
}

func (o *object) optInt(key string) int {
	raw, ok := o.optional(key)
	if !ok {
		return 0
	}
	return decodeInto[int](o, key, raw)
}

// id reads a numeric id sent either as a number or a numeric string.
func (o *object) id(key string) int64 {
	raw, ok := o.require(key)
	if !ok {
		return 0
	}
	return o.decodeID(key, raw)
}

func (o *object) optID(key string) *int64 {
	raw, ok := o.optional(key)
	if !ok {
		return nil
	}
	v := o.decodeID(key, raw)
	if o.err != nil {
		return nil
	}
	return &v
}

func (o *object) decodeID(key string, raw json.RawMessage) int64 {
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		o.fail(key, fmt.Errorf("id must be a number or numeric string"))
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		o.fail(key, fmt.Errorf("id %q is not numeric", s))
		return 0
	}
	return n
}

func (o *object) uri(key string) *url.URL {
	raw, ok := o.require(key)
	if !ok {
		return nil
	}
	return o.decodeURI(key, raw)
}

func (o *object) optURI(key string) *url.URL {
	raw, ok := o.optional(key)
	if !ok {
		return nil
	}
	return o.decodeURI(key, raw)
}

func (o *object) decodeURI(key string, raw json.RawMessage) *url.URL {
	s := decodeInto[string](o, key, raw)
	if o.err != nil {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		o.fail(key, err)
		return nil
	}
	return u
}

func (o *object) time(key string) time.Time {
	raw, ok := o.require(key)
	if !ok {
		return time.Time{}
	}
	return o.decodeTime(key, raw)
}

// optTime treats "" like null; Jira sends it for unset dates.
func (o *object) optTime(key string) *time.Time {
	raw, ok := o.optional(key)
	if !ok {
		return nil
	}
	s := decodeInto[string](o, key, raw)
	if o.err != nil || s == "" {
		return nil
	}
	t := o.parseTime(key, s)
	if o.err != nil {
		return nil
	}
	return &t
}

func (o *object) decodeTime(key string, raw json.RawMessage) time.Time {
	s := decodeInto[string](o, key, raw)
	if o.err != nil {
		return time.Time{}
	}
	if s == "" {
		o.fail(key, errEmptyTimestamp)
		return time.Time{}
	}
	return o.parseTime(key, s)
}

func (o *object) parseTime(key, s string) time.Time {
	t, err := ParseTime(s)
	if err != nil {
		o.fail(key, err)
	}
	return t
}

func (o *object) strings(key string) []string {
	raw, ok := o.optional(key)
	if !ok {
		return nil
	}
	return decodeInto[[]string](o, key, raw)
}

// nested parses a required sub-object.
func nested[T any](o *object, key string, p Parser[T]) T {
	var zero T
	raw, ok := o.require(key)
	if !ok {
		return zero
	}
	v, err := p(raw)
	if err != nil {
		o.failNested(key, err)
		return zero
	}
	return v
}

// optNested parses a sub-object, returning nil when absent or null.
func optNested[T any](o *object, key string, p Parser[T]) *T {
	raw, ok := o.optional(key)
	if !ok {
		return nil
	}
	v, err := p(raw)
	if err != nil {
		o.failNested(key, err)
		return nil
	}
	return &v
}

// list parses an optional array of sub-objects.
func list[T any](o *object, key string, p Parser[T]) []T {
	raw, ok := o.optional(key)
	if !ok {
		return nil
	}
	items, err := ArrayParser(p)(raw)
	if err != nil {
		o.failNested(key, err)
		return nil
	}
	return items
}
