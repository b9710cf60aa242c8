// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package rexster

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ValueKind discriminates the variants a property Value can hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

// String returns the kind name, e.g. "string" or "int".
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a single property value. It keeps the distinction between
// integers and floats that encoding/json erases, so a property written
// as 29 is read back as 29 and not 29.0.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	obj  map[string]Value
}

// NullValue returns the JSON null value.
func NullValue() Value {
	return Value{kind: KindNull}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// IntValue returns an integer Value.
func IntValue(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// FloatValue returns a floating point Value.
func FloatValue(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// ListValue returns a list Value holding the given items.
func ListValue(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// MapValue returns a map Value holding the given entries.
func MapValue(m map[string]Value) Value {
	return Value{kind: KindMap, obj: m}
}

// Kind returns the variant the Value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// String returns the value in string form. Strings are returned as-is,
// other kinds are formatted.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList, KindMap:
		raw, err := v.appendJSON(nil)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return ""
	}
}

// Int returns the value as an int64. Floats are truncated, non-numeric
// kinds return 0.
func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	default:
		return 0
	}
}

// Float returns the value as a float64. Non-numeric kinds return 0.
func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	default:
		return 0
	}
}

// Bool returns the boolean value, or false for any other kind.
func (v Value) Bool() bool {
	return v.kind == KindBool && v.b
}

// List returns the list items, or nil for any other kind.
func (v Value) List() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Map returns the map entries, or nil for any other kind.
func (v Value) Map() map[string]Value {
	if v.kind != KindMap {
		return nil
	}
	return v.obj
}

// Interface returns the value as a native Go type: string, int64,
// float64, bool, []any, map[string]any or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether two values hold the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, item := range v.obj {
			o, ok := other.obj[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalJSON renders the value in its wire form. Integers are written
// without a fraction, floats always carry one or an exponent, so the
// two kinds survive a round trip through the server.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil)
}

func (v Value) appendJSON(dst []byte) ([]byte, error) {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...), nil
	case KindString:
		raw, err := json.Marshal(v.str)
		if err != nil {
			return nil, err
		}
		return append(dst, raw...), nil
	case KindInt:
		return strconv.AppendInt(dst, v.i, 10), nil
	case KindFloat:
		s, err := formatFloat(v.f)
		if err != nil {
			return nil, err
		}
		return append(dst, s...), nil
	case KindBool:
		return strconv.AppendBool(dst, v.b), nil
	case KindList:
		dst = append(dst, '[')
		for i, item := range v.list {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			dst, err = item.appendJSON(dst)
			if err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case KindMap:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dst = append(dst, '{')
		for i, k := range keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			rawKey, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			dst = append(dst, rawKey...)
			dst = append(dst, ':')
			dst, err = v.obj[k].appendJSON(dst)
			if err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// formatFloat renders a float so that it stays a float on the wire:
// values without a fractional part get a trailing ".0". NaN and
// infinities have no JSON representation and are rejected.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("value %v cannot be represented in JSON", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// toValue converts a native Go value into a Value. Unsupported types are
// rejected rather than silently coerced.
func toValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case int8:
		return IntValue(int64(t)), nil
	case int16:
		return IntValue(int64(t)), nil
	case int32:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{}, fmt.Errorf("value %d overflows int64", t)
		}
		return IntValue(int64(t)), nil
	case uint8:
		return IntValue(int64(t)), nil
	case uint16:
		return IntValue(int64(t)), nil
	case uint32:
		return IntValue(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("value %d overflows int64", t)
		}
		return IntValue(int64(t)), nil
	case float32:
		return toFloatValue(float64(t))
	case float64:
		return toFloatValue(t)
	case json.Number:
		if strings.ContainsAny(t.String(), ".eE") {
			f, err := t.Float64()
			if err != nil {
				return Value{}, fmt.Errorf("invalid number %q", t.String())
			}
			return toFloatValue(f)
		}
		i, err := t.Int64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q", t.String())
		}
		return IntValue(i), nil
	case []Value:
		return ListValue(t...), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			iv, err := toValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, iv)
		}
		return ListValue(items...), nil
	case []string:
		items := make([]Value, 0, len(t))
		for _, s := range t {
			items = append(items, StringValue(s))
		}
		return ListValue(items...), nil
	case []int:
		items := make([]Value, 0, len(t))
		for _, i := range t {
			items = append(items, IntValue(int64(i)))
		}
		return ListValue(items...), nil
	case []int64:
		items := make([]Value, 0, len(t))
		for _, i := range t {
			items = append(items, IntValue(i))
		}
		return ListValue(items...), nil
	case []float64:
		items := make([]Value, 0, len(t))
		for i, f := range t {
			fv, err := toFloatValue(f)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, fv)
		}
		return ListValue(items...), nil
	case []bool:
		items := make([]Value, 0, len(t))
		for _, b := range t {
			items = append(items, BoolValue(b))
		}
		return ListValue(items...), nil
	case map[string]Value:
		return MapValue(t), nil
	case Properties:
		return MapValue(t), nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, item := range t {
			iv, err := toValue(item)
			if err != nil {
				return Value{}, fmt.Errorf("%q: %w", k, err)
			}
			obj[k] = iv
		}
		return MapValue(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported type %T", v)
	}
}

func toFloatValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("value %v cannot be represented in JSON", f)
	}
	return FloatValue(f), nil
}

// decodeValue converts a parsed JSON value. Numbers keep their identity:
// a token containing '.', 'e' or 'E' is a float, anything else that fits
// an int64 is an integer.
func decodeValue(res gjson.Result) Value {
	switch res.Type {
	case gjson.String:
		return StringValue(res.Str)
	case gjson.Number:
		return decodeNumber(res)
	case gjson.True:
		return BoolValue(true)
	case gjson.False:
		return BoolValue(false)
	case gjson.JSON:
		if res.IsArray() {
			items := []Value{}
			res.ForEach(func(_, item gjson.Result) bool {
				items = append(items, decodeValue(item))
				return true
			})
			return ListValue(items...)
		}
		obj := map[string]Value{}
		res.ForEach(func(key, item gjson.Result) bool {
			obj[key.String()] = decodeValue(item)
			return true
		})
		return MapValue(obj)
	default:
		return NullValue()
	}
}

func decodeNumber(res gjson.Result) Value {
	if strings.ContainsAny(res.Raw, ".eE") {
		return FloatValue(res.Num)
	}
	i, err := strconv.ParseInt(res.Raw, 10, 64)
	if err != nil {
		// out of int64 range, keep the float approximation
		return FloatValue(res.Num)
	}
	return IntValue(i)
}

// Properties holds the user-defined properties of a graph element.
type Properties map[string]Value

// reservedPropertyKeys are element metadata on the wire and cannot be
// used as property names.
var reservedPropertyKeys = map[string]bool{
	"_id":    true,
	"_type":  true,
	"_outV":  true,
	"_inV":   true,
	"_label": true,
}

// NewProperties converts a native Go map into Properties. Nil values are
// omitted, reserved keys and unsupported value types are rejected.
func NewProperties(props map[string]any) (Properties, error) {
	out := make(Properties, len(props))
	for k, v := range props {
		if reservedPropertyKeys[k] {
			return nil, &Error{
				Code:    CodeUnsupportedPropertyType,
				Message: fmt.Sprintf("property key %q is reserved", k),
			}
		}
		if v == nil {
			continue
		}
		val, err := toValue(v)
		if err != nil {
			return nil, &Error{
				Code:    CodeUnsupportedPropertyType,
				Message: fmt.Sprintf("property %q: %s", k, err),
			}
		}
		if val.Kind() == KindNull {
			continue
		}
		out[k] = val
	}
	return out, nil
}

// Interface returns the properties as a native Go map.
func (p Properties) Interface() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// Equal reports whether two property maps hold the same entries.
func (p Properties) Equal(other Properties) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		o, ok := other[k]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the properties as a JSON object with sorted keys.
func (p Properties) MarshalJSON() ([]byte, error) {
	s, err := encodeValueMap(p)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func encodeValueMap(m map[string]Value) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	buf := []byte{'{'}
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		rawKey, err := json.Marshal(k)
		if err != nil {
			return "", err
		}
		buf = append(buf, rawKey...)
		buf = append(buf, ':')
		buf, err = m[k].appendJSON(buf)
		if err != nil {
			return "", &Error{
				Code:    CodeUnsupportedPropertyType,
				Message: fmt.Sprintf("property %q: %s", k, err),
			}
		}
	}
	return string(append(buf, '}')), nil
}

// encodeProperties renders a native Go map as the JSON body of a create
// or update request. Nil values are omitted so that absent and null
// never reach the wire as distinct states.
func encodeProperties(props map[string]any) (string, error) {
	p, err := NewProperties(props)
	if err != nil {
		return "", err
	}
	return encodeValueMap(p)
}

// encodeBindings renders script bindings as a JSON object. Unlike
// properties, binding names are unrestricted and nil stays null.
func encodeBindings(bindings map[string]any) (string, error) {
	m := make(map[string]Value, len(bindings))
	for k, v := range bindings {
		val, err := toValue(v)
		if err != nil {
			return "", &Error{
				Code:    CodeUnsupportedPropertyType,
				Message: fmt.Sprintf("binding %q: %s", k, err),
			}
		}
		m[k] = val
	}
	return encodeValueMap(m)
}

// decodeProperties extracts the user properties of an element object,
// skipping reserved metadata keys and null values.
func decodeProperties(obj gjson.Result) Properties {
	props := Properties{}
	obj.ForEach(func(key, item gjson.Result) bool {
		k := key.String()
		if reservedPropertyKeys[k] {
			return true
		}
		if item.Type == gjson.Null {
			return true
		}
		props[k] = decodeValue(item)
		return true
	})
	return props
}
