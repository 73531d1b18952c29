package utils

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

const objectText = "[object Object]"

// LooseString is a request field that accepts any JSON value and keeps its
// text form: numbers and booleans as written, objects as "[object Object]",
// arrays as their comma-joined elements. null, false, 0 and "" count as absent.
type LooseString struct {
	Value   string
	Present bool
}

// UnmarshalJSON implements json.Unmarshaler
func (s *LooseString) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	s.Value = looseText(v)
	s.Present = truthy(v)
	return nil
}

// String returns the text, or "" when the value is absent
func (s LooseString) String() string {
	if !s.Present {
		return ""
	}
	return s.Value
}

// Ptr returns the text, or nil when the value is absent
func (s LooseString) Ptr() *string {
	if !s.Present {
		return nil
	}
	v := s.Value
	return &v
}

// looseStringValue lets validator tags see a LooseString as its text
func looseStringValue(field reflect.Value) interface{} {
	if s, ok := field.Interface().(LooseString); ok {
		return s.String()
	}
	return nil
}

func looseText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return numberText(t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, item := range t {
			if item != nil {
				parts[i] = looseText(item)
			}
		}
		return strings.Join(parts, ",")
	default:
		return objectText
	}
}

func numberText(n json.Number) string {
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	if f == 0 {
		return "0"
	}
	abs := f
	if abs < 0 {
		abs = -abs
	}
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
