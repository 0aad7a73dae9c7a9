// Package variables resolves {token} placeholders in template text against a
// data record and formats date values for display.
package variables

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is the per-certificate data a template is filled with. Values may be
// nested maps; dotted paths such as "student.first_name" reach into them.
type Record map[string]any

// Present reports whether the top-level field exists and is neither nil nor
// the empty string. Zero numbers and false are present. Field names are
// matched exactly.
func (r Record) Present(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}

// Lookup resolves a dotted path. A top-level key containing dots wins over
// nested traversal.
func (r Record) Lookup(path string) (any, bool) {
	if v, ok := r[path]; ok {
		return v, v != nil
	}
	parts := strings.Split(path, ".")
	var cur any = map[string]any(r)
	for _, p := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

// String returns the value at path formatted for text output.
func (r Record) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify formats a record value for text output. Whole floats print
// without a decimal part since JSON decodes every number as float64.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
