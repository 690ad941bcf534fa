package toadhopper

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// FilteredValue replaces the value of every field whose name matches a filter.
const FilteredValue = "[FILTERED]"

// Filter matches field names (never values) that should be redacted from a
// notice. A filter is either a plain substring or a regular expression.
type Filter interface {
	Match(key string) bool
	String() string
}

type plainFilter string

// Plain returns a filter matching any key that contains s. Matching is
// case-sensitive and s is never interpreted as a pattern.
func Plain(s string) Filter {
	return plainFilter(s)
}

func (f plainFilter) Match(key string) bool {
	return strings.Contains(key, string(f))
}

func (f plainFilter) String() string {
	return string(f)
}

type regexpFilter struct {
	re *regexp.Regexp
}

// Regexp returns a filter matching any key in which re finds a match. Anchor
// the expression to require a whole-key match.
func Regexp(re *regexp.Regexp) Filter {
	return regexpFilter{re: re}
}

// MustRegexp compiles expr and returns it as a filter. It panics if expr is
// not a valid expression.
func MustRegexp(expr string) Filter {
	return Regexp(regexp.MustCompile(expr))
}

func (f regexpFilter) Match(key string) bool {
	return f.re.MatchString(key)
}

func (f regexpFilter) String() string {
	return "/" + f.re.String() + "/"
}

type filterSet []Filter

func (fs filterSet) match(key string) bool {
	return lo.SomeBy(fs, func(f Filter) bool {
		return f.Match(key)
	})
}

// clean copies m, replacing the values of matching keys with FilteredValue
// and dropping every value that can't be serialized into a notice. Nested
// maps and sequences are cleaned with the same filters.
func (fs filterSet) clean(m map[string]any) map[string]any {
	out, _ := fs.value(m)
	return out.(map[string]any)
}

// value reports whether v is serializable and returns its cleaned form.
// Strings, integers and booleans pass through untouched; maps come back as
// map[string]any and sequences as []any.
func (fs filterSet) value(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v, true

	case reflect.Slice, reflect.Array:
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if cv, ok := fs.value(rv.Index(i).Interface()); ok {
				out = append(out, cv)
			}
		}
		return out, true

	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			cv, ok := fs.value(iter.Value().Interface())
			if !ok {
				continue
			}
			if fs.match(key) {
				out[key] = FilteredValue
				continue
			}
			out[key] = cv
		}
		return out, true
	}

	return nil, false
}
