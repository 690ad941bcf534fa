package toadhopper

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanWithoutFilters(t *testing.T) {
	n := New("key")
	in := map[string]any{
		"id":       "myid",
		"password": "mypassword",
		"count":    3,
		"admin":    true,
		"tags":     []any{"a", "b"},
		"nested":   map[string]any{"token": "t"},
	}
	assert.Equal(t, in, n.Clean(in))
}

func TestCleanStringFilter(t *testing.T) {
	n := New("key")
	n.SetFilters(Plain("pass"))
	assert.Equal(t,
		map[string]any{"id": "myid", "password": FilteredValue},
		n.Clean(map[string]any{"id": "myid", "password": "mypassword"}))
}

func TestCleanRegexpFilter(t *testing.T) {
	n := New("key")
	n.SetFilters(Regexp(regexp.MustCompile(`pas{2}`)))
	assert.Equal(t,
		map[string]any{"id": "myid", "password": FilteredValue},
		n.Clean(map[string]any{"id": "myid", "password": "mypassword"}))
}

func TestCleanMultipleFilters(t *testing.T) {
	n := New("key")
	n.SetFilters(Plain("email"), MustRegexp(`pas{2}`))
	assert.Equal(t,
		map[string]any{"id": "myid", "email": FilteredValue, "password": FilteredValue},
		n.Clean(map[string]any{"id": "myid", "email": "myemail", "password": "mypassword"}))
}

func TestCleanRecursive(t *testing.T) {
	n := New("key")
	n.SetFilters(Plain("secret"))

	got := n.Clean(map[string]any{
		"user": map[string]any{
			"name":   "bob",
			"secret": "hunter2",
			"keys":   map[string]string{"secret_key": "abc", "public_key": "def"},
		},
		"history": []any{
			map[string]any{"secret": "x", "page": 1},
			"plain",
		},
	})

	assert.Equal(t, map[string]any{
		"user": map[string]any{
			"name":   "bob",
			"secret": FilteredValue,
			"keys":   map[string]any{"secret_key": FilteredValue, "public_key": "def"},
		},
		"history": []any{
			map[string]any{"secret": FilteredValue, "page": 1},
			"plain",
		},
	}, got)
}

func TestCleanFiltersNestedMapUnderMatchingKey(t *testing.T) {
	n := New("key")
	n.SetFilters(Plain("credentials"))
	assert.Equal(t,
		map[string]any{"credentials": FilteredValue},
		n.Clean(map[string]any{"credentials": map[string]any{"user": "u", "pass": "p"}}))
}

func TestCleanDropsNonSerializableValues(t *testing.T) {
	type widget struct{ Name string }

	n := New("key")
	got := n.Clean(map[string]any{
		"id":      "myid",
		"nothing": nil,
		"object":  widget{Name: "w"},
		"pointer": &widget{},
		"float":   1.5,
		"func":    func() {},
		"list":    []any{"kept", nil, widget{}},
	})
	assert.Equal(t, map[string]any{
		"id":   "myid",
		"list": []any{"kept"},
	}, got)
}

func TestCleanNilMap(t *testing.T) {
	assert.Equal(t, map[string]any{}, New("key").Clean(nil))
}

func TestPlainFilterIsLiteral(t *testing.T) {
	f := Plain("a.b")
	assert.True(t, f.Match("xa.by"))
	assert.False(t, f.Match("axb"))
	assert.False(t, Plain("Pass").Match("password"))
}

func TestRegexpFilterString(t *testing.T) {
	assert.Equal(t, "/pas{2}/", MustRegexp(`pas{2}`).String())
	assert.Equal(t, "pass", Plain("pass").String())
}

func TestSetFiltersReplaces(t *testing.T) {
	n := New("key")
	n.SetFilters(Plain("a"), Plain("b"))
	n.SetFilters(Plain("c"))
	assert.Equal(t, []Filter{Plain("c")}, n.Filters())

	n.SetFilters()
	assert.Empty(t, n.Filters())
}
