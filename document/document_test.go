package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *Document {
	return New(map[string]any{
		"a": 1,
		"b": map[string]any{
			"c": 2,
			"d": map[string]any{"e": "deep"},
		},
		"layers": []any{
			map[string]any{"units": 64, "activation": "relu"},
			map[string]any{"units": 1, "activation": "linear"},
		},
		"tags":       []any{"wine", "quality", 3},
		"lr":         0.01,
		"enabled":    true,
		"model.name": "elasticnet",
		"Alpha":      0.5,
	})
}

func TestDocument_Get(t *testing.T) {
	doc := sampleDoc()

	v, ok := doc.Get("b.c")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	v, ok = doc.Get("b.d.e")
	require.True(t, ok)
	assert.Equal(t, "deep", v)

	v, ok = doc.Get("layers.1.activation")
	require.True(t, ok)
	assert.Equal(t, "linear", v)

	_, ok = doc.Get("b.missing")
	assert.False(t, ok)

	_, ok = doc.Get("layers.7.units")
	assert.False(t, ok)

	_, ok = doc.Get("a.b")
	assert.False(t, ok, "cannot descend into a scalar")
}

func TestDocument_Value(t *testing.T) {
	doc := sampleDoc()

	v, ok := doc.Value("model.name")
	require.True(t, ok)
	assert.Equal(t, "elasticnet", v)

	_, ok = doc.Get("model.name")
	assert.False(t, ok, "dotted lookup splits the key")
}

func TestDocument_TypedGetters(t *testing.T) {
	doc := sampleDoc()

	assert.Equal(t, 1, doc.Int("a"))
	assert.Equal(t, 64, doc.Int("layers.0.units"))
	assert.Equal(t, 0.01, doc.Float("lr"))
	assert.Equal(t, float64(2), doc.Float("b.c"))
	assert.True(t, doc.Bool("enabled"))
	assert.Equal(t, "deep", doc.String("b.d.e"))
	assert.Equal(t, "1", doc.String("a"))
	assert.Equal(t, []string{"wine", "quality", "3"}, doc.Strings("tags"))

	assert.Equal(t, 0, doc.Int("missing"))
	assert.Equal(t, 0, doc.Int("lr"), "fractional numbers are not ints")
	assert.Equal(t, "", doc.String("b"))
	assert.False(t, doc.Bool("a"))
	assert.Nil(t, doc.Strings("a"))
}

func TestDocument_IntFromJSONFloat(t *testing.T) {
	doc := New(map[string]any{"epochs": float64(20), "n": json.Number("7")})

	assert.Equal(t, 20, doc.Int("epochs"))
	assert.Equal(t, 7, doc.Int("n"))
}

func TestDocument_Sub(t *testing.T) {
	doc := sampleDoc()

	sub, ok := doc.Sub("b")
	require.True(t, ok)
	assert.Equal(t, 2, sub.Int("c"))
	assert.Equal(t, []string{"c", "d"}, sub.Keys())

	_, ok = doc.Sub("a")
	assert.False(t, ok)
}

func TestDocument_LookupFold(t *testing.T) {
	doc := sampleDoc()

	v, ok := doc.LookupFold("alpha")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)

	v, ok = doc.LookupFold("B.C")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = doc.Get("alpha")
	assert.False(t, ok, "plain lookup is case-sensitive")
}

func TestDocument_Immutable(t *testing.T) {
	input := map[string]any{"b": map[string]any{"c": 2}}
	doc := New(input)

	// Mutating the input after construction must not leak in.
	input["b"].(map[string]any)["c"] = 99
	assert.Equal(t, 2, doc.Int("b.c"))

	// Mutating returned values must not leak in either.
	v, _ := doc.Get("b")
	v.(map[string]any)["c"] = 100
	m := doc.Map()
	m["b"].(map[string]any)["c"] = 101
	assert.Equal(t, 2, doc.Int("b.c"))
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		ok   bool
	}{
		{"mapping", map[string]any{"a": 1}, true},
		{"non-string keys", map[any]any{1: "one", "two": 2}, true},
		{"scalar", "hello", false},
		{"sequence", []any{1, 2}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := FromValue(tt.in)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFromValue_NormalizesKeys(t *testing.T) {
	doc, ok := FromValue(map[any]any{1: "one", "nested": map[any]any{true: "yes"}})
	require.True(t, ok)

	assert.Equal(t, "one", doc.String("1"))
	assert.Equal(t, "yes", doc.String("nested.true"))
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc := New(map[string]any{"a": 1, "b": map[string]any{"c": "x"}})

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":{"c":"x"}}`, string(data))
}
