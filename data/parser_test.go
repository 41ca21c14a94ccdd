package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	var target map[string]interface{}
	require.NoError(t, ParseJSONOrYAML([]byte(`{"a": 1, "b": "two"}`), &target))
	assert.Equal(t, map[string]interface{}{"a": float64(1), "b": "two"}, target)
}

func TestParseYAML(t *testing.T) {
	var target map[string]interface{}
	require.NoError(t, ParseJSONOrYAML([]byte("a: 1\nb: two\n"), &target))
	assert.Equal(t, map[string]interface{}{"a": float64(1), "b": "two"}, target)
}

func TestParseYAMLNestedStructures(t *testing.T) {
	input := `
users:
  - name: u1
    admin: true
  - name: u2
`
	var target map[string]interface{}
	require.NoError(t, ParseJSONOrYAML([]byte(input), &target))
	users, ok := target["users"].([]interface{})
	require.True(t, ok)
	require.Len(t, users, 2)
	first := users[0].(map[string]interface{})
	assert.Equal(t, "u1", first["name"])
	assert.Equal(t, true, first["admin"])
}

func TestParseMalformedInputFails(t *testing.T) {
	var target map[string]interface{}
	assert.Error(t, ParseJSONOrYAML([]byte("{not json\n\t- not yaml either: ["), &target))
}
