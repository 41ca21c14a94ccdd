package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataSetsListShape(t *testing.T) {
	input := `
- username: u1
  password: p1
- username: u2
  password: p2
`
	sets, err := ParseDataSets([]byte(input))
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "", sets[0].Name)
	assert.Equal(t, ldvalue.String("u1"), sets[0].Values["username"])
	assert.Equal(t, ldvalue.String("p2"), sets[1].Values["password"])
}

func TestParseDataSetsNamedShape(t *testing.T) {
	input := `
valid_user:
  username: u1
locked_user:
  username: u2
  attempts: 3
`
	sets, err := ParseDataSets([]byte(input))
	require.NoError(t, err)
	require.Len(t, sets, 2)
	// named sets come back ordered by name
	assert.Equal(t, "locked_user", sets[0].Name)
	assert.Equal(t, ldvalue.Int(3), sets[0].Values["attempts"])
	assert.Equal(t, "valid_user", sets[1].Name)
	assert.Equal(t, ldvalue.String("u1"), sets[1].Values["username"])
}

func TestParseDataSetsJSONInput(t *testing.T) {
	sets, err := ParseDataSets([]byte(`[{"n": 1}, {"n": 2}]`))
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, ldvalue.Int(2), sets[1].Values["n"])
}

func TestParseDataSetsEmptyDocument(t *testing.T) {
	sets, err := ParseDataSets([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestParseDataSetsRejectsNonMappingItems(t *testing.T) {
	_, err := ParseDataSets([]byte(`["just-a-string"]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data set 1")

	_, err = ParseDataSets([]byte("broken:\n  - 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `data set "broken"`)
}

func TestParseDataSetsRejectsScalarDocument(t *testing.T) {
	_, err := ParseDataSets([]byte(`"hello"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a list or mapping")
}

func TestLoadDataSetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- username: u1\n"), 0600))

	sets, err := LoadDataSetsFile(path)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, ldvalue.String("u1"), sets[0].Values["username"])

	_, err = LoadDataSetsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
