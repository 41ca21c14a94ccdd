package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFiltersDefaultMatchesEverything(t *testing.T) {
	var f RegexFilters
	assert.False(t, f.IsDefined())
	assert.True(t, f.Match("test_anything"))
}

func TestRegexFiltersMustMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("^test_login"))
	assert.True(t, f.Match("test_login_ok"))
	assert.False(t, f.Match("test_search"))
}

func TestRegexFiltersMustNotMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustNotMatch.Set("slow"))
	assert.True(t, f.Match("test_fast"))
	assert.False(t, f.Match("test_slow_checkout"))
}

func TestRegexFiltersCombined(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("^test_"))
	require.NoError(t, f.MustNotMatch.Set("quarantine"))
	assert.True(t, f.Match("test_checkout"))
	assert.False(t, f.Match("test_quarantine_checkout"))
}

func TestPatternListRejectsInvalidRegex(t *testing.T) {
	var l PatternList
	assert.Error(t, l.Set("("))
	assert.False(t, l.IsDefined())
}

func TestPatternListString(t *testing.T) {
	var l PatternList
	require.NoError(t, l.Set("a"))
	require.NoError(t, l.Set("b.*c"))
	assert.Equal(t, `"a" or "b.*c"`, l.String())
}
