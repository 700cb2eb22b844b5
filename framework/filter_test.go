package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeID(s string) TestID { return TestID{Path: []string{s}} }

func TestRegexFiltersMatchEverythingByDefault(t *testing.T) {
	var f RegexFilters
	assert.True(t, f.AsFilter(makeID("anything")))
}

func TestRegexFiltersMustMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("visual"))
	assert.True(t, f.AsFilter(makeID("home page visual baseline")))
	assert.False(t, f.AsFilter(makeID("home page accessibility")))
}

func TestRegexFiltersMustNotMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustNotMatch.Set("accessibility"))
	assert.True(t, f.AsFilter(makeID("home page visual baseline")))
	assert.False(t, f.AsFilter(makeID("home page accessibility")))
}

func TestRegexFiltersMultiplePatterns(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("^a"))
	require.NoError(t, f.MustMatch.Set("^b"))
	assert.True(t, f.AsFilter(makeID("a1")))
	assert.True(t, f.AsFilter(makeID("b1")))
	assert.False(t, f.AsFilter(makeID("c1")))
}

func TestRegexListRejectsInvalidPattern(t *testing.T) {
	var l RegexList
	assert.Error(t, l.Set("("))
	assert.False(t, l.IsDefined())
}
