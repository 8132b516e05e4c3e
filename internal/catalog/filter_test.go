// AngelaMos | 2026
// filter_test.go

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDListEmptyMeansUnfiltered(t *testing.T) {
	// Absent and empty are the same thing: no filter.
	for _, raw := range []string{"", "   "} {
		ids, err := ParseIDList(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Nil(t, ids, "input %q", raw)
	}
}

func TestParseIDListValues(t *testing.T) {
	ids, err := ParseIDList("3, 1,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestParseIDListDedupes(t *testing.T) {
	ids, err := ParseIDList("2,2,1,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestParseIDListAcceptsAnyInteger(t *testing.T) {
	// Ids that resolve to nothing are a filter that matches nothing,
	// not a validation error.
	ids, err := ParseIDList("0,-1,7")
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 0, 7}, ids)
}

func TestParseIDListRejectsBadTokens(t *testing.T) {
	for _, raw := range []string{"a", "1,b", "1,,2", "1.5"} {
		_, err := ParseIDList(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
