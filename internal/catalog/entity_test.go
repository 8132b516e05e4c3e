// AngelaMos | 2026
// entity_test.go

package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want Price
	}{
		{"0", 0},
		{"20", 2000},
		{"20.5", 2050},
		{"20.50", 2050},
		{"999.99", 99999},
		{"0.01", 1},
	}

	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParsePriceRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.", "-5", "-0.01"} {
		_, err := ParsePrice(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestPriceJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(Price(2050))
	require.NoError(t, err)
	assert.Equal(t, "20.50", string(out))

	out, err = json.Marshal(Price(5))
	require.NoError(t, err)
	assert.Equal(t, "0.05", string(out))

	var p Price
	require.NoError(t, json.Unmarshal([]byte("19.99"), &p))
	assert.Equal(t, Price(1999), p)

	// Clients sometimes send prices as strings; accept those too.
	require.NoError(t, json.Unmarshal([]byte(`"7.30"`), &p))
	assert.Equal(t, Price(730), p)
}
