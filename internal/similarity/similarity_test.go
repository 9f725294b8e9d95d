package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameIdentical(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, Name("GOLDEN WOK", "GOLDEN WOK"), 1e-12)
	assert.InDelta(t, 1.0, Name("golden wok", "  GOLDEN WOK  "), 1e-12)
}

func TestNameEmpty(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Name("", "GOLDEN WOK"))
	assert.Zero(t, Name("GOLDEN WOK", ""))
	assert.Zero(t, Name("   ", "GOLDEN WOK"))
	assert.Zero(t, Name("", ""))
}

func TestNameSubstringFloor(t *testing.T) {
	t.Parallel()

	// 9 of 26 characters covered: coverage is low, so the floor applies.
	got := Name("O'CHICKEN", "O'CHICKEN MACARTHUR SQUARE")
	assert.InDelta(t, 0.70, got, 1e-12)

	// Symmetric.
	assert.InDelta(t, got, Name("O'CHICKEN MACARTHUR SQUARE", "O'CHICKEN"), 1e-12)
}

func TestNameSubstringCoverage(t *testing.T) {
	t.Parallel()

	// 12 of 14 characters covered: coverage beats the floor.
	got := Name("PIZZA PALACE", "PIZZA PALACE P")
	assert.InDelta(t, 12.0/14.0, got, 1e-12)
}

func TestNameSequenceRatio(t *testing.T) {
	t.Parallel()

	// No containment: Ratcliff/Obershelp over characters.
	// "GOLDEN WOK" vs "GOLDEN WOT" share a 9-char block out of 20 total.
	assert.InDelta(t, 0.9, Name("GOLDEN WOK", "GOLDEN WOT"), 1e-12)

	// Disjoint alphabets score zero.
	assert.InDelta(t, 0.0, Name("KFC", "SUBWAY"), 1e-12)
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GOLDEN WOK", NormalizeName("  golden wok "))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestPartyIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"GOLDEN WOK PTY LTD", "GOLDEN WOK"},
		{"Golden Wok Pty Ltd", "GOLDEN WOK"},
		{"ACME PTY. LTD.", "ACME"},
		{"ACME LIMITED", "ACME"},
		{"ACME PTY", "ACME"},
		{"SMITH HOLDINGS", "SMITH HOLDINGS"},
		{"  spaced out  ", "SPACED OUT"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, PartyIdentity(tt.in))
		})
	}
}

func TestSameParty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"suffix stripped", "GOLDEN WOK PTY LTD", "GOLDEN WOK", true},
		{"different suffixes", "J & L CATERING PTY LTD", "J & L Catering Limited", true},
		{"different entities", "SMITH HOLDINGS", "JONES HOLDINGS", false},
		{"both empty", "", "", false},
		{"one empty", "GOLDEN WOK", "", false},
		{"whitespace only", "   ", "GOLDEN WOK", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SameParty(tt.a, tt.b))
		})
	}
}

func TestCoordinatesMatch(t *testing.T) {
	t.Parallel()

	assert.True(t, CoordinatesMatch(-33.8688, 151.2093, -33.8688, 151.2093))
	assert.True(t, CoordinatesMatch(-33.86880, 151.20930, -33.86883, 151.20928))

	// Clearly different premises.
	assert.False(t, CoordinatesMatch(-33.8688, 151.2093, -33.8788, 151.2093))
	assert.False(t, CoordinatesMatch(-33.8688, 151.2093, -33.8688, 151.2193))

	// The comparison is strict: a delta of exactly epsilon is a miss, and
	// both axes must be inside.
	assert.False(t, CoordinatesMatch(0, 0, CoordinateEpsilon, 0))
	assert.False(t, CoordinatesMatch(0, 0, 0, CoordinateEpsilon))
	assert.True(t, CoordinatesMatch(0, 0, CoordinateEpsilon/2, CoordinateEpsilon/2))
}
