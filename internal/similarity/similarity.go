// Package similarity scores how likely two notice records refer to the same
// business: fuzzy trade-name comparison, served-party identity, and
// coordinate proximity.
package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// CoordinateEpsilon is the per-axis tolerance, in degrees, under which two
// coordinates count as the same premises. Roughly 11 metres at the equator.
const CoordinateEpsilon = 0.0001

// substringFloor is the minimum score for a substring containment match.
// "O'CHICKEN" vs "O'CHICKEN MACARTHUR SQUARE" is the same business even
// though the raw sequence ratio says otherwise.
const substringFloor = 0.70

// partySuffixes are the corporate suffixes stripped before comparing served
// parties. Order matters: longer forms go before their prefixes.
var partySuffixes = []string{" PTY LTD", " PTY. LTD.", " PTY", " LTD", " LIMITED"}

// NormalizeName returns the comparison form of a trade name.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Name scores two trade names in [0, 1]. Either name empty scores 0. If one
// normalized name contains the other, the score is the covered fraction of
// the longer name, floored at substringFloor. Otherwise it is the
// Ratcliff/Obershelp ratio over characters.
func Name(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		la, lb := utf8.RuneCountInString(na), utf8.RuneCountInString(nb)
		longer, shorter := la, lb
		if lb > la {
			longer, shorter = lb, la
		}
		if longer > 0 {
			return math.Max(substringFloor, float64(shorter)/float64(longer))
		}
	}

	return difflib.NewMatcher(strings.Split(na, ""), strings.Split(nb, "")).Ratio()
}

// PartyIdentity reduces a served-party name to its comparable identity:
// uppercased, trimmed, corporate suffixes removed.
func PartyIdentity(party string) string {
	p := strings.ToUpper(strings.TrimSpace(party))
	for _, suffix := range partySuffixes {
		p = strings.ReplaceAll(p, suffix, "")
	}
	return strings.TrimSpace(p)
}

// SameParty reports whether two served parties identify the same legal
// entity. An empty identity on either side never matches.
func SameParty(a, b string) bool {
	pa, pb := PartyIdentity(a), PartyIdentity(b)
	return pa != "" && pb != "" && pa == pb
}

// CoordinatesMatch reports whether two points sit within CoordinateEpsilon
// on both axes. The comparison is strict, so a delta of exactly epsilon does
// not match.
func CoordinatesMatch(lat1, lon1, lat2, lon2 float64) bool {
	return math.Abs(lat1-lat2) < CoordinateEpsilon && math.Abs(lon1-lon2) < CoordinateEpsilon
}
