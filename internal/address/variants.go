// Package address generates the lookup variants and comparison forms of
// scraped premises addresses. Scraped addresses carry shop numbers, unit
// prefixes and level markers that geocoders choke on; variants progressively
// strip the front of the address while enough of it remains to identify a
// location.
package address

import (
	"regexp"
	"strings"
)

// minTokens is the smallest number of tokens a variant may have. Suffixes
// shorter than this stop carrying enough information (street, suburb,
// postcode) to geocode safely.
const minTokens = 4

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	tokenSplit    = regexp.MustCompile(`[,\s/\-]+`)
)

// Normalize returns the canonical comparison form of an address: trimmed,
// uppercased, whitespace runs collapsed. Cache lookups and variant
// deduplication both key on this form.
func Normalize(addr string) string {
	return whitespaceRun.ReplaceAllString(strings.ToUpper(strings.TrimSpace(addr)), " ")
}

// Variants generates the geocoding candidates for a full address, most
// specific first. The input is always the first element, so callers can feed
// the result straight to a provider loop.
//
// The scan walks left to right. Each delimiter opens a candidate suffix
// (everything after it, trimmed); a suffix with at least minTokens tokens
// becomes the next variant and the scan restarts on it, otherwise the scan
// ends. Duplicates are dropped on their normalized form, first seen wins.
func Variants(full string) []string {
	variants := []string{full}

	current := full
	for i := 0; i < len(current); {
		if !isDelimiter(current[i]) {
			i++
			continue
		}
		remaining := strings.TrimSpace(current[i+1:])
		if len(tokenize(remaining)) < minTokens {
			break
		}
		if remaining != "" && remaining != full {
			variants = append(variants, remaining)
		}
		current = remaining
		i = 0
	}

	return dedupe(variants)
}

// isDelimiter reports whether c can open a candidate suffix. Delimiters are
// ASCII, so a byte scan is safe on UTF-8 input.
func isDelimiter(c byte) bool {
	switch c {
	case ',', '/', '-', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func tokenize(s string) []string {
	var out []string
	for _, t := range tokenSplit.Split(s, -1) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(variants []string) []string {
	seen := make(map[string]struct{}, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		key := Normalize(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
