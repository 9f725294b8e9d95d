package address

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// defaultAbbreviations maps the street-type abbreviations seen in the
// scraped data to their full forms.
var defaultAbbreviations = map[string]string{
	"ST":   "STREET",
	"AVE":  "AVENUE",
	"RD":   "ROAD",
	"DR":   "DRIVE",
	"CT":   "COURT",
	"PL":   "PLACE",
	"CRES": "CRESCENT",
	"CR":   "CRESCENT",
}

// Expander rewrites abbreviated street types to their full forms so that
// "12 Smith St" and "12 Smith Street" compare equal. It is used for
// duplicate reporting, never for geocoding: providers handle abbreviations
// themselves, and rewriting queries would poison the cache keys.
type Expander struct {
	rules []expandRule
}

type expandRule struct {
	re   *regexp.Regexp
	full string
}

// NewExpander builds an Expander from the built-in abbreviation table.
func NewExpander() *Expander {
	return newExpander(defaultAbbreviations)
}

// LoadExpander reads an abbreviation table from a YAML file of the form
//
//	abbreviations:
//	  ST: STREET
//	  HWY: HIGHWAY
//
// and merges it over the built-in table.
func LoadExpander(path string) (*Expander, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "address: read abbreviations %s", path)
	}

	var wrapper struct {
		Abbreviations map[string]string `yaml:"abbreviations"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "address: parse abbreviations")
	}

	merged := make(map[string]string, len(defaultAbbreviations)+len(wrapper.Abbreviations))
	for k, v := range defaultAbbreviations {
		merged[k] = v
	}
	for k, v := range wrapper.Abbreviations {
		merged[k] = v
	}
	return newExpander(merged), nil
}

func newExpander(table map[string]string) *Expander {
	// Deterministic rule order; word boundaries keep overlapping keys
	// (CR vs CRES) from clobbering each other.
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e := &Expander{rules: make([]expandRule, 0, len(keys))}
	for _, k := range keys {
		e.rules = append(e.rules, expandRule{
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`),
			full: table[k],
		})
	}
	return e
}

// ExpandStreet uppercases a street line and expands abbreviated street types.
func (e *Expander) ExpandStreet(street string) string {
	s := Normalize(street)
	for _, r := range e.rules {
		s = r.re.ReplaceAllString(s, r.full)
	}
	return s
}

// ComparisonForm renders an address for exact duplicate comparison: expanded
// street, uppercased city and postcode, joined the way the dataset joins its
// full addresses.
func (e *Expander) ComparisonForm(addr model.Address) string {
	var parts []string
	if addr.Street != "" {
		parts = append(parts, e.ExpandStreet(addr.Street))
	}
	if addr.City != "" {
		parts = append(parts, Normalize(addr.City))
	}
	if addr.PostalCode != "" {
		parts = append(parts, Normalize(addr.PostalCode))
	}
	return strings.Join(parts, ", ")
}
