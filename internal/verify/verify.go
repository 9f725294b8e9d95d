// Package verify runs consistency checks over the pipeline output:
// every geocoded notice must land in exactly one group, and groups that
// look like accidental splits of the same premises are flagged.
package verify

import (
	"fmt"

	"github.com/foodwatch-nsw/offences-cli/internal/address"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
	"github.com/foodwatch-nsw/offences-cli/internal/similarity"
)

// splitSuspectThreshold flags group pairs at the same coordinates whose
// names are more than half similar. These are usually the same premises
// split by a renamed business.
const splitSuspectThreshold = 0.5

// Issue is a single finding from one of the checks.
type Issue struct {
	Check   string `json:"check"`
	Message string `json:"message"`
}

// Report collects the findings of all checks.
type Report struct {
	Notices      int     `json:"notices"`
	Geocoded     int     `json:"geocoded"`
	Groups       int     `json:"groups"`
	GroupMembers int     `json:"group_members"`
	Issues       []Issue `json:"issues,omitempty"`
}

// OK reports whether all checks passed.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

func (r *Report) add(check, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Check: check, Message: fmt.Sprintf(format, args...)})
}

// Run checks the grouped output against the notice dataset. The expander
// normalizes street abbreviations for the same-address check.
func Run(notices map[string]*model.Notice, groups []*model.LocationGroup, exp *address.Expander) *Report {
	r := &Report{Notices: len(notices), Groups: len(groups)}

	inGroups := make(map[string][]string)
	for _, g := range groups {
		for _, p := range g.Penalties {
			r.GroupMembers++
			if p.PenaltyNoticeNumber != "" {
				inGroups[p.PenaltyNoticeNumber] = append(inGroups[p.PenaltyNoticeNumber], g.Name)
			}
		}
	}

	checkMissing(r, notices, inGroups)
	checkDuplicateCoordinates(r, groups)
	checkSameAddress(r, groups, exp)
	checkSimilarNames(r, groups)
	checkMemberCount(r)
	checkDuplicateMembers(r, inGroups)
	return r
}

// checkMissing verifies every geocoded notice appears in some group.
func checkMissing(r *Report, notices map[string]*model.Notice, inGroups map[string][]string) {
	for _, n := range notices {
		if !n.Geocoded() {
			continue
		}
		r.Geocoded++
		if _, ok := inGroups[n.PenaltyNoticeNumber]; !ok {
			r.add("missing", "geocoded notice %s (%s) is not in any group", n.PenaltyNoticeNumber, n.Name)
		}
	}
}

// checkDuplicateCoordinates flags distinct groups pinned to the same spot.
func checkDuplicateCoordinates(r *Report, groups []*model.LocationGroup) {
	seen := make(map[[2]float64]string)
	for _, g := range groups {
		if g.Address.Lat == nil || g.Address.Lon == nil {
			continue
		}
		key := [2]float64{roundCoord(*g.Address.Lat), roundCoord(*g.Address.Lon)}
		if prev, ok := seen[key]; ok {
			r.add("duplicate-coordinates", "groups %q and %q share coordinates (%.4f, %.4f)", prev, g.Name, key[0], key[1])
			continue
		}
		seen[key] = g.Name
	}
}

// checkSameAddress flags distinct groups whose addresses compare equal once
// street abbreviations are expanded. The source spells "St" one week and
// "Street" the next, and differing geocoder hits then split the premises
// across groups without tripping the coordinate check.
func checkSameAddress(r *Report, groups []*model.LocationGroup, exp *address.Expander) {
	seen := make(map[string]string)
	for _, g := range groups {
		form := exp.ComparisonForm(g.Address)
		if form == "" {
			continue
		}
		if prev, ok := seen[form]; ok {
			r.add("same-address", "groups %q and %q share address %q", prev, g.Name, form)
			continue
		}
		seen[form] = g.Name
	}
}

// checkSimilarNames flags co-located group pairs with suspiciously
// similar names.
func checkSimilarNames(r *Report, groups []*model.LocationGroup) {
	for i, a := range groups {
		if a.Address.Lat == nil || a.Address.Lon == nil {
			continue
		}
		for _, b := range groups[i+1:] {
			if b.Address.Lat == nil || b.Address.Lon == nil {
				continue
			}
			if !similarity.CoordinatesMatch(*a.Address.Lat, *a.Address.Lon, *b.Address.Lat, *b.Address.Lon) {
				continue
			}
			if score := similarity.Name(a.Name, b.Name); score > splitSuspectThreshold {
				r.add("similar-names", "groups %q and %q are co-located with %.0f%% name similarity", a.Name, b.Name, score*100)
			}
		}
	}
}

// checkMemberCount verifies group membership adds up to the geocoded
// notice count.
func checkMemberCount(r *Report) {
	if r.GroupMembers != r.Geocoded {
		r.add("member-count", "%d notices in groups but %d geocoded notices", r.GroupMembers, r.Geocoded)
	}
}

// checkDuplicateMembers verifies no notice appears in more than one group.
func checkDuplicateMembers(r *Report, inGroups map[string][]string) {
	for id, names := range inGroups {
		if len(names) > 1 {
			r.add("duplicate-member", "notice %s appears in %d groups", id, len(names))
		}
	}
}

func roundCoord(v float64) float64 {
	// Four decimal places, matching the grouping epsilon.
	const scale = 10000
	if v < 0 {
		return float64(int64(v*scale-0.5)) / scale
	}
	return float64(int64(v*scale+0.5)) / scale
}
