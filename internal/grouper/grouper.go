// Package grouper folds geocoded notices into one entry per premises,
// matching on coordinate proximity backed by name and served-party signals.
package grouper

import (
	"sort"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
	"github.com/foodwatch-nsw/offences-cli/internal/similarity"
)

const (
	// exactCoordsThreshold is the name similarity needed to join a group
	// whose coordinates already match. Matching coordinates strongly
	// suggest the same premises, so the bar is low.
	exactCoordsThreshold = 0.60

	// strictThreshold is reserved for matching across differing
	// coordinates, where the name has to carry the decision alone.
	strictThreshold = 0.85
)

// Result carries the grouped locations and how many notices were left out
// for missing coordinates.
type Result struct {
	Groups  []*model.LocationGroup
	Skipped int
}

// Group folds notices into location groups. Notices are visited in id order
// and matched against existing groups in creation order; the first group
// that matches wins. Ungeocoded notices are skipped and counted.
func Group(notices map[string]*model.Notice) Result {
	ids := make([]string, 0, len(notices))
	for id := range notices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var groups []*model.LocationGroup
	skipped := 0

	for _, id := range ids {
		n := notices[id]
		if !n.Geocoded() {
			skipped++
			continue
		}

		g := findGroup(groups, n)
		if g == nil {
			groups = append(groups, newGroup(n))
			continue
		}

		g.Penalties = append(g.Penalties, n.Clone())
		if g.PartyServed == "" && n.PartyServed != "" {
			g.PartyServed = n.PartyServed
		}
	}

	sortGroups(groups)
	return Result{Groups: groups, Skipped: skipped}
}

// findGroup returns the first group n belongs to, or nil. A notice joins a
// group only when the coordinates agree; from there either the served
// parties name the same entity, or the business names are similar enough
// and the served parties don't name different entities.
func findGroup(groups []*model.LocationGroup, n *model.Notice) *model.LocationGroup {
	lat, lon := n.Coordinates()

	for _, g := range groups {
		if !similarity.CoordinatesMatch(lat, lon, *g.Address.Lat, *g.Address.Lon) {
			continue
		}

		if similarity.SameParty(n.PartyServed, g.PartyServed) {
			return g
		}

		score := similarity.Name(n.Name, g.Name)
		if score >= exactCoordsThreshold && !partyMismatch(n.PartyServed, g.PartyServed) {
			return g
		}
	}
	return nil
}

// partyMismatch reports whether a and b name different served entities.
// Empty or suffix-only parties never mismatch.
func partyMismatch(a, b string) bool {
	ia := similarity.PartyIdentity(a)
	ib := similarity.PartyIdentity(b)
	return ia != "" && ib != "" && ia != ib
}

func newGroup(n *model.Notice) *model.LocationGroup {
	return &model.LocationGroup{
		Name:        n.Name,
		Address:     n.Address.Clone(),
		Council:     n.Council,
		PartyServed: n.PartyServed,
		Penalties:   []*model.Notice{n.Clone()},
	}
}

// sortGroups orders groups by normalized name and each group's penalties by
// issue date, most recent first. Undated penalties sort last.
func sortGroups(groups []*model.LocationGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return similarity.NormalizeName(groups[i].Name) < similarity.NormalizeName(groups[j].Name)
	})

	for _, g := range groups {
		penalties := g.Penalties
		sort.SliceStable(penalties, func(i, j int) bool {
			return penalties[i].DateIssued > penalties[j].DateIssued
		})
	}
}
