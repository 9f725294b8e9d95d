package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwatch-nsw/offences-cli/internal/address"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

func geocodedNotice(id, name string, lat, lon float64) *model.Notice {
	n := &model.Notice{PenaltyNoticeNumber: id, Name: name}
	n.SetCoordinates(lat, lon)
	return n
}

func groupOf(name string, lat, lon float64, members ...*model.Notice) *model.LocationGroup {
	return &model.LocationGroup{
		Name:      name,
		Address:   model.Address{Lat: &lat, Lon: &lon},
		Penalties: members,
	}
}

func TestRun_CleanPipeline(t *testing.T) {
	t.Parallel()

	a := geocodedNotice("1", "GOLDEN WOK", -33.8688, 151.2093)
	b := geocodedNotice("2", "HARBOUR GRILL", -33.9000, 151.2000)
	notices := map[string]*model.Notice{
		"1": a,
		"2": b,
		"3": {PenaltyNoticeNumber: "3", Name: "UNGEOCODED"},
	}
	groups := []*model.LocationGroup{
		groupOf("GOLDEN WOK", -33.8688, 151.2093, a),
		groupOf("HARBOUR GRILL", -33.9000, 151.2000, b),
	}

	r := Run(notices, groups, address.NewExpander())
	assert.True(t, r.OK(), "issues: %v", r.Issues)
	assert.Equal(t, 3, r.Notices)
	assert.Equal(t, 2, r.Geocoded)
	assert.Equal(t, 2, r.Groups)
	assert.Equal(t, 2, r.GroupMembers)
}

func TestRun_MissingGeocodedNotice(t *testing.T) {
	t.Parallel()

	a := geocodedNotice("1", "GOLDEN WOK", -33.8688, 151.2093)
	b := geocodedNotice("2", "LOST CAFE", -33.9, 151.2)
	notices := map[string]*model.Notice{"1": a, "2": b}
	groups := []*model.LocationGroup{groupOf("GOLDEN WOK", -33.8688, 151.2093, a)}

	r := Run(notices, groups, address.NewExpander())
	require.False(t, r.OK())

	var checks []string
	for _, iss := range r.Issues {
		checks = append(checks, iss.Check)
	}
	assert.Contains(t, checks, "missing")
	// One notice missing also breaks the member count.
	assert.Contains(t, checks, "member-count")
}

func TestRun_DuplicateCoordinatesAndSimilarNames(t *testing.T) {
	t.Parallel()

	a := geocodedNotice("1", "GOLDEN WOK", -33.8688, 151.2093)
	b := geocodedNotice("2", "GOLDEN WOK RESTAURANT", -33.8688, 151.2093)
	notices := map[string]*model.Notice{"1": a, "2": b}
	groups := []*model.LocationGroup{
		groupOf("GOLDEN WOK", -33.8688, 151.2093, a),
		groupOf("GOLDEN WOK RESTAURANT", -33.8688, 151.2093, b),
	}

	r := Run(notices, groups, address.NewExpander())
	require.False(t, r.OK())

	var checks []string
	for _, iss := range r.Issues {
		checks = append(checks, iss.Check)
	}
	assert.Contains(t, checks, "duplicate-coordinates")
	assert.Contains(t, checks, "similar-names")
}

func TestRun_DuplicateMember(t *testing.T) {
	t.Parallel()

	a := geocodedNotice("1", "GOLDEN WOK", -33.8688, 151.2093)
	notices := map[string]*model.Notice{"1": a}
	groups := []*model.LocationGroup{
		groupOf("GOLDEN WOK", -33.8688, 151.2093, a),
		groupOf("GOLDEN WOK CITY", -34.0000, 151.0000, a),
	}

	r := Run(notices, groups, address.NewExpander())
	require.False(t, r.OK())

	var checks []string
	for _, iss := range r.Issues {
		checks = append(checks, iss.Check)
	}
	assert.Contains(t, checks, "duplicate-member")
}

func TestRun_SameAddressAfterExpansion(t *testing.T) {
	t.Parallel()

	a := geocodedNotice("1", "GOLDEN WOK", -33.8688, 151.2093)
	b := geocodedNotice("2", "THE NOODLE HOUSE", -33.9000, 151.2000)
	notices := map[string]*model.Notice{"1": a, "2": b}

	// Same premises, split by the abbreviated street type and a geocoder
	// disagreement on the coordinates.
	ga := groupOf("GOLDEN WOK", -33.8688, 151.2093, a)
	ga.Address.Street = "12 George St"
	ga.Address.City = "Sydney"
	ga.Address.PostalCode = "2000"
	gb := groupOf("THE NOODLE HOUSE", -33.9000, 151.2000, b)
	gb.Address.Street = "12 George Street"
	gb.Address.City = "Sydney"
	gb.Address.PostalCode = "2000"

	r := Run(notices, []*model.LocationGroup{ga, gb}, address.NewExpander())
	require.False(t, r.OK())

	var checks []string
	for _, iss := range r.Issues {
		checks = append(checks, iss.Check)
	}
	assert.Contains(t, checks, "same-address")
	assert.NotContains(t, checks, "duplicate-coordinates")
}

func TestRun_UngeocodedGroupsIgnored(t *testing.T) {
	t.Parallel()

	groups := []*model.LocationGroup{
		{Name: "NO COORDS A", Penalties: nil},
		{Name: "NO COORDS B", Penalties: nil},
	}

	r := Run(map[string]*model.Notice{}, groups, address.NewExpander())
	assert.True(t, r.OK(), "issues: %v", r.Issues)
}
