// Package export renders grouped pipeline output into interchange formats:
// GeoJSON for mapping tools and XLSX for operator review.
package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// GroupsFeatureCollection converts location groups into a GeoJSON
// FeatureCollection, one Point feature per group. Groups without
// coordinates are skipped.
func GroupsFeatureCollection(groups []*model.LocationGroup) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, g := range groups {
		if g.Address.Lat == nil || g.Address.Lon == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{*g.Address.Lon, *g.Address.Lat}).SetSRID(4326),
			Properties: groupProperties(g),
		})
	}
	return fc
}

func groupProperties(g *model.LocationGroup) map[string]interface{} {
	props := map[string]interface{}{
		"name":          g.Name,
		"address":       g.Address.Full,
		"penalty_count": len(g.Penalties),
	}
	if g.Council != "" {
		props["council"] = g.Council
	}
	if g.PartyServed != "" {
		props["party_served"] = g.PartyServed
	}
	if latest := latestIssueDate(g.Penalties); latest != "" {
		props["latest_issue"] = latest
	}
	return props
}

// latestIssueDate returns the most recent issue date among the group's
// notices. Dates are ISO 8601 strings, so lexical comparison is enough.
func latestIssueDate(notices []*model.Notice) string {
	var latest string
	for _, n := range notices {
		if n.DateIssued > latest {
			latest = n.DateIssued
		}
	}
	return latest
}

// WriteGroupsGeoJSON writes the groups as a GeoJSON file.
func WriteGroupsGeoJSON(path string, groups []*model.LocationGroup) error {
	data, err := json.MarshalIndent(GroupsFeatureCollection(groups), "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
