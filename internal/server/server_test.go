package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

func ptr(f float64) *float64 { return &f }

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	groups := []*model.LocationGroup{
		{
			Name: "GOLDEN WOK",
			Address: model.Address{
				Full: "12 George Street, Sydney, 2000",
				Lat:  ptr(-33.8688),
				Lon:  ptr(151.2093),
			},
			Penalties: []*model.Notice{{PenaltyNoticeNumber: "3000000001", Name: "GOLDEN WOK"}},
		},
	}
	require.NoError(t, dataset.SaveGroups(filepath.Join(dir, "groups.json"), groups))

	failed := []model.FailedGeocode{
		{PenaltyNoticeNumber: "3000000009", Name: "CORNER CAFE", Address: "nowhere", VariantsTried: []string{"nowhere, NSW, Australia"}},
	}
	require.NoError(t, dataset.SaveFailed(filepath.Join(dir, "failed.json"), failed))

	return New(filepath.Join(dir, "groups.json"), filepath.Join(dir, "failed.json"), ""), dir
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s.Router(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLocations(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s.Router(), "/api/locations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var groups []*model.LocationGroup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "GOLDEN WOK", groups[0].Name)
	require.Len(t, groups[0].Penalties, 1)
}

func TestLocationsGeoJSON(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s.Router(), "/api/locations/geojson")
	require.Equal(t, http.StatusOK, rec.Code)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, []float64{151.2093, -33.8688}, fc.Features[0].Geometry.Coordinates)
}

func TestFailed(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	rec := doGet(t, s.Router(), "/api/failed")
	require.Equal(t, http.StatusOK, rec.Code)

	var failed []model.FailedGeocode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failed))
	require.Len(t, failed, 1)
	assert.Equal(t, "3000000009", failed[0].PenaltyNoticeNumber)
}

func TestMissingFilesServeEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(filepath.Join(dir, "none.json"), filepath.Join(dir, "none2.json"), "")
	router := s.Router()

	rec := doGet(t, router, "/api/locations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doGet(t, router, "/api/failed")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doGet(t, router, "/api/locations/geojson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FeatureCollection")
}

func TestCORSHeaders(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFrontend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>map</html>"), 0o644))

	s := New(filepath.Join(dir, "g.json"), filepath.Join(dir, "f.json"), dir)
	rec := doGet(t, s.Router(), "/index.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "map")
}
