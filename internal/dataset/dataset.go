// Package dataset reads and writes the pipeline's published JSON files:
// the notices dataset keyed by notice number, the grouped locations array,
// and the failed-geocoding report.
package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// LoadNotices reads the notices dataset. The file is a JSON object keyed by
// penalty notice number.
func LoadNotices(path string) (map[string]*model.Notice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	var notices map[string]*model.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	if notices == nil {
		notices = make(map[string]*model.Notice)
	}
	return notices, nil
}

// LoadNoticesOrEmpty is LoadNotices, except a missing file is an empty
// dataset. Used by stages that create the file on first run.
func LoadNoticesOrEmpty(path string) (map[string]*model.Notice, error) {
	notices, err := LoadNotices(path)
	if err != nil && os.IsNotExist(eris.Cause(err)) {
		return make(map[string]*model.Notice), nil
	}
	return notices, err
}

// SaveNotices writes the notices dataset.
func SaveNotices(path string, notices map[string]*model.Notice) error {
	if notices == nil {
		notices = make(map[string]*model.Notice)
	}
	return writeJSON(path, notices)
}

// LoadGroups reads the grouped locations array.
func LoadGroups(path string) ([]*model.LocationGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	var groups []*model.LocationGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	return groups, nil
}

// SaveGroups writes the grouped locations array. A nil slice is written as
// an empty array, never null.
func SaveGroups(path string, groups []*model.LocationGroup) error {
	if groups == nil {
		groups = []*model.LocationGroup{}
	}
	return writeJSON(path, groups)
}

// LoadFailed reads the failed-geocoding report.
func LoadFailed(path string) ([]model.FailedGeocode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", path)
	}

	var failed []model.FailedGeocode
	if err := json.Unmarshal(data, &failed); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	return failed, nil
}

// SaveFailed writes the failed-geocoding report.
func SaveFailed(path string, failed []model.FailedGeocode) error {
	if failed == nil {
		failed = []model.FailedGeocode{}
	}
	return writeJSON(path, failed)
}

// CopyFile copies src to dst, replacing dst if it exists.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return eris.Wrapf(err, "dataset: read %s", src)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return eris.Wrapf(err, "dataset: write %s", dst)
	}
	return nil
}

// writeJSON writes v as two-space-indented JSON. HTML escaping is off so
// names like "J & K FOODS" stay literal in the published files. The write
// goes to a temp file in the target directory and renames over the
// destination, so a crash mid-encode never leaves a truncated dataset.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return eris.Wrapf(err, "dataset: create temp for %s", path)
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrapf(err, "dataset: write %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "dataset: close %s", tmp)
	}

	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "dataset: rename %s", path)
	}
	return nil
}
