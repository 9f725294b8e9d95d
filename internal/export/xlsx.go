package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

var failedHeader = []string{"Penalty notice", "Name", "Address", "Variants tried"}

// FailedWorkbook builds a review spreadsheet listing every notice that
// could not be geocoded, one row per notice with the variants that were
// attempted.
func FailedWorkbook(failed []model.FailedGeocode) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Failed geocoding")
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range failedHeader {
		header.AddCell().Value = h
	}

	for _, fg := range failed {
		row := sheet.AddRow()
		row.AddCell().Value = fg.PenaltyNoticeNumber
		row.AddCell().Value = fg.Name
		row.AddCell().Value = fg.Address
		row.AddCell().Value = strings.Join(fg.VariantsTried, "\n")
	}
	return f, nil
}

// WriteFailedXLSX writes the failed-geocoding review workbook to path.
func WriteFailedXLSX(path string, failed []model.FailedGeocode) error {
	f, err := FailedWorkbook(failed)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
