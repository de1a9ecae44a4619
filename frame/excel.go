package frame

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ReadExcelFile loads a Frame from the first sheet of an xlsx workbook.
// The first populated row is the header; fully blank rows are dropped.
func ReadExcelFile(path string) (*Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %q", path)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Errorf("workbook %q has no sheets", path)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("sheet %q has no header row", sheets[0])
	}
	f := New(rows[0])
	for _, rec := range rows[1:] {
		if rowIsEmpty(rec) {
			continue
		}
		vals := make([]interface{}, len(rec))
		for i, cell := range rec {
			if cell == "" {
				vals[i] = nil
			} else {
				vals[i] = cell
			}
		}
		f.AppendRow(vals)
	}
	return f, nil
}
