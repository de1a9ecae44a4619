package frame

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/logger"
)

// ReadCSV loads a Frame from CSV data whose first record is the header row.
// Jagged records are tolerated (short rows pad with nil) and rows where every
// cell is blank are dropped, the same way the loader treats vendor exports.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // vendor files are jagged; pad or truncate per row.
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read csv input")
	}
	if len(records) == 0 {
		return nil, errors.New("csv input has no header row")
	}
	f := New(records[0])
	for _, rec := range records[1:] {
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

// ReadCSVFile loads a Frame from the CSV file at path.
func ReadCSVFile(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open csv file %q", path)
	}
	defer fh.Close()
	return ReadCSV(fh)
}

// WriteCSV emits the frame as CSV with a header row. Nil cells become empty
// strings, dates render as calendar dates and floats keep their decimals.
func (f *Frame) WriteCSV(log logger.Logger, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.cols); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}
	rec := make([]string, len(f.cols))
	for _, row := range f.rows {
		for i, cell := range row {
			rec[i] = helper.GetStringFromInterface(log, cell)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv output")
}

// WriteCSVFile writes the frame to the file at path, replacing it.
func (f *Frame) WriteCSVFile(log logger.Logger, path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create csv file %q", path)
	}
	defer fh.Close()
	return f.WriteCSV(log, fh)
}

func rowIsEmpty(rec []string) bool {
	for _, cell := range rec {
		if cell != "" {
			return false
		}
	}
	return true
}
