package feeds

import (
	"time"

	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/frame"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/logger"
)

// Source column names of the rx detail feed, as exported by the vendor.
const (
	colPatientID      = "De-identified Patient ID"
	colRxNumber       = "Rx Number"
	colReceivedDate   = "Received Date"
	colDispenseDate   = "Dispense Date"
	colSerial         = "Serial #"
	colTotalFills     = "Total Fills"
	colFillsDispensed = "Fills Dispensed"
	colFillRemaining  = "Fill Remaining"
	colProviderZip    = "Provider Zip Code"
	colProviderNPI    = "Provider NPI"
	colRegion         = "Region"
	colPatientOOP     = "Patient OOP"
	colCopay          = "Copay"
	colDateWritten    = "Date Written"
	colNDC            = "NDC"
	colModifiedSerial = "modified_serial_id"
)

// Columns the rx pipeline touches by name. The remaining source columns ride
// through untouched and are only relabelled by the final positional rename.
var rxRequiredColumns = []string{
	colPatientID, colRxNumber, colReceivedDate, colDispenseDate, colSerial,
	colTotalFills, colFillsDispensed, colFillRemaining, colProviderZip,
	colProviderNPI, colRegion, colPatientOOP, colCopay, colDateWritten, colNDC,
}

// NormalizeRxProcare reshapes a raw rx detail frame into SchemaRxProcare.
//
// The final step is a positional rename: the vendor contract fixes the source
// column order, so columns are relabelled by position, not by name. The column
// count precondition is the guard against a layout drift silently mislabelling
// data; a mismatch is a SchemaError, never a silent load.
func NormalizeRxProcare(log logger.Logger, f *frame.Frame, snapshot time.Time) (*frame.Frame, error) {
	if missing := f.Missing(rxRequiredColumns); len(missing) > 0 {
		return nil, &SchemaError{Feed: FeedRxProcare, Err: &frame.MissingColumnsError{Columns: missing}}
	}

	mustApply := func(col string, fn func(v interface{}) interface{}) {
		_ = f.Apply(col, fn) // presence checked above.
	}

	mustApply(colProviderNPI, func(v interface{}) interface{} { return helper.ExtractDigitsOrDefault(v, 0) })
	mustApply(colTotalFills, func(v interface{}) interface{} { return helper.ToIntOrDefault(v, 0) })
	mustApply(colFillsDispensed, func(v interface{}) interface{} { return helper.ToIntOrDefault(v, 0) })
	mustApply(colFillRemaining, func(v interface{}) interface{} { return helper.ToIntOrDefault(v, 0) })
	mustApply(colRxNumber, func(v interface{}) interface{} { return helper.ToIntOrDefault(v, 0) })
	mustApply(colProviderZip, func(v interface{}) interface{} { return helper.ToNumericIntOrDefault(v, 0) })
	mustApply(colPatientOOP, func(v interface{}) interface{} { return helper.ParseCurrency(v) })
	mustApply(colCopay, func(v interface{}) interface{} { return helper.ParseCurrency(v) })
	mustApply(colRegion, func(v interface{}) interface{} {
		if helper.IsBlank(v) {
			return constants.RegionEmptyValue
		}
		return helper.GetStringFromInterface(log, v)
	})
	for _, dateCol := range []string{colReceivedDate, colDispenseDate, colDateWritten} {
		mustApply(dateCol, func(v interface{}) interface{} {
			if t, ok := helper.ParseDateValue(v); ok {
				return t
			}
			return nil
		})
	}
	mustApply(colSerial, CleanSerial)

	// Seed modified_serial_id with each row's own serial, then let the linker
	// overwrite the rows it can attribute to an original prescription.
	if err := f.AddColumn(colModifiedSerial, nil); err != nil {
		return nil, errors.Wrap(err, "failed to derive modified_serial_id")
	}
	for r := 0; r < f.NumRows(); r++ {
		v, _ := f.Value(r, colSerial)
		_ = f.Set(r, colModifiedSerial, v)
	}
	if err := LinkRefills(f); err != nil {
		return nil, err
	}

	if err := f.AddColumn(constants.SnapshotColumnName, helper.DateOnly(snapshot)); err != nil {
		return nil, errors.Wrap(err, "failed to stamp snapshot date")
	}

	if err := f.SetColumns(SchemaRxProcare); err != nil {
		return nil, &SchemaError{Feed: FeedRxProcare, Err: err}
	}
	return f, nil
}
