package feeds

import (
	"strings"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/frame"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/logger"
)

// Header separators the BI summary spreadsheet flips between from one export
// to the next, applied in this fixed order before the rename map.
var biHeaderReplacements = [][2]string{
	{"_ ", "_"},
	{" ", "_"},
	{"/", "_"},
	{"-", "_"},
	{" _", "_"},
}

// biRenameMap maps the three billing headers whose warehouse names differ from
// their normalized spreadsheet names.
func biRenameMap() *om.OrderedMap {
	m := om.NewOrderedMap()
	m.Set("CLAIM_PAYMENT", "MED_CLAIM_PAYMENT")
	m.Set("APPLIED_DEDUCTIBLE", "MED_APPLIED_DEDUCTIBLE")
	m.Set("PAT_COPAY_COINS", "MED_PAT_COPAY_CO_INS")
	return m
}

// Columns forced to their string form so the warehouse column type stays
// stable across exports where they flip between dates, numbers and notes.
var biStringColumns = []string{
	"SUPPORT_DOCS_MD_MED_BI", "TRIED_FAILED_BI", "DATE_APPL_FAXED_HCP_MED_BI",
	"DATE_APPL_FAXED_INS_MED_BI", "DATE_APPL_DENIED_MED_BI",
}

// NormalizeBiSummary reshapes a raw BI summary frame into SchemaBiSummary.
// Unlike the rx feed this projection is name-based: headers are normalized and
// renamed first, and any required column still missing is a SchemaError before
// a single row is emitted.
func NormalizeBiSummary(log logger.Logger, f *frame.Frame, snapshot time.Time) (*frame.Frame, error) {
	f.NormalizeHeaders(func(h string) string {
		for _, rep := range biHeaderReplacements {
			h = strings.ReplaceAll(h, rep[0], rep[1])
		}
		return h
	})
	f.Rename(biRenameMap())

	out, err := f.Project(SchemaBiSummary)
	if err != nil {
		return nil, &SchemaError{Feed: FeedBiSummary, Err: err}
	}

	for _, col := range biStringColumns {
		_ = out.Apply(col, func(v interface{}) interface{} {
			if v == nil {
				return ""
			}
			return helper.GetStringFromInterface(log, v)
		})
	}
	_ = out.Apply("MED_CLAIM_PAYMENT", func(v interface{}) interface{} {
		if helper.IsBlank(v) {
			return constants.ClaimPaymentEmpty
		}
		return helper.GetStringFromInterface(log, v)
	})
	_ = out.Apply("RX_NUM", func(v interface{}) interface{} { return helper.ToNumericIntOrDefault(v, 0) })
	_ = out.Apply("MIDAS_CODE_BI", func(v interface{}) interface{} { return helper.ToIntOrDefault(v, 0) })
	_ = out.Apply("PATID", func(v interface{}) interface{} { return helper.ToIntOrDefault(v, 0) })
	_ = out.Apply("DR_ZIP", func(v interface{}) interface{} {
		// Nullable: an unparseable zip stays null rather than becoming 0.
		if helper.IsBlank(v) {
			return nil
		}
		if i := helper.ToNumericIntOrDefault(v, -1); i >= 0 {
			return i
		}
		return nil
	})

	_ = out.Apply("DATE_ENTERED", func(v interface{}) interface{} {
		if t, ok := helper.ParseDateValue(v); ok {
			return t
		}
		return nil
	})
	// Lifecycle dates fall back to the row's entry date when unparseable.
	for _, col := range []string{"DATEWRITTEN", "WE_DATE_ENTERED_MED_BI"} {
		for r := 0; r < out.NumRows(); r++ {
			v, _ := out.Value(r, col)
			if t, ok := helper.ParseDateValue(v); ok {
				_ = out.Set(r, col, t)
				continue
			}
			entered, _ := out.Value(r, "DATE_ENTERED")
			_ = out.Set(r, col, entered)
		}
	}

	if err := out.AddColumn(constants.SnapshotColumnName, helper.DateOnly(snapshot)); err != nil {
		return nil, errors.Wrap(err, "failed to stamp snapshot date")
	}
	return out, nil
}
