package feeds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/frame"
	"github.com/theranica/rxpipe/helper"
)

// LinkRefills reconstructs refill relationships for treatment rows that were
// exported without their own serial number.
//
// Within the rows of one patient, the "original" prescription is the row whose
// serial starts with the NI prefix. A refill candidate is a dispensed row for
// the refill-eligible product whose serial is blank or carries the known
// placeholder value. Each candidate gets modified_serial_id set to
// "<original serial>refill<N>" with N counted per patient in row order.
//
// A patient with zero or more than one distinct original serial is ambiguous
// and is left untouched: every row keeps its own serial as modified_serial_id.
func LinkRefills(f *frame.Frame) error {
	required := []string{colPatientID, colSerial, colDispenseDate, colNDC, colModifiedSerial}
	if missing := f.Missing(required); len(missing) > 0 {
		return &SchemaError{Feed: FeedRxProcare, Err: &frame.MissingColumnsError{Columns: missing}}
	}

	// Group row indices per patient, preserving row order within each group.
	patientOrder := make([]string, 0)
	groups := make(map[string][]int)
	for r := 0; r < f.NumRows(); r++ {
		pid, err := f.Value(r, colPatientID)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%v", pid)
		if _, seen := groups[key]; !seen {
			patientOrder = append(patientOrder, key)
		}
		groups[key] = append(groups[key], r)
	}

	for _, key := range patientOrder {
		rows := groups[key]

		// Find the distinct original serials for this patient.
		originals := make(map[string]struct{})
		var originalSerial string
		for _, r := range rows {
			v, _ := f.Value(r, colSerial)
			s := serialString(v)
			if strings.HasPrefix(s, constants.RefillOriginalPrefix) {
				originals[s] = struct{}{}
				originalSerial = s
			}
		}
		if len(originals) != 1 { // ambiguous or absent original; skip this patient.
			continue
		}

		ordinal := 0
		for _, r := range rows {
			if !isRefillCandidate(f, r) {
				continue
			}
			ordinal++
			if err := f.Set(r, colModifiedSerial, originalSerial+"refill"+strconv.Itoa(ordinal)); err != nil {
				return errors.Wrap(err, "failed to assign refill serial")
			}
		}
	}
	return nil
}

// isRefillCandidate reports whether the row looks like a refill shipment:
// it was dispensed, it is the refill-eligible product, and its serial is
// either blank or the placeholder the vendor stamps on refills.
func isRefillCandidate(f *frame.Frame, row int) bool {
	dispensed, _ := f.Value(row, colDispenseDate)
	if dispensed == nil {
		return false
	}
	ndc, _ := f.Value(row, colNDC)
	if helper.ToNumericIntOrDefault(ndc, -1) != constants.RefillProductCode {
		return false
	}
	v, _ := f.Value(row, colSerial)
	s := serialString(v)
	return s == "" || strings.Contains(s, constants.RefillSentinelSerial)
}

func serialString(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
