package feeds

import (
	"testing"
	"time"

	"github.com/theranica/rxpipe/frame"
	"github.com/theranica/rxpipe/logger"
)

// The vendor's documented source layout: 34 columns in contractual order.
var rxSourceCols = []string{
	"De-identified Patient ID", "Rx Number", "Received Date", "Dispense Date", "Serial #", "Total Fills",
	"Fills Dispensed", "Fill Remaining", "Provider Last Name", "Provider First Name", "Provider Address",
	"Provider City", "Provider State", "Provider Zip Code", "Provider NPI", "Region", "Script Status", "Patient OOP",
	"Payor Name", "Plan Name", "Copay", "Source", "Fill Type Recieved", "Fill Type Shipped", "Date Written",
	"CLOSED_STATUS", "Insurance Type", "PA_STATUS", "Order_PA_Status", "REMINDERSTATUS_PAT", "Plan Name Claim", "AGE",
	"NDC", "USAGE",
}

// rxRow builds a complete source row, applying overrides by source column name.
func rxRow(overrides map[string]interface{}) []interface{} {
	defaults := map[string]interface{}{
		"De-identified Patient ID": "P1",
		"Rx Number":                "1001",
		"Received Date":            "2025-05-01",
		"Dispense Date":            "2025-05-05",
		"Serial #":                 "NI123",
		"Total Fills":              "3",
		"Fills Dispensed":          "1",
		"Fill Remaining":           "2",
		"Provider Zip Code":        "10001",
		"Provider NPI":             "1234567890",
		"Region":                   "Northeast",
		"Patient OOP":              "$10.00",
		"Copay":                    "$5.00",
		"Date Written":             "2025-04-28",
		"NDC":                      "90017578200",
	}
	for k, v := range overrides {
		defaults[k] = v
	}
	row := make([]interface{}, len(rxSourceCols))
	for i, c := range rxSourceCols {
		if v, ok := defaults[c]; ok {
			row[i] = v
		}
	}
	return row
}

func newRxFrame(rows ...[]interface{}) *frame.Frame {
	f := frame.New(rxSourceCols)
	for _, r := range rows {
		f.AppendRow(r)
	}
	return f
}

var testSnapshot = time.Date(2025, 5, 6, 9, 30, 0, 0, time.UTC)

func TestNormalizeRxProcareSchema(t *testing.T) {
	log := logger.NewLogger("feeds test", "info", false)
	f := newRxFrame(rxRow(nil))
	out, err := NormalizeRxProcare(log, f, testSnapshot)
	if err != nil {
		t.Fatal(err)
	}
	cols := out.Columns()
	if len(cols) != len(SchemaRxProcare) {
		t.Fatal("bad column count: ", len(cols))
	}
	for i, want := range SchemaRxProcare {
		if cols[i] != want {
			t.Fatalf("column %v: want %v got %v", i, want, cols[i])
		}
	}
	snap, _ := out.Value(0, "_snapshot_date")
	if ts, ok := snap.(time.Time); !ok || !ts.Equal(time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("bad snapshot date: ", snap)
	}
}

func TestNormalizeRxProcareCoercions(t *testing.T) {
	log := logger.NewLogger("feeds test", "info", false)
	f := newRxFrame(
		rxRow(map[string]interface{}{
			"Copay":             "$1,234.56",
			"Patient OOP":       "",
			"Region":            nil,
			"Provider NPI":      "#987 ext",
			"Provider Zip Code": "10001.0",
			"Total Fills":       "junk",
			"Serial #":          " see NI555-2 note ",
			"Dispense Date":     "5/5/2025",
		}),
	)
	out, err := NormalizeRxProcare(log, f, testSnapshot)
	if err != nil {
		t.Fatal(err)
	}
	check := func(col string, want interface{}) {
		t.Helper()
		v, err := out.Value(0, col)
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Fatalf("%v: want %v got %v", col, want, v)
		}
	}
	check("Copay", 1234.56)
	check("Patient_OOP", float64(0))
	check("Region", "N/A")
	check("Provider_NPI", 987)
	check("Provider_Zip_Code", 10001)
	check("Total_Fills", 0)
	check("Serial__", "NI555-2")
	check("Dispense_Date", time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC))
}

func TestNormalizeRxProcareLinksRefills(t *testing.T) {
	log := logger.NewLogger("feeds test", "info", false)
	f := newRxFrame(
		rxRow(nil), // original with serial NI123
		rxRow(map[string]interface{}{"Serial #": ""}),
		rxRow(map[string]interface{}{"Serial #": "DL2432570"}),
	)
	out, err := NormalizeRxProcare(log, f, testSnapshot)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := out.Value(1, "modified_serial_id")
	if v != "NI123refill1" {
		t.Fatal("bad first refill: ", v)
	}
	v, _ = out.Value(2, "modified_serial_id")
	if v != "NI123refill2" {
		t.Fatal("bad second refill: ", v)
	}
	v, _ = out.Value(0, "modified_serial_id")
	if v != "NI123" {
		t.Fatal("original must keep its serial: ", v)
	}
}

func TestNormalizeRxProcareMissingColumn(t *testing.T) {
	log := logger.NewLogger("feeds test", "info", false)
	cols := append([]string(nil), rxSourceCols...)
	cols[20] = "Co-pay" // vendor renamed the copay column
	f := frame.New(cols)
	f.AppendRow(rxRow(nil))
	_, err := NormalizeRxProcare(log, f, testSnapshot)
	if _, ok := err.(*SchemaError); !ok {
		t.Fatal("expected SchemaError, got ", err)
	}
}

func TestNormalizeRxProcareColumnCountGuard(t *testing.T) {
	log := logger.NewLogger("feeds test", "info", false)
	cols := append(append([]string(nil), rxSourceCols...), "Unexpected Extra")
	f := frame.New(cols)
	f.AppendRow(append(rxRow(nil), "x"))
	_, err := NormalizeRxProcare(log, f, testSnapshot)
	se, ok := err.(*SchemaError)
	if !ok {
		t.Fatal("expected SchemaError for column count drift, got ", err)
	}
	if se.Feed != FeedRxProcare {
		t.Fatal("bad feed on error: ", se.Feed)
	}
}
