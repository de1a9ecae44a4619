package helper

import (
	"testing"
	"time"

	"github.com/theranica/rxpipe/logger"
)

func TestToIntOrDefault(t *testing.T) {
	if v := ToIntOrDefault("12", 0); v != 12 {
		t.Fatal("expected 12, got ", v)
	}
	if v := ToIntOrDefault("12.5", 99); v != 99 {
		t.Fatal("expected default for decimal string, got ", v)
	}
	if v := ToIntOrDefault(nil, 0); v != 0 {
		t.Fatal("expected 0 for nil, got ", v)
	}
	if v := ToIntOrDefault(12.9, 0); v != 12 {
		t.Fatal("expected truncation to 12, got ", v)
	}
	if v := ToIntOrDefault("  7 ", 0); v != 7 {
		t.Fatal("expected 7 after trim, got ", v)
	}
}

func TestToNumericIntOrDefault(t *testing.T) {
	if v := ToNumericIntOrDefault("10001.0", 0); v != 10001 {
		t.Fatal("expected 10001, got ", v)
	}
	if v := ToNumericIntOrDefault("K1A 0B1", 0); v != 0 {
		t.Fatal("expected 0 for non-numeric zip, got ", v)
	}
}

func TestExtractDigitsOrDefault(t *testing.T) {
	if v := ExtractDigitsOrDefault("#1234567890 ", 0); v != 1234567890 {
		t.Fatal("expected 1234567890, got ", v)
	}
	if v := ExtractDigitsOrDefault("none", 0); v != 0 {
		t.Fatal("expected 0 when no digits, got ", v)
	}
}

func TestParseCurrency(t *testing.T) {
	if v := ParseCurrency("$1,234.56"); v != 1234.56 {
		t.Fatal("expected 1234.56, got ", v)
	}
	if v := ParseCurrency(""); v != 0 {
		t.Fatal("expected 0 for empty string, got ", v)
	}
	if v := ParseCurrency("(42.00)"); v != 42 {
		t.Fatal("expected 42, got ", v)
	}
	if v := ParseCurrency(nil); v != 0 {
		t.Fatal("expected 0 for nil, got ", v)
	}
	if v := ParseCurrency("garbage"); v != 0 {
		t.Fatal("expected 0 for garbage, got ", v)
	}
}

func TestParseDateValue(t *testing.T) {
	want := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2025-05-05", "05/05/2025", "5/5/2025", "20250505", "2025-05-05 13:14:15"} {
		got, ok := ParseDateValue(s)
		if !ok {
			t.Fatal("expected parse of ", s)
		}
		if !got.Equal(want) {
			t.Fatal("bad date for ", s, ": ", got)
		}
	}
	if _, ok := ParseDateValue(""); ok {
		t.Fatal("expected no parse for empty string")
	}
	if _, ok := ParseDateValue("not a date"); ok {
		t.Fatal("expected no parse for junk")
	}
	got, ok := ParseDateValue(time.Date(2025, 5, 5, 23, 59, 0, 0, time.UTC))
	if !ok || !got.Equal(want) {
		t.Fatal("expected truncation of time.Time input, got ", got)
	}
}

func TestGetStringFromInterface(t *testing.T) {
	log := logger.NewLogger("helper test", "info", false)
	if s := GetStringFromInterface(log, 1234.56); s != "1234.56" {
		t.Fatal("bad float formatting: ", s)
	}
	if s := GetStringFromInterface(log, time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)); s != "2025-05-05" {
		t.Fatal("bad time formatting: ", s)
	}
	if s := GetStringFromInterface(log, nil); s != "" {
		t.Fatal("bad nil formatting: ", s)
	}
	if s := GetStringFromInterface(log, 42); s != "42" {
		t.Fatal("bad int formatting: ", s)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(nil) || !IsBlank("") || !IsBlank("  ") {
		t.Fatal("expected blanks to be blank")
	}
	if IsBlank("x") || IsBlank(0) {
		t.Fatal("expected non-blanks to be non-blank")
	}
}
