package helper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/theranica/rxpipe/logger"
)

var (
	reDigits       = regexp.MustCompile(`\d+`)
	reCurrencyJunk = regexp.MustCompile(`[$(),]`)
)

// Layouts accepted for vendor-supplied date cells, tried in order.
// The vendors are not consistent between exports so we accept the common variants.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"2006/01/02",
	"20060102",
	"02-Jan-2006",
}

// ToIntOrDefault converts a raw cell value to int.
// Strings must parse as whole numbers; floats are truncated; anything else
// (including nil and unparseable text) yields the supplied default.
func ToIntOrDefault(v interface{}, def int) int {
	switch val := v.(type) {
	case nil:
		return def
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return def
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		return def
	default:
		return def
	}
}

// ToNumericIntOrDefault converts a raw cell value to int, accepting decimal
// strings by truncation. Used for fields like zip codes where exports flip
// between "10001" and "10001.0".
func ToNumericIntOrDefault(v interface{}, def int) int {
	switch val := v.(type) {
	case nil:
		return def
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return def
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return def
	default:
		return def
	}
}

// ExtractDigitsOrDefault pulls the first run of digits out of a noisy value,
// e.g. an NPI exported as "#1234567890 ". Returns the default when no digits exist.
func ExtractDigitsOrDefault(v interface{}, def int) int {
	switch val := v.(type) {
	case nil:
		return def
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		m := reDigits.FindString(val)
		if m == "" {
			return def
		}
		i, err := strconv.Atoi(m)
		if err != nil {
			return def
		}
		return i
	default:
		return def
	}
}

// ParseCurrency converts a money cell like "$1,234.56" or "(42.00)" to a float,
// defaulting to 0 when the cleaned value does not parse.
func ParseCurrency(v interface{}) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		s := reCurrencyJunk.ReplaceAllString(strings.TrimSpace(val), "")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ParseDateValue converts a raw cell to a calendar date (time-of-day truncated).
// The second return is false when the cell is empty or no layout matches.
func ParseDateValue(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return DateOnly(val), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return DateOnly(t), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// DateOnly truncates a time to midnight UTC so only the calendar date survives.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetStringFromInterface will convert an interface{} cell value to its canonical
// string form for CSV output. Dates render as calendar dates and floats keep all
// decimal places without an exponent.
func GetStringFromInterface(log logger.Logger, input interface{}) (retval string) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint8:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		retval = v.Format("2006-01-02")
	case []uint8:
		retval = string(v)
	case bool:
		retval = fmt.Sprintf("%v", v)
	case nil:
		retval = ""
	default:
		log.Panic("unhandled type while fetching string from interface: value = ", input)
	}
	return
}

// IsBlank reports whether a cell is nil or contains only whitespace.
func IsBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) == ""
}
