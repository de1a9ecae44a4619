package feeds

import (
	"fmt"
	"regexp"
	"strings"
)

// Serial numbers arrive inside noisy free text ("shipped NI12345-2 on ...").
// A well-formed serial is an NM or NI prefix followed by word or hyphen characters.
var reSerial = regexp.MustCompile(`(NM|NI)[\w-]+`)

// CleanSerial extracts the serial token from a raw cell. Nulls pass through as
// null and text without a recognizable serial passes through trimmed.
func CleanSerial(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if m := reSerial.FindString(s); m != "" {
		return m
	}
	return s
}
