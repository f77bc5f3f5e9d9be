package wizard

import (
	"strings"
	"unicode"
)

// FormatPhone keeps the first nine digits of raw and groups them in runs of
// three separated by a space: "612345678" becomes "612 345 678", "6123"
// becomes "612 3". It is the input mask the presentation layers apply before
// calling SetContactField.
func FormatPhone(raw string) string {
	var b strings.Builder
	n := 0
	for _, r := range raw {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			continue
		}
		if n == 9 {
			break
		}
		if n > 0 && n%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
