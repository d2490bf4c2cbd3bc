package utils

import "strings"

// NormalizePhone strips everything but digits so "(555) 123-4567" and
// "555.123.4567" match the same customer. A leading US country code 1 on
// an 11-digit number is dropped.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}
