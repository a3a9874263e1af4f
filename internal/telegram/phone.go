package telegram

import "strings"

// minPhoneDigits is the minimum digit count a cleaned number must have
// to be considered reachable.
const minPhoneDigits = 9

// NormalizePhone cleans a raw phone number for WhatsApp deep links.
// Everything except digits and a leading + is stripped; numbers without
// a country code get the configured one prefixed. Returns ok=false when
// fewer than nine digits survive cleaning.
func NormalizePhone(raw, countryCode string) (string, bool) {
	var b strings.Builder

	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	digits := strings.TrimPrefix(cleaned, "+")

	if len(digits) < minPhoneDigits {
		return "", false
	}

	if !strings.HasPrefix(cleaned, "+") {
		cleaned = countryCode + cleaned
	}

	return cleaned, true
}
