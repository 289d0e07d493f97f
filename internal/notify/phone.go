package notify

import (
	"errors"
	"strings"
)

// Gabon is the primary market; numbers without a country code get +241.
const (
	defaultCountryCode = "241"
	jidSuffix          = "@s.whatsapp.net"
)

var errEmptyPhone = errors.New("missing recipient phone number")

// NormalizePhone converts a raw phone number into the gateway's JID form.
// "077123456" becomes "24177123456@s.whatsapp.net";
// "+241 77 12 34 56" becomes "24177123456@s.whatsapp.net".
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errEmptyPhone
	}

	hasPlus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if number == "" {
		return "", errEmptyPhone
	}

	if !hasPlus {
		// Local number: drop the leading zero and prepend the country code.
		number = defaultCountryCode + strings.TrimLeft(number, "0")
	}

	return number + jidSuffix, nil
}
