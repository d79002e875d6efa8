// Package phone formats raw directory numbers to E.164 using the owning
// tenant's country.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// FormatE164 parses raw under the given ISO-3166 country and returns the
// E.164 form. The second return value is false when raw does not parse as a
// phone number for that country.
func FormatE164(raw, country string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || country == "" {
		return "", false
	}

	parsed, err := phonenumbers.Parse(raw, strings.ToUpper(country))
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", false
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), true
}
