// internal/domain/contact/entity.go
package contact

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Contact is a personal or phonebook contact: a uuid plus arbitrary
// string-valued fields. The "id" field always carries the uuid.
type Contact struct {
	UUID          string
	PhonebookUUID string
	UserUUID      string
	Hash          string
	Fields        map[string]string
}

// Canonicalize trims and unicode-normalizes every field value and drops
// empty ones. Returns nil when nothing non-empty remains.
func Canonicalize(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for name, value := range fields {
		name = strings.TrimSpace(name)
		value = norm.NFC.String(strings.TrimSpace(value))
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HashFields computes the dedup hash: SHA-1 over sorted "key=value" pairs
// joined by NUL. Fields must already be canonical.
func HashFields(fields map[string]string) string {
	pairs := make([]string, 0, len(fields))
	for name, value := range fields {
		if name == "id" {
			continue
		}
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)

	sum := sha1.Sum([]byte(strings.Join(pairs, "\x00")))
	return hex.EncodeToString(sum[:])
}
