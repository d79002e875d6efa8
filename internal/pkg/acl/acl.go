// Package acl implements dot-separated access matching for dird resources,
// e.g. "dird.directories.lookup.default.read". A token ACL entry may use "*"
// to match exactly one segment and "#" to match any remaining segments.
package acl

import "strings"

// Check reports whether any entry of acl grants the required access.
func Check(acl []string, required string) bool {
	want := strings.Split(required, ".")
	for _, entry := range acl {
		if matches(strings.Split(entry, "."), want) {
			return true
		}
	}
	return false
}

func matches(entry, want []string) bool {
	for i, part := range entry {
		if part == "#" {
			return true
		}
		if i >= len(want) {
			return false
		}
		if part != "*" && part != want[i] {
			return false
		}
	}
	return len(entry) == len(want)
}
