package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckExact(t *testing.T) {
	acl := []string{"dird.directories.lookup.default.read"}

	assert.True(t, Check(acl, "dird.directories.lookup.default.read"))
	assert.False(t, Check(acl, "dird.directories.lookup.other.read"))
	assert.False(t, Check(acl, "dird.directories.lookup.default"))
	assert.False(t, Check(acl, "dird.directories.lookup.default.read.more"))
}

func TestCheckSingleSegmentWildcard(t *testing.T) {
	acl := []string{"dird.directories.lookup.*.read"}

	assert.True(t, Check(acl, "dird.directories.lookup.default.read"))
	assert.True(t, Check(acl, "dird.directories.lookup.support.read"))
	assert.False(t, Check(acl, "dird.directories.reverse.default.read"))
}

func TestCheckTrailingWildcard(t *testing.T) {
	acl := []string{"dird.#"}

	assert.True(t, Check(acl, "dird.personal.read"))
	assert.True(t, Check(acl, "dird.directories.favorites.csv1.42.update"))
	assert.False(t, Check([]string{"confd.#"}, "dird.personal.read"))
}

func TestCheckEmptyACL(t *testing.T) {
	assert.False(t, Check(nil, "dird.personal.read"))
}
