package contact

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeTrimsAndNormalizes(t *testing.T) {
	fields := Canonicalize(map[string]string{
		"firstname": "  Éloïse ",
		"lastname":  "Martin",
		"note":      "   ",
	})

	assert.Equal(t, map[string]string{
		"firstname": "Éloïse",
		"lastname":  "Martin",
	}, fields)
}

func TestCanonicalizeEmpty(t *testing.T) {
	assert.Nil(t, Canonicalize(map[string]string{"x": "  "}))
	assert.Nil(t, Canonicalize(nil))
}

func TestHashFields(t *testing.T) {
	fields := map[string]string{
		"firstname": "Bob",
		"lastname":  "Dylan",
	}

	sum := sha1.Sum([]byte("firstname=Bob\x00lastname=Dylan"))
	assert.Equal(t, hex.EncodeToString(sum[:]), HashFields(fields))
}

func TestHashFieldsIgnoresOrderAndID(t *testing.T) {
	a := HashFields(map[string]string{"a": "1", "b": "2"})
	b := HashFields(map[string]string{"b": "2", "a": "1"})
	c := HashFields(map[string]string{"a": "1", "b": "2", "id": "deadbeef"})

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.NotEqual(t, a, HashFields(map[string]string{"a": "1", "b": "3"}))
}
