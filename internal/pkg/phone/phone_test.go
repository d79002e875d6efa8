package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatE164(t *testing.T) {
	formatted, ok := FormatE164("415 555 2671", "US")
	assert.True(t, ok)
	assert.Equal(t, "+14155552671", formatted)

	formatted, ok = FormatE164("01 23 45 67 89", "FR")
	assert.True(t, ok)
	assert.Equal(t, "+33123456789", formatted)
}

func TestFormatE164Rejects(t *testing.T) {
	_, ok := FormatE164("not-a-number", "US")
	assert.False(t, ok)

	_, ok = FormatE164("1000", "")
	assert.False(t, ok)

	_, ok = FormatE164("", "US")
	assert.False(t, ok)
}
