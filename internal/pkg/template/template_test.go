package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderPlainFields(t *testing.T) {
	fields := map[string]any{
		"firstname": "Bob",
		"lastname":  "Dylan",
		"exten":     1000,
	}

	assert.Equal(t, "Bob Dylan", Render("{firstname} {lastname}", fields))
	assert.Equal(t, "Dylan, Bob (1000)", Render("{lastname}, {firstname} ({exten})", fields))
}

func TestRenderMissingFieldIsEmpty(t *testing.T) {
	fields := map[string]any{"firstname": "Bob"}

	assert.Equal(t, "Bob ", Render("{firstname} {lastname}", fields))
	assert.Equal(t, "", Render("{unknown}", nil))
}

func TestRenderIndexedAccessors(t *testing.T) {
	fields := map[string]any{
		"numbers": []any{"1000", "06800"},
		"numbers_by_label": map[string]any{
			"mobile": "06800",
		},
		"numbers_except_label": map[string]any{
			"mobile": []any{"1000", "2000"},
		},
	}

	assert.Equal(t, "1000", Render("{numbers[0]}", fields))
	assert.Equal(t, "06800", Render("{numbers[1]}", fields))
	assert.Equal(t, "06800", Render("{numbers_by_label[mobile]}", fields))
	assert.Equal(t, "2000", Render("{numbers_except_label[mobile][1]}", fields))
}

func TestRenderOutOfRangeIsEmpty(t *testing.T) {
	fields := map[string]any{"numbers": []any{"1000"}}

	assert.Equal(t, "", Render("{numbers[3]}", fields))
	assert.Equal(t, "", Render("{numbers[-1]}", fields))
	assert.Equal(t, "", Render("{numbers[mobile]}", fields))
}

func TestRenderJSONNumbers(t *testing.T) {
	fields := map[string]any{"id": float64(42), "ratio": 1.5}

	assert.Equal(t, "42", Render("{id}", fields))
	assert.Equal(t, "1.5", Render("{ratio}", fields))
}

func TestRenderUnterminatedPlaceholder(t *testing.T) {
	assert.Equal(t, "hello {oops", Render("hello {oops", map[string]any{"oops": "x"}))
}
