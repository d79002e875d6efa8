// internal/backend/result_test.go
package backend

import (
	"testing"

	"dird-service/internal/pkg/template"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestAddNumberFieldsViews(t *testing.T) {
	row := map[string]any{}
	addNumberFields(row, []labeledNumber{
		{label: "business", value: "5550001"},
		{label: "mobile", value: "5550002"},
		{label: "home", value: "5550003"},
	})

	assert.Equal(t, []any{"5550001", "5550002", "5550003"}, row["numbers"])

	byLabel := row["numbers_by_label"].(map[string]any)
	assert.Equal(t, "5550002", byLabel["mobile"])

	exceptLabel := row["numbers_except_label"].(map[string]any)
	assert.Equal(t, []any{"5550001", "5550003"}, exceptLabel["mobile"])
	assert.Equal(t, []any{"5550002", "5550003"}, exceptLabel["business"])
}

func TestAddNumberFieldsTemplateAccessors(t *testing.T) {
	row := map[string]any{}
	addNumberFields(row, []labeledNumber{
		{label: "mobile", value: "5550002"},
		{label: "home", value: "5550003"},
	})

	assert.Equal(t, "5550002", template.Render("{numbers_by_label[mobile]}", row))
	assert.Equal(t, "5550003", template.Render("{numbers_except_label[mobile][0]}", row))
	assert.Equal(t, "5550002", template.Render("{numbers[0]}", row))
}

func TestGraphRowNumberViews(t *testing.T) {
	item := gjson.Parse(`{
		"id": "c1",
		"displayName": "Bob Dylan",
		"givenName": "Bob",
		"surname": "Dylan",
		"businessPhones": ["5550001"],
		"mobilePhone": "5550002",
		"emailAddresses": [{"address": "bob@example.org"}]
	}`)

	row := graphRow(item)
	assert.Equal(t, []any{"5550001", "5550002"}, row["numbers"])

	exceptLabel := row["numbers_except_label"].(map[string]any)
	assert.Equal(t, []any{"5550001"}, exceptLabel["mobile"])
	assert.Equal(t, []any{"5550002"}, exceptLabel["business"])
}

func TestGoogleRowNumberViews(t *testing.T) {
	person := gjson.Parse(`{
		"resourceName": "people/c1",
		"names": [{"displayName": "Bob Dylan", "givenName": "Bob", "familyName": "Dylan"}],
		"phoneNumbers": [
			{"value": "5550001", "type": "Work"},
			{"value": "5550002", "type": "Mobile"}
		]
	}`)

	row := googleRow(person)
	assert.Equal(t, []any{"5550001", "5550002"}, row["numbers"])

	byLabel := row["numbers_by_label"].(map[string]any)
	assert.Equal(t, "5550002", byLabel["mobile"])

	exceptLabel := row["numbers_except_label"].(map[string]any)
	assert.Equal(t, []any{"5550001"}, exceptLabel["mobile"])
}
