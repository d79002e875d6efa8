package directory

import (
	"testing"

	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func testDisplay() *profile.Display {
	return &profile.Display{
		UUID: "display-1",
		Name: "default",
		Columns: []profile.DisplayColumn{
			{Title: strptr("Firstname"), Type: strptr("name"), Field: strptr("firstname"), Default: ""},
			{Title: strptr("Lastname"), Type: strptr("name"), Field: strptr("lastname"), Default: ""},
			{Title: strptr("Number"), Type: strptr("number"), Field: strptr("number"), Default: ""},
			{Title: strptr("Favorite"), Type: strptr("favorite"), Default: false},
			{Title: strptr("Personal"), Type: strptr("personal"), Default: false},
		},
	}
}

func TestHeaders(t *testing.T) {
	headers, types := Headers(testDisplay())

	assert.Equal(t, []any{"Firstname", "Lastname", "Number", "Favorite", "Personal"}, headers)
	assert.Equal(t, []any{"name", "name", "number", "favorite", "personal"}, types)
}

func TestHeadersNilDisplay(t *testing.T) {
	headers, types := Headers(nil)
	assert.Empty(t, headers)
	assert.Empty(t, types)
}

func TestFormatProjectsColumns(t *testing.T) {
	entryID := "42"
	results := []directory.Result{{
		Fields:    map[string]any{"firstname": "Bob", "lastname": "Dylan", "number": "1000"},
		Source:    "csv1",
		Backend:   "csv-file",
		Relations: directory.Relations{SourceEntryID: &entryID},
	}}

	formatted := Format(results, testDisplay(), nil)

	require.Len(t, formatted, 1)
	assert.Equal(t, []any{"Bob", "Dylan", "1000", false, false}, formatted[0].ColumnValues)
	assert.Equal(t, "csv1", formatted[0].Source)
	assert.Equal(t, "csv-file", formatted[0].Backend)
}

func TestFormatFavoriteDecoration(t *testing.T) {
	entryID := "42"
	results := []directory.Result{{
		Fields:    map[string]any{"firstname": "Bob", "lastname": "Dylan", "number": "1000"},
		Source:    "csv1",
		Backend:   "csv-file",
		Relations: directory.Relations{SourceEntryID: &entryID},
	}}
	favorites := FavoriteSet{"csv1": {"42": {}}}

	formatted := Format(results, testDisplay(), favorites)
	require.Len(t, formatted, 1)
	assert.Equal(t, true, formatted[0].ColumnValues[3])

	// decoration is idempotent: formatting again yields the same values
	again := Format(results, testDisplay(), favorites)
	assert.Equal(t, formatted, again)
}

func TestFormatFavoriteOtherSourceNotDecorated(t *testing.T) {
	entryID := "42"
	results := []directory.Result{{
		Fields:    map[string]any{"firstname": "Bob"},
		Source:    "csv2",
		Relations: directory.Relations{SourceEntryID: &entryID},
	}}
	favorites := FavoriteSet{"csv1": {"42": {}}}

	formatted := Format(results, testDisplay(), favorites)
	assert.Equal(t, false, formatted[0].ColumnValues[3])
}

func TestFormatPersonalFlag(t *testing.T) {
	results := []directory.Result{{
		Fields:     map[string]any{"firstname": "Éloïse"},
		Source:     "personal",
		Backend:    "personal",
		IsPersonal: true,
	}}

	formatted := Format(results, testDisplay(), nil)
	assert.Equal(t, true, formatted[0].ColumnValues[4])
}

func TestFormatUnknownFieldFallsBackToDefault(t *testing.T) {
	display := &profile.Display{Columns: []profile.DisplayColumn{
		{Title: strptr("Status"), Field: strptr("status"), Default: "unknown"},
	}}
	results := []directory.Result{{Fields: map[string]any{"firstname": "Bob"}}}

	formatted := Format(results, display, nil)
	assert.Equal(t, "unknown", formatted[0].ColumnValues[0])
}

func TestFormatNilDisplay(t *testing.T) {
	results := []directory.Result{{Fields: map[string]any{"firstname": "Bob"}, Source: "s"}}

	formatted := Format(results, nil, nil)
	require.Len(t, formatted, 1)
	assert.Empty(t, formatted[0].ColumnValues)
	assert.Equal(t, "s", formatted[0].Source)
}
