package personal

import (
	"strings"
	"testing"

	xerrors "dird-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	rows, failures, err := parseCSV("firstname,lastname\nÉloïse,Martin\nBob,Dylan\n")
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].line)
	assert.Equal(t, map[string]string{"firstname": "Éloïse", "lastname": "Martin"}, rows[0].fields)
	assert.Equal(t, 3, rows[1].line)
	assert.Equal(t, map[string]string{"firstname": "Bob", "lastname": "Dylan"}, rows[1].fields)
}

func TestParseCSVFieldCountMismatch(t *testing.T) {
	rows, failures, err := parseCSV("firstname,lastname\nAlice\nBob,Dylan\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, failures, 1)

	assert.Equal(t, 2, failures[0].Line)
	assert.Contains(t, failures[0].Errors[0], "expected 2 fields")
}

func TestParseCSVEmptyDocument(t *testing.T) {
	_, _, err := parseCSV("")
	assert.ErrorIs(t, err, xerrors.ErrInvalidArgument)

	_, _, err = parseCSV("firstname,lastname\n")
	assert.ErrorIs(t, err, xerrors.ErrInvalidArgument)
}

func TestRenderCSV(t *testing.T) {
	out, err := renderCSV([]map[string]string{
		{"id": "c1", "firstname": "Éloïse", "lastname": "Martin"},
		{"id": "c2", "firstname": "Bob", "number": "1000"},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,firstname,lastname,number", lines[0])
	assert.Equal(t, "c1,Éloïse,Martin,", lines[1])
	assert.Equal(t, "c2,Bob,,1000", lines[2])
}

func TestCSVRoundTrip(t *testing.T) {
	// export then re-import reproduces the same field sets (modulo id)
	exported, err := renderCSV([]map[string]string{
		{"id": "c1", "firstname": "Éloïse", "lastname": "Martin"},
	})
	require.NoError(t, err)

	rows, failures, err := parseCSV(exported)
	require.NoError(t, err)
	assert.Empty(t, failures)
	require.Len(t, rows, 1)
	assert.Equal(t, "Éloïse", rows[0].fields["firstname"])
	assert.Equal(t, "Martin", rows[0].fields["lastname"])
}
