package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dird-service/internal/domain/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func csvSource(path string) *source.Source {
	return &source.Source{
		UUID:                "src-1",
		TenantUUID:          "tenant-1",
		Name:                "my_csv",
		Backend:             source.BackendCSVFile,
		SearchedColumns:     []string{"firstname", "lastname"},
		FirstMatchedColumns: []string{"number"},
		FormatColumns:       map[string]string{"reverse": "{firstname} {lastname}"},
		ExtraFields:         map[string]any{"file_path": path, "unique_column": "id"},
	}
}

func TestCSVFileSearch(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "id,firstname,lastname,number\n1,Alice,Archer,1001\n2,Bob,Dylan,1000\n3,Carol,Chaplin,1002\n")
	driver, err := newCSVFile(csvSource(path), Deps{Logger: zap.NewNop()})
	require.NoError(t, err)

	results, err := driver.Search(context.Background(), "dyl", RequestContext{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Bob", results[0].Fields["firstname"])
	assert.Equal(t, "Dylan", results[0].Fields["lastname"])
	assert.Equal(t, "Bob Dylan", results[0].Fields["reverse"])
	assert.Equal(t, "my_csv", results[0].Source)
	assert.Equal(t, source.BackendCSVFile, results[0].Backend)
	assert.Equal(t, "2", results[0].SourceEntryID())
}

func TestCSVFileSearchIsCaseInsensitive(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "id,firstname,lastname,number\n1,Bob,Dylan,1000\n")
	driver, err := newCSVFile(csvSource(path), Deps{Logger: zap.NewNop()})
	require.NoError(t, err)

	results, err := driver.Search(context.Background(), "DYLAN", RequestContext{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestCSVFileFirstMatch(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "id,firstname,lastname,number\n1,Alice,Archer,1001\n2,Bob,Dylan,1000\n")
	driver, err := newCSVFile(csvSource(path), Deps{Logger: zap.NewNop()})
	require.NoError(t, err)

	reverse, ok := driver.(ReverseDriver)
	require.True(t, ok)

	match, err := reverse.FirstMatch(context.Background(), "1000", RequestContext{})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "Bob Dylan", match.Fields["reverse"])

	match, err = reverse.FirstMatch(context.Background(), "9999", RequestContext{})
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestCSVFileListByIDs(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "id,firstname,lastname,number\n1,Alice,Archer,1001\n2,Bob,Dylan,1000\n3,Carol,Chaplin,1002\n")
	driver, err := newCSVFile(csvSource(path), Deps{Logger: zap.NewNop()})
	require.NoError(t, err)

	lister, ok := driver.(ListDriver)
	require.True(t, ok)

	results, err := lister.ListByIDs(context.Background(), []string{"3", "1", "404"}, RequestContext{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// ids order is preserved, unknown ids are dropped
	assert.Equal(t, "Carol", results[0].Fields["firstname"])
	assert.Equal(t, "Alice", results[1].Fields["firstname"])
}

func TestCSVFileReloadsOnMtimeChange(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "id,firstname,lastname,number\n1,Bob,Dylan,1000\n")
	driver, err := newCSVFile(csvSource(path), Deps{Logger: zap.NewNop()})
	require.NoError(t, err)

	results, err := driver.Search(context.Background(), "bob", RequestContext{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, os.WriteFile(path, []byte("id,firstname,lastname,number\n1,Robert,Zimmerman,1000\n"), 0o644))
	// mtime resolution can be coarse; force a distinct timestamp
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	results, err = driver.Search(context.Background(), "zimmerman", RequestContext{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Robert", results[0].Fields["firstname"])
}

func TestCSVFileCustomDelimiter(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "id|firstname|lastname|number\n1|Bob|Dylan|1000\n")
	cfg := csvSource(path)
	cfg.ExtraFields["separator"] = "|"
	driver, err := newCSVFile(cfg, Deps{Logger: zap.NewNop()})
	require.NoError(t, err)

	results, err := driver.Search(context.Background(), "dylan", RequestContext{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestCSVFileMissingPath(t *testing.T) {
	cfg := csvSource("")
	cfg.ExtraFields = map[string]any{}
	_, err := newCSVFile(cfg, Deps{Logger: zap.NewNop()})
	assert.Error(t, err)
}
