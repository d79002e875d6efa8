// internal/service/personal/csv.go
package personal

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"dird-service/internal/domain/contact"
	xerrors "dird-service/internal/pkg/errors"
)

type csvRow struct {
	line   int
	fields map[string]string
}

// parseCSV splits a CSV document into per-row field maps. The first record
// is the header; line numbers in failures refer to the original document.
func parseCSV(text string) ([]csvRow, []contact.ImportFailure, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("%w: empty csv document", xerrors.ErrInvalidArgument)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", xerrors.ErrInvalidArgument, err.Error())
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%w: csv document has no data rows", xerrors.ErrInvalidArgument)
	}

	header := records[0]
	var rows []csvRow
	var failures []contact.ImportFailure
	for i, record := range records[1:] {
		line := i + 2
		if len(record) != len(header) {
			failures = append(failures, contact.ImportFailure{
				Line:   line,
				Errors: []string{fmt.Sprintf("expected %d fields, got %d", len(header), len(record))},
			})
			continue
		}

		fields := make(map[string]string, len(header))
		for j, name := range header {
			fields[name] = record[j]
		}
		rows = append(rows, csvRow{line: line, fields: fields})
	}
	return rows, failures, nil
}

// renderCSV writes contacts out with a header made of the union of all field
// names, sorted, id first.
func renderCSV(contacts []map[string]string) (string, error) {
	names := map[string]struct{}{}
	for _, fields := range contacts {
		for name := range fields {
			if name != "id" {
				names[name] = struct{}{}
			}
		}
	}

	header := make([]string, 0, len(names)+1)
	for name := range names {
		header = append(header, name)
	}
	sort.Strings(header)
	header = append([]string{"id"}, header...)

	var b strings.Builder
	writer := csv.NewWriter(&b)
	if err := writer.Write(header); err != nil {
		return "", err
	}
	for _, fields := range contacts {
		record := make([]string, len(header))
		for i, name := range header {
			record[i] = fields[name]
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return b.String(), writer.Error()
}
