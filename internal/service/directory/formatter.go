// internal/service/directory/formatter.go
package directory

import (
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/profile"
)

// FavoriteSet is the decoration input: source name to the set of favorited
// entry ids. It is computed once per request, never per result.
type FavoriteSet map[string]map[string]struct{}

// Has reports whether the entry of the named source is favorited.
func (s FavoriteSet) Has(sourceName, entryID string) bool {
	if entryID == "" {
		return false
	}
	_, ok := s[sourceName][entryID]
	return ok
}

// Headers projects a display onto its column headers and types.
func Headers(display *profile.Display) ([]any, []any) {
	if display == nil {
		return []any{}, []any{}
	}
	headers := make([]any, len(display.Columns))
	types := make([]any, len(display.Columns))
	for i, column := range display.Columns {
		if column.Title != nil {
			headers[i] = *column.Title
		}
		if column.Type != nil {
			types[i] = *column.Type
		}
	}
	return headers, types
}

// Format projects source results onto a display's column list, annotating
// favorite and personal columns. Decoration is a pure function of
// (results, favorites): applying it twice changes nothing.
func Format(results []directory.Result, display *profile.Display, favorites FavoriteSet) []directory.FormattedResult {
	formatted := make([]directory.FormattedResult, 0, len(results))
	for _, result := range results {
		formatted = append(formatted, formatOne(&result, display, favorites))
	}
	return formatted
}

func formatOne(result *directory.Result, display *profile.Display, favorites FavoriteSet) directory.FormattedResult {
	out := directory.FormattedResult{
		ColumnValues: []any{},
		Relations:    result.Relations,
		Source:       result.Source,
		Backend:      result.Backend,
	}
	if display == nil {
		return out
	}

	for _, column := range display.Columns {
		out.ColumnValues = append(out.ColumnValues, columnValue(&column, result, favorites))
	}
	return out
}

func columnValue(column *profile.DisplayColumn, result *directory.Result, favorites FavoriteSet) any {
	if column.Type != nil {
		switch *column.Type {
		case "favorite":
			return favorites.Has(result.Source, result.SourceEntryID())
		case "personal":
			return result.IsPersonal
		}
	}

	if column.Field != nil {
		if value, ok := result.Fields[*column.Field]; ok && value != nil {
			return value
		}
	}
	return column.Default
}
