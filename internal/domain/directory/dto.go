// internal/domain/directory/dto.go
package directory

// FormattedResult is one row of a display-projected response.
type FormattedResult struct {
	ColumnValues []any     `json:"column_values"`
	Relations    Relations `json:"relations"`
	Source       string    `json:"source"`
	Backend      string    `json:"backend"`
}

// LookupResponse is the body of GET /directories/lookup/{profile}.
type LookupResponse struct {
	Term          string            `json:"term"`
	ColumnHeaders []any             `json:"column_headers"`
	ColumnTypes   []any             `json:"column_types"`
	Results       []FormattedResult `json:"results"`
}

// HeadersResponse is the body of GET /directories/lookup/{profile}/headers.
type HeadersResponse struct {
	ColumnHeaders []any `json:"column_headers"`
	ColumnTypes   []any `json:"column_types"`
}

// ReverseResponse is the body of GET /directories/reverse/{profile}/{user_uuid}.
type ReverseResponse struct {
	Display *string        `json:"display"`
	Exten   string         `json:"exten"`
	Fields  map[string]any `json:"fields"`
	Source  string         `json:"source"`
}

// FavoritesResponse is the body of GET /directories/favorites/{profile}.
type FavoritesResponse struct {
	ColumnHeaders []any             `json:"column_headers"`
	ColumnTypes   []any             `json:"column_types"`
	Results       []FormattedResult `json:"results"`
}
