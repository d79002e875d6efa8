// internal/domain/contact/dto.go
package contact

// ImportFailure describes one CSV row that could not be turned into a contact.
type ImportFailure struct {
	Line   int      `json:"line"`
	Errors []string `json:"errors"`
}

// ImportResult is the body of POST /personal/import.
type ImportResult struct {
	Created []map[string]string `json:"created"`
	Failed  []ImportFailure     `json:"failed"`
}

// ListResponse is the JSON body of GET /personal.
type ListResponse struct {
	Items []map[string]string `json:"items"`
}
