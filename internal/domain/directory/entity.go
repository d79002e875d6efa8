// internal/domain/directory/entity.go
package directory

// Relations are the cross-system identifiers phone clients use to place calls
// back through the telephony stack.
type Relations struct {
	XivoID        string  `json:"xivo_id"`
	AgentID       *int    `json:"agent_id"`
	UserID        *int    `json:"user_id"`
	UserUUID      string  `json:"user_uuid"`
	EndpointID    *int    `json:"endpoint_id"`
	SourceEntryID *string `json:"source_entry_id"`
}

// Result is one directory entry produced by a source driver. It is ephemeral
// and never persisted.
type Result struct {
	Fields      map[string]any
	Source      string
	Backend     string
	IsPersonal  bool
	IsDeletable bool
	Relations   Relations
}

// SourceEntryID returns the driver-scoped identifier of this entry, or ""
// when the driver did not provide one.
func (r *Result) SourceEntryID() string {
	if r.Relations.SourceEntryID == nil {
		return ""
	}
	return *r.Relations.SourceEntryID
}
