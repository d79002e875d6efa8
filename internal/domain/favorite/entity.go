// internal/domain/favorite/entity.go
package favorite

// Favorite pins one source entry for one user. The full triple is the
// primary key.
type Favorite struct {
	SourceUUID    string
	SourceEntryID string
	UserUUID      string
}
