// internal/domain/source/entity.go
package source

// Backend tags for the compiled-in driver variants.
const (
	BackendInternalUsers = "internal-users"
	BackendPhonebook     = "phonebook"
	BackendPersonal      = "personal"
	BackendCSVFile       = "csv-file"
	BackendCSVHTTP       = "csv-http"
	BackendLDAP          = "ldap"
	BackendGoogle        = "google"
	BackendMicrosoft365  = "microsoft365"
)

// Source is the stored configuration of one directory source instance.
// (uuid, tenant_uuid) is the compound identity used by cross-references.
type Source struct {
	UUID                string
	TenantUUID          string
	Name                string
	Backend             string
	SearchedColumns     []string
	FirstMatchedColumns []string
	FormatColumns       map[string]string
	ExtraFields         map[string]any
}

// Extra returns a string value from the backend-specific configuration blob.
func (s *Source) Extra(key, fallback string) string {
	if v, ok := s.ExtraFields[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
