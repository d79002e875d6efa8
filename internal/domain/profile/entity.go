// internal/domain/profile/entity.go
package profile

// Service names a profile can bind sources to.
const (
	ServiceLookup    = "lookup"
	ServiceReverse   = "reverse"
	ServiceFavorites = "favorites"
)

// DisplayColumn describes one rendered column of a display.
type DisplayColumn struct {
	Title         *string `json:"title"`
	Type          *string `json:"type"`
	Default       any     `json:"default"`
	Field         *string `json:"field"`
	NumberDisplay *string `json:"number_display"`
}

// Display is the column list a profile renders results with.
type Display struct {
	UUID       string
	TenantUUID string
	Name       string
	Columns    []DisplayColumn
}

// Config is a fully resolved profile: its display plus, per service, the
// bound source UUIDs in configured order. Resolved configs are plain values
// and safe for concurrent reads.
type Config struct {
	UUID       string
	TenantUUID string
	Name       string
	Display    *Display
	Services   map[string][]string
}

// SourceUUIDs returns the ordered source bindings for a service.
func (c *Config) SourceUUIDs(service string) []string {
	return c.Services[service]
}
