// internal/domain/tenant/entity.go
package tenant

// Tenant is the root of visibility scope. Created from auth bus events.
type Tenant struct {
	UUID    string
	Country string
}

// User identifies a caller within a tenant. Tracked from auth bus events so
// a deletion can cascade favorites and personal contacts.
type User struct {
	UserUUID   string
	TenantUUID string
}
