// internal/backend/driver.go
package backend

import (
	"context"
	"time"

	"dird-service/internal/clients/auth"
	"dird-service/internal/clients/confd"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"
	"dird-service/internal/repository/postgres"

	"go.uber.org/zap"
)

// RequestContext carries the caller's identity into every driver call.
type RequestContext struct {
	UserUUID   string
	TenantUUID string
	Token      string
}

// Driver is the capability every source backend implements.
type Driver interface {
	Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error)
}

// ReverseDriver is implemented by backends that support reverse lookup.
type ReverseDriver interface {
	Driver
	FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error)
}

// ListDriver is implemented by backends that can materialize entries by id,
// used to rebuild favorites.
type ListDriver interface {
	Driver
	ListByIDs(ctx context.Context, ids []string, rc RequestContext) ([]directory.Result, error)
}

// Deps are the shared collaborators a factory may hand to its driver.
type Deps struct {
	Logger   *zap.Logger
	Auth     *auth.Client
	Confd    *confd.Client
	Contacts *postgres.ContactRepository

	// Timeout is the per-driver soft deadline for remote calls.
	Timeout time.Duration
}

func (d Deps) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return 3 * time.Second
}

// Factory builds a driver from its stored source configuration. Factories
// must construct quickly and defer network work to the first call: the
// registry instantiates under its lock.
type Factory func(cfg *source.Source, deps Deps) (Driver, error)

// Factories is the explicit enum of compiled-in backend variants.
func Factories() map[string]Factory {
	return map[string]Factory{
		source.BackendInternalUsers: newInternalUsers,
		source.BackendPhonebook:     newPhonebook,
		source.BackendPersonal:      newPersonal,
		source.BackendCSVFile:       newCSVFile,
		source.BackendCSVHTTP:       newCSVHTTP,
		source.BackendLDAP:          newLDAP,
		source.BackendGoogle:        newGoogle,
		source.BackendMicrosoft365:  newMicrosoft365,
	}
}
