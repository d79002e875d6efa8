// internal/repository/postgres/display_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"dird-service/internal/domain/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DisplayRepository struct {
	db *pgxpool.Pool
}

func NewDisplayRepository(db *pgxpool.Pool) *DisplayRepository {
	return &DisplayRepository{db: db}
}

func strptr(s string) *string { return &s }

// defaultColumns is the display auto-created for a new tenant.
var defaultColumns = []profile.DisplayColumn{
	{Title: strptr("Nom"), Type: strptr("name"), Field: strptr("name")},
	{Title: strptr("Numéro"), Type: strptr("number"), Field: strptr("phone")},
	{Title: strptr("Mobile"), Type: strptr("number"), Field: strptr("phone_mobile")},
	{Title: strptr("Boîte vocale"), Type: strptr("voicemail"), Field: strptr("voicemail")},
	{Title: strptr("Favoris"), Type: strptr("favorite"), Field: strptr("favorite"), Default: false},
	{Title: strptr("E-mail"), Type: strptr("email"), Field: strptr("email")},
	{Title: strptr("Personnel"), Type: strptr("personal"), Field: strptr("personal"), Default: false},
}

// CreateDefault inserts the auto-created display for a new tenant. Idempotent:
// a second call for the same tenant is a no-op.
func (r *DisplayRepository) CreateDefault(ctx context.Context, tenantUUID string) error {
	columnsJSON, err := json.Marshal(defaultColumns)
	if err != nil {
		return fmt.Errorf("failed to marshal default columns: %w", err)
	}

	query := `
		INSERT INTO displays (uuid, tenant_uuid, name, columns)
		VALUES ($1, $2, 'auto_default', $3)
		ON CONFLICT (tenant_uuid, name) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, uuid.NewString(), tenantUUID, columnsJSON); err != nil {
		return fmt.Errorf("failed to create default display: %w", err)
	}
	return nil
}
