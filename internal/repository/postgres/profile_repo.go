// internal/repository/postgres/profile_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dird-service/internal/domain/profile"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Resolve loads a profile by tenant and name: the profile row, its display,
// and for every service the bound source uuids in insertion order. It never
// touches the sources themselves.
func (r *ProfileRepository) Resolve(ctx context.Context, tenantUUID, name string) (*profile.Config, error) {
	cfg := profile.Config{
		Services: map[string][]string{},
	}

	var displayUUID *string
	query := `SELECT uuid, tenant_uuid, name, display_uuid FROM profiles WHERE tenant_uuid = $1 AND name = $2`
	err := r.db.QueryRow(ctx, query, tenantUUID, name).Scan(&cfg.UUID, &cfg.TenantUUID, &cfg.Name, &displayUUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNoSuchProfile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if displayUUID != nil {
		display, err := r.loadDisplay(ctx, *displayUUID)
		if err != nil {
			return nil, err
		}
		cfg.Display = display
	}

	servicesQuery := `
		SELECT ps.service_name, pss.source_uuid
		FROM profile_services ps
		JOIN profile_service_sources pss ON pss.profile_service_uuid = ps.uuid
		WHERE ps.profile_uuid = $1
		ORDER BY ps.service_name, pss.position
	`
	rows, err := r.db.Query(ctx, servicesQuery, cfg.UUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var service, sourceUUID string
		if err := rows.Scan(&service, &sourceUUID); err != nil {
			return nil, fmt.Errorf("failed to scan profile service: %w", err)
		}
		cfg.Services[service] = append(cfg.Services[service], sourceUUID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load profile services: %w", err)
	}

	return &cfg, nil
}

func (r *ProfileRepository) loadDisplay(ctx context.Context, uuid string) (*profile.Display, error) {
	var d profile.Display
	var columnsJSON []byte

	query := `SELECT uuid, tenant_uuid, name, columns FROM displays WHERE uuid = $1`
	err := r.db.QueryRow(ctx, query, uuid).Scan(&d.UUID, &d.TenantUUID, &d.Name, &columnsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNoSuchDisplay
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load display: %w", err)
	}

	if len(columnsJSON) > 0 {
		if err := json.Unmarshal(columnsJSON, &d.Columns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal display columns: %w", err)
		}
	}
	return &d, nil
}
