// internal/repository/postgres/source_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dird-service/internal/domain/source"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type SourceRepository struct {
	db *pgxpool.Pool
}

func NewSourceRepository(db *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceColumns = `uuid, tenant_uuid, name, backend, searched_columns, first_matched_columns, format_columns, extra_fields`

func scanSource(row pgx.Row) (*source.Source, error) {
	var s source.Source
	var searched, firstMatched pq.StringArray
	var formatJSON, extraJSON []byte

	err := row.Scan(
		&s.UUID, &s.TenantUUID, &s.Name, &s.Backend,
		&searched, &firstMatched, &formatJSON, &extraJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNoSuchSource
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	s.SearchedColumns = searched
	s.FirstMatchedColumns = firstMatched
	if len(formatJSON) > 0 {
		if err := json.Unmarshal(formatJSON, &s.FormatColumns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal format_columns: %w", err)
		}
	}
	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &s.ExtraFields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extra_fields: %w", err)
		}
	}
	return &s, nil
}

// FindByUUID retrieves a source configuration by uuid.
func (r *SourceRepository) FindByUUID(ctx context.Context, uuid string) (*source.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE uuid = $1`
	return scanSource(r.db.QueryRow(ctx, query, uuid))
}

// FindByName retrieves a source by its tenant-unique name.
func (r *SourceRepository) FindByName(ctx context.Context, tenantUUID, name string) (*source.Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM sources WHERE tenant_uuid = $1 AND name = $2`
	return scanSource(r.db.QueryRow(ctx, query, tenantUUID, name))
}

// FindByUUIDs retrieves several sources at once, keyed by uuid. Unknown uuids
// are simply absent from the map.
func (r *SourceRepository) FindByUUIDs(ctx context.Context, uuids []string) (map[string]*source.Source, error) {
	if len(uuids) == 0 {
		return map[string]*source.Source{}, nil
	}

	query := `SELECT ` + sourceColumns + ` FROM sources WHERE uuid = ANY($1)`
	rows, err := r.db.Query(ctx, query, uuids)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*source.Source, len(uuids))
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out[s.UUID] = s
	}
	return out, rows.Err()
}
