// internal/repository/postgres/contact_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"dird-service/internal/domain/contact"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// escapeLike neutralizes LIKE metacharacters in a user-supplied term.
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

type ContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

// Owner scopes a contact query to a shared phonebook or to one user's
// personal contacts. Exactly one member is set.
type Owner struct {
	PhonebookUUID string
	UserUUID      string
}

func (o Owner) condition() (string, string) {
	if o.PhonebookUUID != "" {
		return "c.phonebook_uuid = $1", o.PhonebookUUID
	}
	return "c.user_uuid = $1", o.UserUUID
}

// Create inserts a personal contact with its fields in one transaction. The
// "id" field mirroring the uuid is stored alongside the caller's fields.
func (r *ContactRepository) Create(ctx context.Context, userUUID string, fields map[string]string, hash string) (*contact.Contact, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c := &contact.Contact{
		UUID:     uuid.NewString(),
		UserUUID: userUUID,
		Hash:     hash,
		Fields:   fields,
	}

	query := `INSERT INTO contacts (uuid, user_uuid, hash) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, query, c.UUID, userUUID, hash); err != nil {
		if isUniqueViolation(err) {
			return nil, xerrors.ErrDuplicatedContact
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	if err := insertFields(ctx, tx, c.UUID, fields); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit contact: %w", err)
	}
	return c, nil
}

// Edit replaces a contact's fields and hash in one transaction.
func (r *ContactRepository) Edit(ctx context.Context, userUUID, contactUUID string, fields map[string]string, hash string) (*contact.Contact, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE contacts SET hash = $1 WHERE uuid = $2 AND user_uuid = $3`
	tag, err := tx.Exec(ctx, query, hash, contactUUID, userUUID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, xerrors.ErrDuplicatedContact
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, xerrors.ErrNoSuchContact
	}

	if _, err := tx.Exec(ctx, `DELETE FROM contact_fields WHERE contact_uuid = $1`, contactUUID); err != nil {
		return nil, fmt.Errorf("failed to clear contact fields: %w", err)
	}
	if err := insertFields(ctx, tx, contactUUID, fields); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit contact: %w", err)
	}
	return &contact.Contact{UUID: contactUUID, UserUUID: userUUID, Hash: hash, Fields: fields}, nil
}

func insertFields(ctx context.Context, tx pgx.Tx, contactUUID string, fields map[string]string) error {
	query := `INSERT INTO contact_fields (contact_uuid, name, value) VALUES ($1, $2, $3)`
	if _, err := tx.Exec(ctx, query, contactUUID, "id", contactUUID); err != nil {
		return fmt.Errorf("failed to insert contact id field: %w", err)
	}
	for name, value := range fields {
		if name == "id" {
			continue
		}
		if _, err := tx.Exec(ctx, query, contactUUID, name, value); err != nil {
			return fmt.Errorf("failed to insert contact field: %w", err)
		}
	}
	return nil
}

// Get loads one contact owned by userUUID.
func (r *ContactRepository) Get(ctx context.Context, userUUID, contactUUID string) (*contact.Contact, error) {
	contacts, err := r.loadContacts(ctx, Owner{UserUUID: userUUID}, []string{contactUUID})
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, xerrors.ErrNoSuchContact
	}
	return contacts[0], nil
}

// Delete removes one contact owned by userUUID; fields cascade.
func (r *ContactRepository) Delete(ctx context.Context, userUUID, contactUUID string) error {
	query := `DELETE FROM contacts WHERE uuid = $1 AND user_uuid = $2`
	tag, err := r.db.Exec(ctx, query, contactUUID, userUUID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNoSuchContact
	}
	return nil
}

// List returns every contact owned by userUUID.
func (r *ContactRepository) List(ctx context.Context, userUUID string) ([]*contact.Contact, error) {
	uuids, err := r.ownedUUIDs(ctx, Owner{UserUUID: userUUID})
	if err != nil {
		return nil, err
	}
	return r.loadContacts(ctx, Owner{UserUUID: userUUID}, uuids)
}

// Purge deletes every contact owned by userUUID.
func (r *ContactRepository) Purge(ctx context.Context, userUUID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE user_uuid = $1`, userUUID); err != nil {
		return fmt.Errorf("failed to purge contacts: %w", err)
	}
	return nil
}

// Search returns the owner's contacts having any of the given fields
// containing term, case-insensitively.
func (r *ContactRepository) Search(ctx context.Context, owner Owner, columns []string, term string) ([]*contact.Contact, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	cond, ownerArg := owner.condition()
	query := `
		SELECT DISTINCT c.uuid
		FROM contacts c
		JOIN contact_fields f ON f.contact_uuid = c.uuid
		WHERE ` + cond + ` AND f.name = ANY($2) AND f.value ILIKE '%' || $3 || '%'
	`
	return r.queryContacts(ctx, owner, query, ownerArg, pq.StringArray(columns), escapeLike(term))
}

// FirstMatch returns the first contact having any of the given fields equal
// to exten (case-insensitive exact comparison), or nil.
func (r *ContactRepository) FirstMatch(ctx context.Context, owner Owner, columns []string, exten string) (*contact.Contact, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	cond, ownerArg := owner.condition()
	query := `
		SELECT DISTINCT c.uuid
		FROM contacts c
		JOIN contact_fields f ON f.contact_uuid = c.uuid
		WHERE ` + cond + ` AND f.name = ANY($2) AND LOWER(f.value) = LOWER($3)
		LIMIT 1
	`
	contacts, err := r.queryContacts(ctx, owner, query, ownerArg, pq.StringArray(columns), exten)
	if err != nil || len(contacts) == 0 {
		return nil, err
	}
	return contacts[0], nil
}

// ListByUUIDs returns the owner's contacts among the given uuids. Unknown
// uuids are silently dropped.
func (r *ContactRepository) ListByUUIDs(ctx context.Context, owner Owner, uuids []string) ([]*contact.Contact, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	return r.loadContacts(ctx, owner, uuids)
}

func (r *ContactRepository) ownedUUIDs(ctx context.Context, owner Owner) ([]string, error) {
	cond, ownerArg := owner.condition()
	rows, err := r.db.Query(ctx, `SELECT c.uuid FROM contacts c WHERE `+cond, ownerArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact uuids: %w", err)
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan contact uuid: %w", err)
		}
		uuids = append(uuids, id)
	}
	return uuids, rows.Err()
}

func (r *ContactRepository) queryContacts(ctx context.Context, owner Owner, query string, args ...any) ([]*contact.Contact, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	defer rows.Close()

	var uuids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan contact uuid: %w", err)
		}
		uuids = append(uuids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.loadContacts(ctx, owner, uuids)
}

// loadContacts materializes contacts (with all their fields) for the given
// uuids, restricted to the owner.
func (r *ContactRepository) loadContacts(ctx context.Context, owner Owner, uuids []string) ([]*contact.Contact, error) {
	if len(uuids) == 0 {
		return nil, nil
	}

	cond, ownerArg := owner.condition()
	query := `
		SELECT c.uuid, COALESCE(c.phonebook_uuid::text, ''), COALESCE(c.user_uuid::text, ''), c.hash, f.name, f.value
		FROM contacts c
		JOIN contact_fields f ON f.contact_uuid = c.uuid
		WHERE ` + cond + ` AND c.uuid = ANY($2)
		ORDER BY c.uuid
	`
	rows, err := r.db.Query(ctx, query, ownerArg, uuids)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	defer rows.Close()

	byUUID := make(map[string]*contact.Contact)
	var ordered []*contact.Contact
	for rows.Next() {
		var id, phonebookUUID, userUUID, hash, name, value string
		if err := rows.Scan(&id, &phonebookUUID, &userUUID, &hash, &name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan contact field: %w", err)
		}
		c, ok := byUUID[id]
		if !ok {
			c = &contact.Contact{
				UUID:          id,
				PhonebookUUID: phonebookUUID,
				UserUUID:      userUUID,
				Hash:          hash,
				Fields:        map[string]string{},
			}
			byUUID[id] = c
			ordered = append(ordered, c)
		}
		c.Fields[name] = value
	}
	return ordered, rows.Err()
}
