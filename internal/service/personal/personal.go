// internal/service/personal/personal.go
package personal

import (
	"context"

	"dird-service/internal/domain/contact"
	xerrors "dird-service/internal/pkg/errors"
	"dird-service/internal/pkg/phone"

	"go.uber.org/zap"
)

// ContactStore is the persistence surface the service needs. The postgres
// repository implements it; tests drive it with a fake.
type ContactStore interface {
	Create(ctx context.Context, userUUID string, fields map[string]string, hash string) (*contact.Contact, error)
	Edit(ctx context.Context, userUUID, contactUUID string, fields map[string]string, hash string) (*contact.Contact, error)
	Get(ctx context.Context, userUUID, contactUUID string) (*contact.Contact, error)
	Delete(ctx context.Context, userUUID, contactUUID string) error
	List(ctx context.Context, userUUID string) ([]*contact.Contact, error)
	Purge(ctx context.Context, userUUID string) error
}

// TenantStore resolves a tenant's configured country.
type TenantStore interface {
	Country(ctx context.Context, tenantUUID string) (string, error)
}

// Service manages a user's personal contacts.
type Service struct {
	contacts ContactStore
	tenants  TenantStore
	logger   *zap.Logger
}

func NewService(contacts ContactStore, tenants TenantStore, logger *zap.Logger) *Service {
	return &Service{contacts: contacts, tenants: tenants, logger: logger}
}

// Create stores a new contact. Fields are canonicalized before hashing; a
// formatted_number is derived from a number field when the tenant has a
// country and the number parses.
func (s *Service) Create(ctx context.Context, tenantUUID, userUUID string, fields map[string]string) (map[string]string, error) {
	canonical := contact.Canonicalize(fields)
	if canonical == nil {
		return nil, xerrors.ErrInvalidContact
	}
	s.deriveFormattedNumber(ctx, tenantUUID, canonical)

	c, err := s.contacts.Create(ctx, userUUID, canonical, contact.HashFields(canonical))
	if err != nil {
		return nil, err
	}

	s.logger.Info("personal contact created",
		zap.String("contact_uuid", c.UUID),
		zap.String("user_uuid", userUUID),
	)
	return withID(canonical, c.UUID), nil
}

// Get returns one contact; its fields always include id.
func (s *Service) Get(ctx context.Context, userUUID, contactUUID string) (map[string]string, error) {
	c, err := s.contacts.Get(ctx, userUUID, contactUUID)
	if err != nil {
		return nil, err
	}
	return withID(c.Fields, c.UUID), nil
}

// Edit replaces a contact's fields, recomputing the dedup hash.
func (s *Service) Edit(ctx context.Context, tenantUUID, userUUID, contactUUID string, fields map[string]string) (map[string]string, error) {
	canonical := contact.Canonicalize(fields)
	if canonical == nil {
		return nil, xerrors.ErrInvalidContact
	}
	s.deriveFormattedNumber(ctx, tenantUUID, canonical)

	c, err := s.contacts.Edit(ctx, userUUID, contactUUID, canonical, contact.HashFields(canonical))
	if err != nil {
		return nil, err
	}
	return withID(canonical, c.UUID), nil
}

// Delete removes one contact.
func (s *Service) Delete(ctx context.Context, userUUID, contactUUID string) error {
	return s.contacts.Delete(ctx, userUUID, contactUUID)
}

// List returns every contact the user owns.
func (s *Service) List(ctx context.Context, userUUID string) ([]map[string]string, error) {
	contacts, err := s.contacts.List(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]string, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, withID(c.Fields, c.UUID))
	}
	return out, nil
}

// Purge deletes every contact the user owns.
func (s *Service) Purge(ctx context.Context, userUUID string) error {
	return s.contacts.Purge(ctx, userUUID)
}

// ImportCSV turns each row of csvText into a contact attempt. Failed rows
// carry their line number and reason; successful rows are returned with
// their new id.
func (s *Service) ImportCSV(ctx context.Context, tenantUUID, userUUID, csvText string) (*contact.ImportResult, error) {
	rows, parseFailures, err := parseCSV(csvText)
	if err != nil {
		return nil, err
	}

	result := &contact.ImportResult{
		Created: []map[string]string{},
		Failed:  parseFailures,
	}
	for _, row := range rows {
		created, err := s.Create(ctx, tenantUUID, userUUID, row.fields)
		if err != nil {
			result.Failed = append(result.Failed, contact.ImportFailure{
				Line:   row.line,
				Errors: []string{err.Error()},
			})
			continue
		}
		result.Created = append(result.Created, created)
	}
	return result, nil
}

// ExportCSV renders the user's contacts as UTF-8 CSV.
func (s *Service) ExportCSV(ctx context.Context, userUUID string) (string, error) {
	contacts, err := s.List(ctx, userUUID)
	if err != nil {
		return "", err
	}
	return renderCSV(contacts)
}

func (s *Service) deriveFormattedNumber(ctx context.Context, tenantUUID string, fields map[string]string) {
	number, ok := fields["number"]
	if !ok {
		return
	}
	country, err := s.tenants.Country(ctx, tenantUUID)
	if err != nil || country == "" {
		return
	}
	if formatted, ok := phone.FormatE164(number, country); ok {
		fields["formatted_number"] = formatted
	}
}

func withID(fields map[string]string, uuid string) map[string]string {
	out := make(map[string]string, len(fields)+1)
	for name, value := range fields {
		out[name] = value
	}
	out["id"] = uuid
	return out
}
