// internal/backend/personal.go
package backend

import (
	"context"

	"dird-service/internal/domain/contact"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"
	"dird-service/internal/repository/postgres"
)

// personalDriver is the phonebook shape scoped to the caller's own contacts.
// Its results are flagged personal and deletable.
type personalDriver struct {
	maker        resultMaker
	contacts     *postgres.ContactRepository
	searched     []string
	firstMatched []string
}

func newPersonal(cfg *source.Source, deps Deps) (Driver, error) {
	maker := makerFor(cfg)
	maker.isPersonal = true
	maker.isDeletable = true
	return &personalDriver{
		maker:        maker,
		contacts:     deps.Contacts,
		searched:     cfg.SearchedColumns,
		firstMatched: cfg.FirstMatchedColumns,
	}, nil
}

func (d *personalDriver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	contacts, err := d.contacts.Search(ctx, postgres.Owner{UserUUID: rc.UserUUID}, d.searched, term)
	if err != nil {
		return nil, err
	}
	return d.makeAll(contacts), nil
}

func (d *personalDriver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
	c, err := d.contacts.FirstMatch(ctx, postgres.Owner{UserUUID: rc.UserUUID}, d.firstMatched, exten)
	if err != nil || c == nil {
		return nil, err
	}
	result := d.makeOne(c)
	return &result, nil
}

func (d *personalDriver) ListByIDs(ctx context.Context, ids []string, rc RequestContext) ([]directory.Result, error) {
	contacts, err := d.contacts.ListByUUIDs(ctx, postgres.Owner{UserUUID: rc.UserUUID}, ids)
	if err != nil {
		return nil, err
	}
	return d.makeAll(contacts), nil
}

func (d *personalDriver) makeAll(contacts []*contact.Contact) []directory.Result {
	results := make([]directory.Result, 0, len(contacts))
	for _, c := range contacts {
		results = append(results, d.makeOne(c))
	}
	return results
}

func (d *personalDriver) makeOne(c *contact.Contact) directory.Result {
	raw := make(map[string]any, len(c.Fields))
	for name, value := range c.Fields {
		raw[name] = value
	}
	return d.maker.make(raw, entryRelations(c.UUID))
}
