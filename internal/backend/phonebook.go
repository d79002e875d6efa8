// internal/backend/phonebook.go
package backend

import (
	"context"
	"fmt"

	"dird-service/internal/domain/contact"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"
	"dird-service/internal/repository/postgres"
)

// phonebookDriver serves a tenant's shared phonebook from dird's own tables.
type phonebookDriver struct {
	maker         resultMaker
	contacts      *postgres.ContactRepository
	phonebookUUID string
	searched      []string
	firstMatched  []string
}

func newPhonebook(cfg *source.Source, deps Deps) (Driver, error) {
	phonebookUUID := cfg.Extra("phonebook_uuid", "")
	if phonebookUUID == "" {
		return nil, fmt.Errorf("phonebook source %q has no phonebook_uuid", cfg.Name)
	}
	return &phonebookDriver{
		maker:         makerFor(cfg),
		contacts:      deps.Contacts,
		phonebookUUID: phonebookUUID,
		searched:      cfg.SearchedColumns,
		firstMatched:  cfg.FirstMatchedColumns,
	}, nil
}

func (d *phonebookDriver) owner(rc RequestContext) postgres.Owner {
	return postgres.Owner{PhonebookUUID: d.phonebookUUID}
}

func (d *phonebookDriver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	contacts, err := d.contacts.Search(ctx, d.owner(rc), d.searched, term)
	if err != nil {
		return nil, err
	}
	return d.makeAll(contacts), nil
}

func (d *phonebookDriver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
	c, err := d.contacts.FirstMatch(ctx, d.owner(rc), d.firstMatched, exten)
	if err != nil || c == nil {
		return nil, err
	}
	result := d.makeOne(c)
	return &result, nil
}

func (d *phonebookDriver) ListByIDs(ctx context.Context, ids []string, rc RequestContext) ([]directory.Result, error) {
	contacts, err := d.contacts.ListByUUIDs(ctx, d.owner(rc), ids)
	if err != nil {
		return nil, err
	}
	return d.makeAll(contacts), nil
}

func (d *phonebookDriver) makeAll(contacts []*contact.Contact) []directory.Result {
	results := make([]directory.Result, 0, len(contacts))
	for _, c := range contacts {
		results = append(results, d.makeOne(c))
	}
	return results
}

func (d *phonebookDriver) makeOne(c *contact.Contact) directory.Result {
	raw := make(map[string]any, len(c.Fields))
	for name, value := range c.Fields {
		raw[name] = value
	}
	return d.maker.make(raw, entryRelations(c.UUID))
}
