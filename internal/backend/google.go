// internal/backend/google.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dird-service/internal/clients/auth"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const googlePeopleURL = "https://people.googleapis.com/v1/people/me/connections"

const googlePersonFields = "names,emailAddresses,phoneNumbers,organizations,addresses,biographies"

// googleDriver reads the caller's Google contacts, exchanging the platform
// token for a provider access token on every call. A caller who never linked
// Google silently contributes nothing.
type googleDriver struct {
	maker        resultMaker
	auth         *auth.Client
	endpoint     string
	searched     []string
	firstMatched []string
	client       *http.Client
	logger       *zap.Logger
}

func newGoogle(cfg *source.Source, deps Deps) (Driver, error) {
	return &googleDriver{
		maker:        makerFor(cfg),
		auth:         deps.Auth,
		endpoint:     cfg.Extra("people_url", googlePeopleURL),
		searched:     cfg.SearchedColumns,
		firstMatched: cfg.FirstMatchedColumns,
		client:       &http.Client{Timeout: deps.timeout()},
		logger:       deps.Logger,
	}, nil
}

func (d *googleDriver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	rows, err := d.fetchContacts(ctx, rc)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	columns := d.searched
	if len(columns) == 0 {
		columns = []string{"name", "firstname", "lastname", "email", "organization", "numbers"}
	}

	var results []directory.Result
	for _, row := range rows {
		if rowMatchesColumns(row, columns, needle) {
			results = append(results, d.makeResult(row))
		}
	}
	return results, nil
}

func (d *googleDriver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
	rows, err := d.fetchContacts(ctx, rc)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if numbers, ok := row["numbers"].([]any); ok {
			for _, number := range numbers {
				if s, ok := number.(string); ok && strings.EqualFold(s, exten) {
					result := d.makeResult(row)
					return &result, nil
				}
			}
		}
	}
	return nil, nil
}

func (d *googleDriver) fetchContacts(ctx context.Context, rc RequestContext) ([]map[string]any, error) {
	accessToken, err := d.auth.ExternalTokenGet(ctx, rc.Token, "google", rc.UserUUID)
	if errors.Is(err, xerrors.ErrNoSuchExternalToken) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	endpoint := d.endpoint + "?personFields=" + url.QueryEscape(googlePersonFields) + "&pageSize=1000"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google people unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google people: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read google response: %w", err)
	}

	var rows []map[string]any
	for _, person := range gjson.GetBytes(body, "connections").Array() {
		rows = append(rows, googleRow(person))
	}
	return rows, nil
}

// googleRow flattens one People API person into the uniform raw row.
func googleRow(person gjson.Result) map[string]any {
	row := map[string]any{
		"id":        person.Get("resourceName").String(),
		"name":      person.Get("names.0.displayName").String(),
		"firstname": person.Get("names.0.givenName").String(),
		"lastname":  person.Get("names.0.familyName").String(),
	}

	var labeled []labeledNumber
	for _, number := range person.Get("phoneNumbers").Array() {
		value := number.Get("value").String()
		if value == "" {
			continue
		}
		labeled = append(labeled, labeledNumber{
			label: strings.ToLower(number.Get("type").String()),
			value: value,
		})
	}
	addNumberFields(row, labeled)

	var emails []any
	for _, email := range person.Get("emailAddresses").Array() {
		if value := email.Get("value").String(); value != "" {
			emails = append(emails, value)
		}
	}
	row["emails"] = emails
	if len(emails) > 0 {
		row["email"] = emails[0]
	}

	if org := person.Get("organizations.0.name").String(); org != "" {
		row["organization"] = org
	}
	return row
}

func (d *googleDriver) makeResult(row map[string]any) directory.Result {
	entryID, _ := row["id"].(string)
	return d.maker.make(row, entryRelations(entryID))
}
