// internal/backend/microsoft365.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dird-service/internal/clients/auth"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const graphContactsURL = "https://graph.microsoft.com/v1.0/me/contacts"

// microsoft365Driver reads the caller's Outlook contacts through the Graph
// API with a delegated token from the auth service.
type microsoft365Driver struct {
	maker        resultMaker
	auth         *auth.Client
	endpoint     string
	searched     []string
	firstMatched []string
	client       *http.Client
	logger       *zap.Logger
}

func newMicrosoft365(cfg *source.Source, deps Deps) (Driver, error) {
	return &microsoft365Driver{
		maker:        makerFor(cfg),
		auth:         deps.Auth,
		endpoint:     cfg.Extra("graph_url", graphContactsURL),
		searched:     cfg.SearchedColumns,
		firstMatched: cfg.FirstMatchedColumns,
		client:       &http.Client{Timeout: deps.timeout()},
		logger:       deps.Logger,
	}, nil
}

func (d *microsoft365Driver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	rows, err := d.fetchContacts(ctx, rc)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	columns := d.searched
	if len(columns) == 0 {
		columns = []string{"name", "firstname", "lastname", "email"}
	}

	var results []directory.Result
	for _, row := range rows {
		if rowMatchesColumns(row, columns, needle) {
			results = append(results, d.makeResult(row))
		}
	}
	return results, nil
}

func (d *microsoft365Driver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
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

func (d *microsoft365Driver) fetchContacts(ctx context.Context, rc RequestContext) ([]map[string]any, error) {
	accessToken, err := d.auth.ExternalTokenGet(ctx, rc.Token, "microsoft", rc.UserUUID)
	if errors.Is(err, xerrors.ErrNoSuchExternalToken) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?$top=1000", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("microsoft graph unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("microsoft graph: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph response: %w", err)
	}

	var rows []map[string]any
	for _, item := range gjson.GetBytes(body, "value").Array() {
		rows = append(rows, graphRow(item))
	}
	return rows, nil
}

// graphRow flattens one Graph contact into the uniform raw row.
func graphRow(item gjson.Result) map[string]any {
	row := map[string]any{
		"id":        item.Get("id").String(),
		"name":      item.Get("displayName").String(),
		"firstname": item.Get("givenName").String(),
		"lastname":  item.Get("surname").String(),
	}

	var labeled []labeledNumber
	if business := item.Get("businessPhones.0").String(); business != "" {
		labeled = append(labeled, labeledNumber{label: "business", value: business})
	}
	if mobile := item.Get("mobilePhone").String(); mobile != "" {
		labeled = append(labeled, labeledNumber{label: "mobile", value: mobile})
	}
	if home := item.Get("homePhones.0").String(); home != "" {
		labeled = append(labeled, labeledNumber{label: "home", value: home})
	}
	addNumberFields(row, labeled)

	var emails []any
	for _, email := range item.Get("emailAddresses").Array() {
		if value := email.Get("address").String(); value != "" {
			emails = append(emails, value)
		}
	}
	row["emails"] = emails
	if len(emails) > 0 {
		row["email"] = emails[0]
	}

	if company := item.Get("companyName").String(); company != "" {
		row["organization"] = company
	}
	return row
}

func (d *microsoft365Driver) makeResult(row map[string]any) directory.Result {
	entryID, _ := row["id"].(string)
	return d.maker.make(row, entryRelations(entryID))
}
