// internal/backend/ldap.go
package backend

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// ldapDriver searches an external LDAP directory. The connection is opened
// lazily and re-dialed once when a search hits a stale socket.
type ldapDriver struct {
	maker        resultMaker
	uri          string
	baseDN       string
	bindDN       string
	bindPassword string
	customFilter string
	searched     []string
	firstMatched []string
	uniqueColumn string
	timeout      time.Duration
	logger       *zap.Logger

	mu   sync.Mutex
	conn *ldap.Conn
}

func newLDAP(cfg *source.Source, deps Deps) (Driver, error) {
	uri := cfg.Extra("ldap_uri", "")
	baseDN := cfg.Extra("ldap_base_dn", "")
	if uri == "" || baseDN == "" {
		return nil, fmt.Errorf("ldap source %q needs ldap_uri and ldap_base_dn", cfg.Name)
	}

	return &ldapDriver{
		maker:        makerFor(cfg),
		uri:          uri,
		baseDN:       baseDN,
		bindDN:       cfg.Extra("ldap_username", ""),
		bindPassword: cfg.Extra("ldap_password", ""),
		customFilter: cfg.Extra("ldap_custom_filter", ""),
		searched:     cfg.SearchedColumns,
		firstMatched: cfg.FirstMatchedColumns,
		uniqueColumn: cfg.Extra("unique_column", "entryUUID"),
		timeout:      deps.timeout(),
		logger:       deps.Logger,
	}, nil
}

func (d *ldapDriver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	filter := d.lookupFilter(term)
	if filter == "" {
		return nil, nil
	}
	return d.search(ctx, filter)
}

func (d *ldapDriver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
	filter := equalityFilter(d.firstMatched, exten)
	if filter == "" {
		return nil, nil
	}
	results, err := d.search(ctx, filter)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return &results[0], nil
}

// lookupFilter builds the search filter: the configured template with %Q
// replaced by the escaped term, or a substring OR over searched columns.
func (d *ldapDriver) lookupFilter(term string) string {
	escaped := ldap.EscapeFilter(term)
	if d.customFilter != "" {
		return strings.ReplaceAll(d.customFilter, "%Q", escaped)
	}
	if len(d.searched) == 0 {
		return ""
	}
	var parts []string
	for _, column := range d.searched {
		parts = append(parts, fmt.Sprintf("(%s=*%s*)", column, escaped))
	}
	return "(|" + strings.Join(parts, "") + ")"
}

func equalityFilter(columns []string, value string) string {
	if len(columns) == 0 {
		return ""
	}
	escaped := ldap.EscapeFilter(value)
	var parts []string
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("(%s=%s)", column, escaped))
	}
	return "(|" + strings.Join(parts, "") + ")"
}

func (d *ldapDriver) search(ctx context.Context, filter string) ([]directory.Result, error) {
	request := ldap.NewSearchRequest(
		d.baseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, int(d.timeout.Seconds()), false,
		filter,
		nil, // all attributes
		nil,
	)

	entries, err := d.doSearch(request)
	if err != nil {
		// One reconnect attempt covers a stale connection.
		d.dropConn()
		entries, err = d.doSearch(request)
		if err != nil {
			return nil, fmt.Errorf("ldap search failed: %w", err)
		}
	}

	results := make([]directory.Result, 0, len(entries))
	for _, entry := range entries {
		results = append(results, d.makeResult(entry))
	}
	return results, nil
}

func (d *ldapDriver) doSearch(request *ldap.SearchRequest) ([]*ldap.Entry, error) {
	conn, err := d.getConn()
	if err != nil {
		return nil, err
	}
	response, err := conn.Search(request)
	if err != nil {
		return nil, err
	}
	return response.Entries, nil
}

func (d *ldapDriver) getConn() (*ldap.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil && !d.conn.IsClosing() {
		return d.conn, nil
	}

	conn, err := ldap.DialURL(d.uri, ldap.DialWithDialer(&net.Dialer{Timeout: d.timeout}))
	if err != nil {
		return nil, fmt.Errorf("ldap dial failed: %w", err)
	}
	conn.SetTimeout(d.timeout)

	if d.bindDN != "" {
		if err := conn.Bind(d.bindDN, d.bindPassword); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ldap bind failed: %w", err)
		}
	}

	d.conn = conn
	return conn, nil
}

func (d *ldapDriver) dropConn() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

func (d *ldapDriver) makeResult(entry *ldap.Entry) directory.Result {
	raw := make(map[string]any, len(entry.Attributes))
	for _, attr := range entry.Attributes {
		if len(attr.Values) == 1 {
			raw[attr.Name] = attr.Values[0]
		} else if len(attr.Values) > 1 {
			values := make([]any, len(attr.Values))
			for i, v := range attr.Values {
				values[i] = v
			}
			raw[attr.Name] = values
		}
	}

	entryID := entry.GetAttributeValue(d.uniqueColumn)
	if entryID == "" {
		entryID = entry.DN
	}
	return d.maker.make(raw, entryRelations(entryID))
}
