// internal/backend/csvhttp.go
package backend

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// csvHTTPDriver fetches CSV from a remote service, forwarding the search
// term verbatim. The remote decides the match semantics; no client-side
// filtering happens beyond what it returns.
type csvHTTPDriver struct {
	maker        resultMaker
	lookupURL    string
	searchParam  string
	reverseParam string
	uniqueColumn string
	delimiter    rune
	client       *http.Client
}

func newCSVHTTP(cfg *source.Source, deps Deps) (Driver, error) {
	lookupURL := cfg.Extra("lookup_url", "")
	if lookupURL == "" {
		return nil, fmt.Errorf("csv-http source %q has no lookup_url", cfg.Name)
	}

	delimiter := ','
	if sep := cfg.Extra("separator", ""); sep != "" {
		delimiter = []rune(sep)[0]
	}

	return &csvHTTPDriver{
		maker:        makerFor(cfg),
		lookupURL:    lookupURL,
		searchParam:  cfg.Extra("search_param", "search"),
		reverseParam: cfg.Extra("reverse_param", "phonesearch"),
		uniqueColumn: cfg.Extra("unique_column", "id"),
		delimiter:    delimiter,
		client:       &http.Client{Timeout: deps.timeout()},
	}, nil
}

func (d *csvHTTPDriver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	return d.fetch(ctx, d.searchParam, term)
}

func (d *csvHTTPDriver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
	results, err := d.fetch(ctx, d.reverseParam, exten)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return &results[0], nil
}

func (d *csvHTTPDriver) fetch(ctx context.Context, param, value string) ([]directory.Result, error) {
	endpoint, err := url.Parse(d.lookupURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lookup_url: %w", err)
	}
	query := endpoint.Query()
	query.Set(param, value)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("csv service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("csv service: unexpected status %d", resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(body)
	reader.Comma = d.delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv response: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	header := records[0]
	results := make([]directory.Result, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		entryID, _ := row[d.uniqueColumn].(string)
		results = append(results, d.maker.make(row, entryRelations(entryID)))
	}
	return results, nil
}

// decodeBody honors the charset declared in the Content-Type header.
func decodeBody(resp *http.Response) (io.Reader, error) {
	var body io.Reader = resp.Body

	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return body, nil
	}
	charset, ok := params["charset"]
	if !ok || charset == "" || charset == "utf-8" {
		return body, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return transform.NewReader(body, enc.NewDecoder()), nil
}
