// internal/backend/csvfile.go
package backend

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"

	"go.uber.org/zap"
)

// csvFileDriver indexes a local CSV file in memory on first use and reloads
// it whenever the file's mtime changes.
type csvFileDriver struct {
	maker        resultMaker
	path         string
	delimiter    rune
	uniqueColumn string
	searched     []string
	firstMatched []string
	logger       *zap.Logger

	mu    sync.Mutex
	mtime time.Time
	rows  []map[string]any
}

func newCSVFile(cfg *source.Source, deps Deps) (Driver, error) {
	path := cfg.Extra("file_path", "")
	if path == "" {
		return nil, fmt.Errorf("csv-file source %q has no file_path", cfg.Name)
	}

	delimiter := ','
	if sep := cfg.Extra("separator", ""); sep != "" {
		delimiter = []rune(sep)[0]
	}

	return &csvFileDriver{
		maker:        makerFor(cfg),
		path:         path,
		delimiter:    delimiter,
		uniqueColumn: cfg.Extra("unique_column", "id"),
		searched:     cfg.SearchedColumns,
		firstMatched: cfg.FirstMatchedColumns,
		logger:       deps.Logger,
	}, nil
}

func (d *csvFileDriver) Search(ctx context.Context, term string, rc RequestContext) ([]directory.Result, error) {
	rows, err := d.load()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(term)
	var results []directory.Result
	for _, row := range rows {
		if d.matchesSubstring(row, needle) {
			results = append(results, d.makeResult(row))
		}
	}
	return results, nil
}

func (d *csvFileDriver) FirstMatch(ctx context.Context, exten string, rc RequestContext) (*directory.Result, error) {
	rows, err := d.load()
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		for _, column := range d.firstMatched {
			if value, ok := row[column].(string); ok && strings.EqualFold(value, exten) {
				result := d.makeResult(row)
				return &result, nil
			}
		}
	}
	return nil, nil
}

func (d *csvFileDriver) ListByIDs(ctx context.Context, ids []string, rc RequestContext) ([]directory.Result, error) {
	rows, err := d.load()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]map[string]any, len(rows))
	for _, row := range rows {
		if id, ok := row[d.uniqueColumn].(string); ok {
			byID[id] = row
		}
	}

	var results []directory.Result
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			results = append(results, d.makeResult(row))
		}
	}
	return results, nil
}

func (d *csvFileDriver) matchesSubstring(row map[string]any, needle string) bool {
	for _, column := range d.searched {
		if value, ok := row[column].(string); ok &&
			strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func (d *csvFileDriver) makeResult(row map[string]any) directory.Result {
	entryID, _ := row[d.uniqueColumn].(string)
	return d.maker.make(row, entryRelations(entryID))
}

// load returns the indexed rows, re-reading the file when its mtime changed.
func (d *csvFileDriver) load() ([]map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	info, err := os.Stat(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat csv file: %w", err)
	}
	if d.rows != nil && info.ModTime().Equal(d.mtime) {
		return d.rows, nil
	}

	file, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = d.delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file: %w", err)
	}
	if len(records) == 0 {
		d.rows = []map[string]any{}
		d.mtime = info.ModTime()
		return d.rows, nil
	}

	header := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	d.logger.Debug("csv file indexed",
		zap.String("path", d.path),
		zap.Int("rows", len(rows)),
	)
	d.rows = rows
	d.mtime = info.ModTime()
	return rows, nil
}
