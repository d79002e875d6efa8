package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dird-service/internal/backend"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/profile"
	"dird-service/internal/domain/source"
	xerrors "dird-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDriver answers with canned results after an optional delay.
type fakeDriver struct {
	name    string
	results []directory.Result
	match   *directory.Result
	delay   time.Duration
	err     error
}

func (d *fakeDriver) wait(ctx context.Context) error {
	if d.delay == 0 {
		return nil
	}
	select {
	case <-time.After(d.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *fakeDriver) Search(ctx context.Context, term string, rc backend.RequestContext) ([]directory.Result, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.results, d.err
}

func (d *fakeDriver) FirstMatch(ctx context.Context, exten string, rc backend.RequestContext) (*directory.Result, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.match, d.err
}

type fakeRegistry struct {
	drivers map[string]backend.Driver
}

func (r *fakeRegistry) Get(ctx context.Context, uuid string) (backend.Driver, *source.Source, error) {
	driver, ok := r.drivers[uuid]
	if !ok {
		return nil, nil, xerrors.ErrNoSuchSource
	}
	return driver, &source.Source{UUID: uuid}, nil
}

func namedResult(sourceName, name string) directory.Result {
	entryID := name
	return directory.Result{
		Fields:    map[string]any{"name": name},
		Source:    sourceName,
		Backend:   "csv",
		Relations: directory.Relations{SourceEntryID: &entryID},
	}
}

func profileWith(service string, uuids ...string) *profile.Config {
	return &profile.Config{
		UUID:       "profile-1",
		TenantUUID: "tenant-1",
		Name:       "default",
		Services:   map[string][]string{service: uuids},
	}
}

func TestLookupPreservesProfileOrder(t *testing.T) {
	// B answers first; the merged results must still come out A then B.
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"a": &fakeDriver{results: []directory.Result{namedResult("A", "Alice")}, delay: 50 * time.Millisecond},
		"b": &fakeDriver{results: []directory.Result{namedResult("B", "Bob")}},
	}}
	svc := NewLookupService(registry, zap.NewNop(), time.Second)

	results := svc.Lookup(context.Background(), profileWith(profile.ServiceLookup, "a", "b"), "x", backend.RequestContext{})

	require.Len(t, results, 2)
	assert.Equal(t, "Alice", results[0].Fields["name"])
	assert.Equal(t, "Bob", results[1].Fields["name"])
}

func TestLookupSkipsMissingSources(t *testing.T) {
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"b": &fakeDriver{results: []directory.Result{namedResult("B", "Bob")}},
	}}
	svc := NewLookupService(registry, zap.NewNop(), time.Second)

	results := svc.Lookup(context.Background(), profileWith(profile.ServiceLookup, "gone", "b"), "x", backend.RequestContext{})

	require.Len(t, results, 1)
	assert.Equal(t, "Bob", results[0].Fields["name"])
}

func TestLookupSwallowsDriverErrors(t *testing.T) {
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"a": &fakeDriver{err: errors.New("remote exploded")},
		"b": &fakeDriver{results: []directory.Result{namedResult("B", "Bob")}},
	}}
	svc := NewLookupService(registry, zap.NewNop(), time.Second)

	results := svc.Lookup(context.Background(), profileWith(profile.ServiceLookup, "a", "b"), "x", backend.RequestContext{})

	require.Len(t, results, 1)
	assert.Equal(t, "Bob", results[0].Fields["name"])
	assert.EqualValues(t, 1, svc.ErrorCount())
}

func TestLookupTimeoutIsolation(t *testing.T) {
	// One source hangs past the deadline; the fast one must still answer and
	// the call must return within twice the deadline.
	deadline := 100 * time.Millisecond
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"hang": &fakeDriver{results: []directory.Result{namedResult("H", "Never")}, delay: 10 * time.Second},
		"fast": &fakeDriver{results: []directory.Result{namedResult("F", "Carol")}},
	}}
	svc := NewLookupService(registry, zap.NewNop(), deadline)

	start := time.Now()
	results := svc.Lookup(context.Background(), profileWith(profile.ServiceLookup, "hang", "fast"), "x", backend.RequestContext{})
	elapsed := time.Since(start)

	require.Len(t, results, 1)
	assert.Equal(t, "Carol", results[0].Fields["name"])
	assert.Less(t, elapsed, 2*deadline)
}

func TestLookupEmptyProfile(t *testing.T) {
	svc := NewLookupService(&fakeRegistry{}, zap.NewNop(), time.Second)

	results := svc.Lookup(context.Background(), profileWith(profile.ServiceLookup), "x", backend.RequestContext{})
	assert.Empty(t, results)
}
