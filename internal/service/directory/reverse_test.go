package directory

import (
	"context"
	"testing"
	"time"

	"dird-service/internal/backend"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func matchFor(sourceName string) *directory.Result {
	r := namedResult(sourceName, sourceName+"-match")
	return &r
}

func TestReverseProfileOrderTieBreak(t *testing.T) {
	// Both sources match; B responds first. A's answer must win because A
	// precedes B in the profile order.
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"a": &fakeDriver{match: matchFor("A"), delay: 50 * time.Millisecond},
		"b": &fakeDriver{match: matchFor("B")},
	}}
	svc := NewReverseService(registry, zap.NewNop(), time.Second)

	result := svc.Reverse(context.Background(), profileWith(profile.ServiceReverse, "a", "b"), "1000", backend.RequestContext{})

	require.NotNil(t, result)
	assert.Equal(t, "A", result.Source)
}

func TestReverseFirstNonEmptyWins(t *testing.T) {
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"a": &fakeDriver{match: nil},
		"b": &fakeDriver{match: matchFor("B")},
	}}
	svc := NewReverseService(registry, zap.NewNop(), time.Second)

	result := svc.Reverse(context.Background(), profileWith(profile.ServiceReverse, "a", "b"), "1000", backend.RequestContext{})

	require.NotNil(t, result)
	assert.Equal(t, "B", result.Source)
}

func TestReverseReturnsEarlyWithoutWaitingForLaterSources(t *testing.T) {
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"a": &fakeDriver{match: matchFor("A")},
		"b": &fakeDriver{match: matchFor("B"), delay: 10 * time.Second},
	}}
	svc := NewReverseService(registry, zap.NewNop(), 5*time.Second)

	start := time.Now()
	result := svc.Reverse(context.Background(), profileWith(profile.ServiceReverse, "a", "b"), "1000", backend.RequestContext{})

	require.NotNil(t, result)
	assert.Equal(t, "A", result.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReverseNoMatch(t *testing.T) {
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"a": &fakeDriver{match: nil},
		"b": &fakeDriver{match: nil},
	}}
	svc := NewReverseService(registry, zap.NewNop(), time.Second)

	result := svc.Reverse(context.Background(), profileWith(profile.ServiceReverse, "a", "b"), "1000", backend.RequestContext{})
	assert.Nil(t, result)
}

func TestReverseDeadlineReturnsBestSoFar(t *testing.T) {
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"hang": &fakeDriver{match: matchFor("H"), delay: 10 * time.Second},
		"fast": &fakeDriver{match: matchFor("F")},
	}}
	svc := NewReverseService(registry, zap.NewNop(), 100*time.Millisecond)

	result := svc.Reverse(context.Background(), profileWith(profile.ServiceReverse, "hang", "fast"), "1000", backend.RequestContext{})

	require.NotNil(t, result)
	assert.Equal(t, "F", result.Source)
}

func TestReverseSkipsSourcesWithoutFirstMatch(t *testing.T) {
	// searchOnlyDriver has no FirstMatch capability at all.
	registry := &fakeRegistry{drivers: map[string]backend.Driver{
		"search-only": &searchOnlyDriver{},
		"b":           &fakeDriver{match: matchFor("B")},
	}}
	svc := NewReverseService(registry, zap.NewNop(), time.Second)

	result := svc.Reverse(context.Background(), profileWith(profile.ServiceReverse, "search-only", "b"), "1000", backend.RequestContext{})

	require.NotNil(t, result)
	assert.Equal(t, "B", result.Source)
}

type searchOnlyDriver struct{}

func (d *searchOnlyDriver) Search(ctx context.Context, term string, rc backend.RequestContext) ([]directory.Result, error) {
	return nil, nil
}
