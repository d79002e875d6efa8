// internal/service/directory/reverse.go
package directory

import (
	"context"
	"sync/atomic"
	"time"

	"dird-service/internal/backend"
	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/profile"

	"go.uber.org/zap"
)

// ReverseService finds the first contact matching an extension, honoring the
// profile's source order as the tie-break.
type ReverseService struct {
	registry   DriverResolver
	logger     *zap.Logger
	timeout    time.Duration
	errorCount atomic.Int64
}

func NewReverseService(registry DriverResolver, logger *zap.Logger, timeout time.Duration) *ReverseService {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &ReverseService{registry: registry, logger: logger, timeout: timeout}
}

type indexedMatch struct {
	index int
	match *directory.Result
}

// Reverse dispatches first_match to every bound source in parallel and
// returns the first non-empty answer whose source appears earliest in the
// profile order, even when a later source responded first. Outstanding
// workers are cancelled once the answer is settled.
func (s *ReverseService) Reverse(ctx context.Context, cfg *profile.Config, exten string, rc backend.RequestContext) *directory.Result {
	uuids := cfg.SourceUUIDs(profile.ServiceReverse)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	answers := make([]*directory.Result, len(uuids))
	settled := make([]bool, len(uuids))

	ch := make(chan indexedMatch, len(uuids))
	pending := 0
	for i, uuid := range uuids {
		driver, _, err := s.registry.Get(ctx, uuid)
		if err != nil {
			s.logger.Warn("skipping unavailable source",
				zap.String("source_uuid", uuid),
				zap.Error(err),
			)
			settled[i] = true
			continue
		}
		reverser, ok := driver.(backend.ReverseDriver)
		if !ok {
			settled[i] = true
			continue
		}

		pending++
		go func(index int, uuid string, reverser backend.ReverseDriver) {
			match, err := reverser.FirstMatch(ctx, exten, rc)
			if err != nil {
				count := s.errorCount.Add(1)
				s.logger.Warn("source reverse lookup failed",
					zap.String("source_uuid", uuid),
					zap.Int64("error_count", count),
					zap.Error(err),
				)
				match = nil
			}
			ch <- indexedMatch{index: index, match: match}
		}(i, uuid, reverser)
	}

	for pending > 0 {
		select {
		case m := <-ch:
			settled[m.index] = true
			answers[m.index] = m.match
			pending--
			if winner := firstSettledMatch(answers, settled); winner != nil {
				return winner
			}
		case <-ctx.Done():
			s.logger.Warn("reverse deadline reached",
				zap.String("profile", cfg.Name),
				zap.Int("pending_sources", pending),
			)
			return firstMatch(answers)
		}
	}
	return firstMatch(answers)
}

// firstSettledMatch returns the earliest answer once every source before it
// has settled; nil while an earlier source could still win.
func firstSettledMatch(answers []*directory.Result, settled []bool) *directory.Result {
	for i := range answers {
		if !settled[i] {
			return nil
		}
		if answers[i] != nil {
			return answers[i]
		}
	}
	return nil
}

func firstMatch(answers []*directory.Result) *directory.Result {
	for _, answer := range answers {
		if answer != nil {
			return answer
		}
	}
	return nil
}
