package domain

import (
	"fmt"
	"sort"
	"time"
)

// ParticipantID identifies a participant. The engine treats it as opaque.
type ParticipantID string

// FreeTimeMap holds each participant's free intervals.
type FreeTimeMap map[ParticipantID][]TimeInterval

// IntersectStrategy selects how common free time is computed.
type IntersectStrategy string

const (
	// StrategySweep counts free participants across all interval boundaries in one pass.
	StrategySweep IntersectStrategy = "sweep"
	// StrategyPairwise folds participants one at a time, merging after every step.
	StrategyPairwise IntersectStrategy = "pairwise"
)

// ParseIntersectStrategy validates a strategy name. Empty selects the sweep.
func ParseIntersectStrategy(s string) (IntersectStrategy, error) {
	switch IntersectStrategy(s) {
	case "", StrategySweep:
		return StrategySweep, nil
	case StrategyPairwise:
		return StrategyPairwise, nil
	default:
		return "", fmt.Errorf("unknown intersect strategy %q", s)
	}
}

// MultiPartyIntersector computes the intervals in which every participant is free.
type MultiPartyIntersector struct {
	strategy IntersectStrategy
}

// NewMultiPartyIntersector creates an intersector. Unknown strategies fall back to the sweep.
func NewMultiPartyIntersector(strategy IntersectStrategy) *MultiPartyIntersector {
	if strategy != StrategyPairwise {
		strategy = StrategySweep
	}
	return &MultiPartyIntersector{strategy: strategy}
}

// Strategy returns the configured strategy.
func (m *MultiPartyIntersector) Strategy() IntersectStrategy {
	return m.strategy
}

// Intersect returns the merged common free intervals lasting at least minDurationMinutes,
// sorted by start. The result does not depend on map iteration order.
func (m *MultiPartyIntersector) Intersect(free FreeTimeMap, minDurationMinutes int) []TimeInterval {
	if len(free) == 0 {
		return []TimeInterval{}
	}

	var common []TimeInterval
	switch m.strategy {
	case StrategyPairwise:
		common = intersectPairwise(free)
	default:
		common = intersectSweep(free)
	}

	result := make([]TimeInterval, 0, len(common))
	for _, iv := range common {
		if iv.DurationMinutes() >= minDurationMinutes {
			result = append(result, iv)
		}
	}
	return result
}

// Merge sorts intervals by start and joins any that overlap or touch.
// The input is not modified. Merge(Merge(x)) equals Merge(x).
func Merge(intervals []TimeInterval) []TimeInterval {
	if len(intervals) == 0 {
		return []TimeInterval{}
	}
	sorted := make([]TimeInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].start.Before(sorted[j].start)
	})

	merged := make([]TimeInterval, 0, len(sorted))
	acc := sorted[0]
	for _, iv := range sorted[1:] {
		if !iv.start.After(acc.end) {
			if iv.end.After(acc.end) {
				acc.end = iv.end
			}
			continue
		}
		merged = append(merged, acc)
		acc = iv
	}
	return append(merged, acc)
}

func intersectPairwise(free FreeTimeMap) []TimeInterval {
	ids := sortedParticipantIDs(free)
	common := Merge(free[ids[0]])
	for _, id := range ids[1:] {
		next := make([]TimeInterval, 0, len(common))
		for _, a := range common {
			for _, b := range free[id] {
				if c, ok := a.Intersect(b); ok {
					next = append(next, c)
				}
			}
		}
		common = Merge(next)
		if len(common) == 0 {
			break
		}
	}
	return common
}

type boundary struct {
	at    time.Time
	delta int
}

func intersectSweep(free FreeTimeMap) []TimeInterval {
	boundaries := make([]boundary, 0)
	for _, intervals := range free {
		// Merging first keeps one participant from being counted twice.
		for _, iv := range Merge(intervals) {
			boundaries = append(boundaries, boundary{at: iv.start, delta: 1}, boundary{at: iv.end, delta: -1})
		}
	}
	sort.Slice(boundaries, func(i, j int) bool {
		return boundaries[i].at.Before(boundaries[j].at)
	})

	total := len(free)
	common := make([]TimeInterval, 0)
	count := 0
	open := false
	var openedAt time.Time
	for i := 0; i < len(boundaries); {
		at := boundaries[i].at
		for i < len(boundaries) && boundaries[i].at.Equal(at) {
			count += boundaries[i].delta
			i++
		}
		switch {
		case count == total && !open:
			open = true
			openedAt = at
		case count != total && open:
			common = append(common, TimeInterval{start: openedAt, end: at})
			open = false
		}
	}
	return common
}

func sortedParticipantIDs(free FreeTimeMap) []ParticipantID {
	ids := make([]ParticipantID, 0, len(free))
	for id := range free {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
