package domain

import (
	"fmt"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	WorkingHours WorkingHours
	Strategy     IntersectStrategy
}

// DefaultEngineConfig uses 09:00-17:00 and the sweep intersection.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WorkingHours: DefaultWorkingHours(),
		Strategy:     StrategySweep,
	}
}

// Engine computes individual and group availability and meeting suggestions.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	hours       WorkingHours
	extractor   *FreeTimeExtractor
	intersector *MultiPartyIntersector
	ranker      *SuggestionRanker
}

// NewEngine validates cfg and builds an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.WorkingHours.Validate(); err != nil {
		return nil, err
	}
	strategy, err := ParseIntersectStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return &Engine{
		hours:       cfg.WorkingHours,
		extractor:   NewFreeTimeExtractor(cfg.WorkingHours),
		intersector: NewMultiPartyIntersector(strategy),
		ranker:      NewSuggestionRanker(),
	}, nil
}

// WorkingHours returns the configured working hours.
func (e *Engine) WorkingHours() WorkingHours { return e.hours }

// Strategy returns the configured intersection strategy.
func (e *Engine) Strategy() IntersectStrategy { return e.intersector.Strategy() }

// GroupResult is the common availability of a set of participants.
type GroupResult struct {
	Common       []TimeInterval
	Participants []ParticipantSummary
}

// ParticipantIDs returns the participants in input order.
func (r GroupResult) ParticipantIDs() []ParticipantID {
	ids := make([]ParticipantID, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// TotalMinutes sums the common intervals.
func (r GroupResult) TotalMinutes() int {
	total := 0
	for _, iv := range r.Common {
		total += iv.DurationMinutes()
	}
	return total
}

// DegradedCount returns how many participants were assumed free.
func (r GroupResult) DegradedCount() int {
	n := 0
	for _, p := range r.Participants {
		if p.Degraded {
			n++
		}
	}
	return n
}

// IndividualAvailability returns the free intervals of one participant.
func (e *Engine) IndividualAvailability(busy []TimeInterval, window Window, minDurationMinutes int) []TimeInterval {
	return e.extractor.Extract(busy, window, minDurationMinutes)
}

// GroupAvailability intersects the free time of every participant.
// Degraded participants count as free for the whole window and are flagged in the summary.
// A participant listed twice contributes once.
func (e *Engine) GroupAvailability(participants []ParticipantData, window Window, minDurationMinutes int) GroupResult {
	free := make(FreeTimeMap, len(participants))
	summaries := make([]ParticipantSummary, 0, len(participants))

	for _, p := range participants {
		if _, seen := free[p.id]; seen {
			continue
		}
		slots := e.extractor.Extract(p.busy, window, minDurationMinutes)
		free[p.id] = slots

		summary := ParticipantSummary{
			ID:             p.id,
			Degraded:       p.IsDegraded(),
			Reason:         p.reason,
			EventCount:     p.eventCount,
			BusySlotsCount: len(p.busy),
			FreeSlotsCount: len(slots),
		}
		for _, s := range slots {
			summary.FreeMinutes += s.DurationMinutes()
		}
		summaries = append(summaries, summary)
	}

	return GroupResult{
		Common:       e.intersector.Intersect(free, minDurationMinutes),
		Participants: summaries,
	}
}

// SuggestionResult pairs ranked suggestions with the group computation they came from.
type SuggestionResult struct {
	Group       GroupResult
	Suggestions []MeetingSuggestion
}

// SuggestMeetingTimes finds common availability at least meetingDurationMinutes long and ranks it.
func (e *Engine) SuggestMeetingTimes(participants []ParticipantData, window Window, meetingDurationMinutes, maxSuggestions int) SuggestionResult {
	group := e.GroupAvailability(participants, window, meetingDurationMinutes)
	return SuggestionResult{
		Group:       group,
		Suggestions: e.ranker.Rank(group.Common, meetingDurationMinutes, maxSuggestions, group.ParticipantIDs()),
	}
}
