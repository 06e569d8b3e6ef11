package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// SuggestMeetingsQuery asks for the best times to meet as a group.
type SuggestMeetingsQuery struct {
	GroupID                uuid.UUID
	StartDate              time.Time
	EndDate                time.Time
	MeetingDurationMinutes int
	MaxSuggestions         int
}

// SuggestMeetingsResult lists ranked meeting proposals.
type SuggestMeetingsResult struct {
	GroupID          uuid.UUID              `json:"group_id"`
	GroupName        string                 `json:"group_name"`
	SearchCriteria   SearchCriteria         `json:"search_criteria"`
	Suggestions      []MeetingSuggestionDTO `json:"suggestions"`
	TotalSuggestions int                    `json:"total_suggestions"`
	MembersAnalyzed  []MemberMetadata       `json:"members_analyzed"`
	Message          string                 `json:"message,omitempty"`
}

// SuggestMeetingsHandler handles SuggestMeetingsQuery.
type SuggestMeetingsHandler struct {
	deps Dependencies
}

// NewSuggestMeetingsHandler creates a new SuggestMeetingsHandler.
func NewSuggestMeetingsHandler(deps Dependencies) *SuggestMeetingsHandler {
	return &SuggestMeetingsHandler{deps: deps.withDefaults()}
}

// Handle executes the query.
func (h *SuggestMeetingsHandler) Handle(ctx context.Context, query SuggestMeetingsQuery) (result *SuggestMeetingsResult, err error) {
	ctx, span := observability.StartSpan(ctx, "availability.suggest",
		attribute.String(observability.SpanAttrGroupID, query.GroupID.String()))
	defer func() { observability.EndSpan(span, err) }()

	return observability.TimeOperationResult(ctx, h.deps.Logger, h.deps.Metrics, "availability.suggest", func() (*SuggestMeetingsResult, error) {
		return h.handle(ctx, query)
	})
}

func (h *SuggestMeetingsHandler) handle(ctx context.Context, query SuggestMeetingsQuery) (*SuggestMeetingsResult, error) {
	window, err := validatePeriod(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	if err := validateMeetingDuration(query.MeetingDurationMinutes); err != nil {
		return nil, err
	}
	maxSuggestions, err := normalizeMaxSuggestions(query.MaxSuggestions)
	if err != nil {
		return nil, err
	}

	group, members, err := h.deps.loadGroup(ctx, query.GroupID, nil)
	if err != nil {
		return nil, err
	}
	h.deps.Metrics.Counter(observability.MetricQueries, 1, observability.T("kind", "suggest"))

	result := &SuggestMeetingsResult{
		GroupID:   group.ID(),
		GroupName: group.Name(),
		SearchCriteria: SearchCriteria{
			StartDate:              window.Start,
			EndDate:                window.End,
			MeetingDurationMinutes: query.MeetingDurationMinutes,
			MaxSuggestions:         maxSuggestions,
		},
		Suggestions:     []MeetingSuggestionDTO{},
		MembersAnalyzed: []MemberMetadata{},
	}
	if len(members) == 0 {
		result.Message = "No members to analyze"
		return result, nil
	}

	collected, err := h.deps.collect(ctx, members, window)
	if err != nil {
		return nil, err
	}
	h.deps.reportDegraded(ctx, group.ID(), collected)

	computed := h.deps.Engine.SuggestMeetingTimes(participantData(collected), window, query.MeetingDurationMinutes, maxSuggestions)

	for i, m := range members {
		result.MembersAnalyzed = append(result.MembersAnalyzed, memberMetadata(m, collected[i]))
	}
	result.Suggestions = toSuggestionDTOs(computed.Suggestions, members)
	result.TotalSuggestions = len(result.Suggestions)
	if result.TotalSuggestions == 0 {
		result.Message = "No common availability found for the specified duration"
	}

	h.deps.Metrics.Histogram(observability.MetricSuggestions, float64(result.TotalSuggestions))
	h.deps.Logger.InfoContext(ctx, "meeting suggestions computed",
		observability.GroupIDKey, group.ID().String(),
		"members", len(members),
		"suggestions", result.TotalSuggestions,
	)
	return result, nil
}
