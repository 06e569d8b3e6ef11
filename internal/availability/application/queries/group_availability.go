package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// GroupAvailabilityQuery asks when every selected member of a group is free.
type GroupAvailabilityQuery struct {
	GroupID            uuid.UUID
	StartDate          time.Time
	EndDate            time.Time
	MinDurationMinutes int
	// MemberIDs narrows the analysis to these members. Empty means the whole group.
	MemberIDs []uuid.UUID
}

// GroupAvailabilityResult is the common availability of a group.
type GroupAvailabilityResult struct {
	GroupID             uuid.UUID         `json:"group_id"`
	GroupName           string            `json:"group_name"`
	AnalysisPeriod      AnalysisPeriod    `json:"analysis_period"`
	CommonAvailability  []TimeIntervalDTO `json:"common_availability"`
	MembersAnalyzed     []MemberMetadata  `json:"members_analyzed"`
	TotalSlotsFound     int               `json:"total_slots_found"`
	TotalAvailableHours float64           `json:"total_available_hours"`
	Message             string            `json:"message,omitempty"`
}

// GroupAvailabilityHandler handles GroupAvailabilityQuery.
type GroupAvailabilityHandler struct {
	deps Dependencies
}

// NewGroupAvailabilityHandler creates a new GroupAvailabilityHandler.
func NewGroupAvailabilityHandler(deps Dependencies) *GroupAvailabilityHandler {
	return &GroupAvailabilityHandler{deps: deps.withDefaults()}
}

// Handle executes the query.
func (h *GroupAvailabilityHandler) Handle(ctx context.Context, query GroupAvailabilityQuery) (result *GroupAvailabilityResult, err error) {
	ctx, span := observability.StartSpan(ctx, "availability.group",
		attribute.String(observability.SpanAttrGroupID, query.GroupID.String()))
	defer func() { observability.EndSpan(span, err) }()

	return observability.TimeOperationResult(ctx, h.deps.Logger, h.deps.Metrics, "availability.group", func() (*GroupAvailabilityResult, error) {
		return h.handle(ctx, query)
	})
}

func (h *GroupAvailabilityHandler) handle(ctx context.Context, query GroupAvailabilityQuery) (*GroupAvailabilityResult, error) {
	window, err := validatePeriod(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	minDuration, err := normalizeMinDuration(query.MinDurationMinutes)
	if err != nil {
		return nil, err
	}

	group, members, err := h.deps.loadGroup(ctx, query.GroupID, query.MemberIDs)
	if err != nil {
		return nil, err
	}

	result := &GroupAvailabilityResult{
		GroupID:   group.ID(),
		GroupName: group.Name(),
		AnalysisPeriod: AnalysisPeriod{
			Start:              window.Start,
			End:                window.End,
			MinDurationMinutes: minDuration,
		},
		CommonAvailability: []TimeIntervalDTO{},
		MembersAnalyzed:    []MemberMetadata{},
	}
	h.deps.Metrics.Counter(observability.MetricQueries, 1, observability.T("kind", "group"))

	if len(members) == 0 {
		result.Message = "No members to analyze"
		return result, nil
	}

	collected, err := h.deps.collect(ctx, members, window)
	if err != nil {
		return nil, err
	}
	h.deps.reportDegraded(ctx, group.ID(), collected)

	computed := h.deps.Engine.GroupAvailability(participantData(collected), window, minDuration)

	for i, m := range members {
		result.MembersAnalyzed = append(result.MembersAnalyzed, memberMetadata(m, collected[i]))
	}
	result.CommonAvailability = toIntervalDTOs(computed.Common, memberIDStrings(members, computed.ParticipantIDs()))
	result.TotalSlotsFound = len(computed.Common)
	result.TotalAvailableHours = hours(computed.TotalMinutes())

	h.deps.Metrics.Histogram(observability.MetricParticipants, float64(len(members)))
	h.deps.Metrics.Histogram(observability.MetricCommonSlots, float64(result.TotalSlotsFound))
	h.deps.Logger.InfoContext(ctx, "group availability computed",
		observability.GroupIDKey, group.ID().String(),
		"members", len(members),
		"degraded", computed.DegradedCount(),
		"slots", result.TotalSlotsFound,
	)
	return result, nil
}
