package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// MemberBreakdownQuery asks for each member's individual free time.
type MemberBreakdownQuery struct {
	GroupID            uuid.UUID
	StartDate          time.Time
	EndDate            time.Time
	MinDurationMinutes int
}

// MemberAvailability is one member's free time within a breakdown.
type MemberAvailability struct {
	MemberMetadata
	FreeSlots      []TimeIntervalDTO `json:"free_slots"`
	TotalFreeHours float64           `json:"total_free_hours"`
}

// MemberBreakdownResult is the per-member availability of a group.
type MemberBreakdownResult struct {
	GroupID        uuid.UUID            `json:"group_id"`
	GroupName      string               `json:"group_name"`
	AnalysisPeriod AnalysisPeriod       `json:"analysis_period"`
	Members        []MemberAvailability `json:"members"`
	Message        string               `json:"message,omitempty"`
}

// MemberBreakdownHandler handles MemberBreakdownQuery. Calendars are read once per member.
type MemberBreakdownHandler struct {
	deps Dependencies
}

// NewMemberBreakdownHandler creates a new MemberBreakdownHandler.
func NewMemberBreakdownHandler(deps Dependencies) *MemberBreakdownHandler {
	return &MemberBreakdownHandler{deps: deps.withDefaults()}
}

// Handle executes the query.
func (h *MemberBreakdownHandler) Handle(ctx context.Context, query MemberBreakdownQuery) (result *MemberBreakdownResult, err error) {
	ctx, span := observability.StartSpan(ctx, "availability.members",
		attribute.String(observability.SpanAttrGroupID, query.GroupID.String()))
	defer func() { observability.EndSpan(span, err) }()

	return observability.TimeOperationResult(ctx, h.deps.Logger, h.deps.Metrics, "availability.members", func() (*MemberBreakdownResult, error) {
		return h.handle(ctx, query)
	})
}

func (h *MemberBreakdownHandler) handle(ctx context.Context, query MemberBreakdownQuery) (*MemberBreakdownResult, error) {
	window, err := validatePeriod(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	minDuration, err := normalizeMinDuration(query.MinDurationMinutes)
	if err != nil {
		return nil, err
	}

	group, members, err := h.deps.loadGroup(ctx, query.GroupID, nil)
	if err != nil {
		return nil, err
	}
	h.deps.Metrics.Counter(observability.MetricQueries, 1, observability.T("kind", "members"))

	result := &MemberBreakdownResult{
		GroupID:   group.ID(),
		GroupName: group.Name(),
		AnalysisPeriod: AnalysisPeriod{
			Start:              window.Start,
			End:                window.End,
			MinDurationMinutes: minDuration,
		},
		Members: make([]MemberAvailability, 0, len(members)),
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

	for i, m := range members {
		free := h.deps.Engine.IndividualAvailability(collected[i].Data.Busy(), window, minDuration)
		result.Members = append(result.Members, MemberAvailability{
			MemberMetadata: memberMetadata(m, collected[i]),
			FreeSlots:      toIntervalDTOs(free, nil),
			TotalFreeHours: hours(sumMinutes(free)),
		})
	}
	return result, nil
}
