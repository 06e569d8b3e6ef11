package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	groupDomain "github.com/felixgeelhaar/calcompare/internal/groups/domain"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// IndividualAvailabilityQuery asks when one user is free.
type IndividualAvailabilityQuery struct {
	UserID             uuid.UUID
	StartDate          time.Time
	EndDate            time.Time
	MinDurationMinutes int
}

// IndividualAvailabilityResult is a single user's free time.
type IndividualAvailabilityResult struct {
	UserID         uuid.UUID         `json:"user_id"`
	UserName       string            `json:"user_name"`
	AnalysisPeriod AnalysisPeriod    `json:"analysis_period"`
	EventsCount    int               `json:"events_count"`
	BusySlotsCount int               `json:"busy_slots_count"`
	SkippedEvents  int               `json:"skipped_events,omitempty"`
	FreeSlots      []TimeIntervalDTO `json:"free_slots"`
	TotalFreeHours float64           `json:"total_free_hours"`
	// Degraded is set when the calendar could not be read and the user is assumed free.
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// IndividualAvailabilityHandler handles IndividualAvailabilityQuery.
type IndividualAvailabilityHandler struct {
	deps Dependencies
}

// NewIndividualAvailabilityHandler creates a new IndividualAvailabilityHandler.
func NewIndividualAvailabilityHandler(deps Dependencies) *IndividualAvailabilityHandler {
	return &IndividualAvailabilityHandler{deps: deps.withDefaults()}
}

// Handle executes the query.
func (h *IndividualAvailabilityHandler) Handle(ctx context.Context, query IndividualAvailabilityQuery) (result *IndividualAvailabilityResult, err error) {
	ctx, span := observability.StartSpan(ctx, "availability.individual",
		attribute.String(observability.SpanAttrUserID, query.UserID.String()))
	defer func() { observability.EndSpan(span, err) }()

	return observability.TimeOperationResult(ctx, h.deps.Logger, h.deps.Metrics, "availability.individual", func() (*IndividualAvailabilityResult, error) {
		return h.handle(ctx, query)
	})
}

func (h *IndividualAvailabilityHandler) handle(ctx context.Context, query IndividualAvailabilityQuery) (*IndividualAvailabilityResult, error) {
	window, err := validatePeriod(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	minDuration, err := normalizeMinDuration(query.MinDurationMinutes)
	if err != nil {
		return nil, err
	}

	member, err := h.deps.Groups.FindMember(ctx, query.UserID)
	if err != nil {
		if errors.Is(err, groupDomain.ErrMemberNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, query.UserID)
		}
		return nil, err
	}
	h.deps.Metrics.Counter(observability.MetricQueries, 1, observability.T("kind", "individual"))

	collected, err := h.deps.collect(ctx, []groupDomain.Member{*member}, window)
	if err != nil {
		return nil, err
	}
	h.deps.reportDegraded(ctx, member.ID(), collected)

	meta := memberMetadata(*member, collected[0])
	free := h.deps.Engine.IndividualAvailability(collected[0].Data.Busy(), window, minDuration)

	return &IndividualAvailabilityResult{
		UserID:   member.ID(),
		UserName: member.Name(),
		AnalysisPeriod: AnalysisPeriod{
			Start:              window.Start,
			End:                window.End,
			MinDurationMinutes: minDuration,
		},
		EventsCount:    meta.EventsCount,
		BusySlotsCount: meta.BusySlotsCount,
		SkippedEvents:  meta.SkippedEvents,
		FreeSlots:      toIntervalDTOs(free, nil),
		TotalFreeHours: hours(sumMinutes(free)),
		Degraded:       meta.Degraded,
		Error:          meta.Error,
	}, nil
}
