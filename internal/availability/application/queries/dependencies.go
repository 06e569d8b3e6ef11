package queries

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/calcompare/internal/availability/domain"
	groupDomain "github.com/felixgeelhaar/calcompare/internal/groups/domain"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/google/uuid"
)

// Dependencies are shared by every availability handler.
type Dependencies struct {
	Groups    groupDomain.Repository
	Collector *ParticipantCollector
	Engine    *domain.Engine
	Publisher eventbus.Publisher
	Metrics   observability.Metrics
	Logger    *slog.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NoopMetrics{}
	}
	if d.Publisher == nil {
		d.Publisher = eventbus.NewNoopPublisher(d.Logger)
	}
	return d
}

// loadGroup fetches the group and narrows it to memberIDs when any are given.
func (d Dependencies) loadGroup(ctx context.Context, groupID uuid.UUID, memberIDs []uuid.UUID) (*groupDomain.Group, []groupDomain.Member, error) {
	group, err := d.Groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if len(memberIDs) == 0 {
		return group, group.Members(), nil
	}
	members, err := group.Subset(memberIDs)
	if err != nil {
		if errors.Is(err, groupDomain.ErrMemberNotInGroup) {
			return nil, nil, &ValidationError{Field: "member_ids", Message: err.Error(), Err: err}
		}
		return nil, nil, err
	}
	return group, members, nil
}

// collect reads the calendars of members over the whole window.
func (d Dependencies) collect(ctx context.Context, members []groupDomain.Member, window domain.Window) ([]Collected, error) {
	ids := make([]domain.ParticipantID, len(members))
	for i, m := range members {
		ids[i] = domain.ParticipantID(m.ParticipantID())
	}
	start, end := window.Span()
	collected := d.Collector.Collect(ctx, ids, start, end)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return collected, nil
}

// reportDegraded counts and publishes every participant that was assumed free.
// Publishing is best effort.
func (d Dependencies) reportDegraded(ctx context.Context, aggregateID uuid.UUID, collected []Collected) int {
	degraded := 0
	for _, c := range collected {
		if !c.Data.IsDegraded() {
			continue
		}
		degraded++
		event := domain.NewParticipantDegraded(aggregateID, c.Data.ID(), c.Data.Reason())
		if err := eventbus.PublishEvent(ctx, d.Publisher, event); err != nil {
			d.Metrics.Counter(observability.MetricEventsPublishFailed, 1,
				observability.T("routing_key", domain.RoutingKeyParticipantDegraded))
			d.Logger.WarnContext(ctx, "failed to publish degraded participant",
				observability.ParticipantIDKey, string(c.Data.ID()),
				observability.ErrorKey, err,
			)
			continue
		}
		d.Metrics.Counter(observability.MetricEventsPublished, 1,
			observability.T("routing_key", domain.RoutingKeyParticipantDegraded))
	}
	if degraded > 0 {
		d.Metrics.Counter(observability.MetricParticipantsDegraded, int64(degraded))
	}
	return degraded
}

func participantData(collected []Collected) []domain.ParticipantData {
	data := make([]domain.ParticipantData, len(collected))
	for i, c := range collected {
		data[i] = c.Data
	}
	return data
}
