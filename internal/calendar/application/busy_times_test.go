package application_test

import (
	"context"
	"testing"
	"time"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, time.June, 3, 0, 0, 0, 0, time.UTC)

func timed(id string, fromHour, toHour int) domain.CalendarEvent {
	return domain.CalendarEvent{
		ID:     id,
		Status: domain.StatusConfirmed,
		Start:  domain.At(day.Add(time.Duration(fromHour) * time.Hour)),
		End:    domain.At(day.Add(time.Duration(toHour) * time.Hour)),
	}
}

func TestBusyTimes(t *testing.T) {
	cancelled := timed("cancelled", 9, 10)
	cancelled.Status = domain.StatusCancelled
	tentative := timed("tentative", 15, 16)
	tentative.Status = domain.StatusTentative

	events := []domain.CalendarEvent{
		timed("standup", 9, 10),
		cancelled,
		{ID: "offsite", Start: domain.OnDate(day), End: domain.OnDate(day.AddDate(0, 0, 1))},
		{ID: "broken", Start: domain.EventTime{DateTime: "not a time"}, End: domain.At(day.Add(12 * time.Hour))},
		{ID: "no-end", Start: domain.At(day.Add(13 * time.Hour))},
		timed("inverted", 14, 13),
		tentative,
	}

	result := calendarApp.BusyTimes(events)

	require.Len(t, result.Busy, 2)
	assert.True(t, result.Busy[0].Start().Equal(day.Add(9*time.Hour)))
	assert.True(t, result.Busy[1].Start().Equal(day.Add(15*time.Hour)))
	assert.Equal(t, 2, result.Excluded)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "broken")
	assert.Contains(t, result.Warnings[1], "no-end")
	assert.Contains(t, result.Warnings[2], "inverted")
}

func TestBusyTimes_NaiveDateTimeIsUTC(t *testing.T) {
	events := []domain.CalendarEvent{{
		ID:     "naive",
		Status: domain.StatusConfirmed,
		Start:  domain.EventTime{DateTime: "2025-06-03T10:00:00"},
		End:    domain.EventTime{DateTime: "2025-06-03T11:00:00"},
	}}

	result := calendarApp.BusyTimes(events)

	require.Len(t, result.Busy, 1)
	assert.Zero(t, result.Skipped)
	assert.True(t, result.Busy[0].Start().Equal(day.Add(10*time.Hour)))
	assert.True(t, result.Busy[0].End().Equal(day.Add(11*time.Hour)))
}

func TestBusyTimes_Empty(t *testing.T) {
	result := calendarApp.BusyTimes(nil)

	assert.NotNil(t, result.Busy)
	assert.Empty(t, result.Busy)
	assert.Zero(t, result.Skipped)
}

func TestEventSourceFunc(t *testing.T) {
	called := ""
	source := calendarApp.EventSourceFunc(func(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
		called = participantID
		return []domain.CalendarEvent{timed("x", 9, 10)}, nil
	})

	events, err := source.ListEvents(context.Background(), "alice", day, day.AddDate(0, 0, 1))

	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "alice", called)
}
