package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	defaultCalendarID = "primary"
	pageSize          = 250
)

// TokenSourceProvider returns the OAuth2 token source of a participant.
type TokenSourceProvider interface {
	TokenSource(ctx context.Context, participantID string) (oauth2.TokenSource, error)
}

// EventSource reads participant calendars through the Google Calendar API.
type EventSource struct {
	tokens     TokenSourceProvider
	logger     *slog.Logger
	endpoint   string
	calendarID string
	timeout    time.Duration
}

var _ calendarApp.EventSource = (*EventSource)(nil)

// NewEventSource creates a Google Calendar event source.
func NewEventSource(tokens TokenSourceProvider, logger *slog.Logger) *EventSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSource{
		tokens:     tokens,
		logger:     logger,
		calendarID: defaultCalendarID,
		timeout:    15 * time.Second,
	}
}

// WithEndpoint overrides the API base URL.
func (s *EventSource) WithEndpoint(endpoint string) *EventSource {
	s.endpoint = endpoint
	return s
}

// WithCalendarID sets the calendar read for every participant.
func (s *EventSource) WithCalendarID(calendarID string) *EventSource {
	if calendarID != "" {
		s.calendarID = calendarID
	}
	return s
}

// ListEvents returns single (expanded) events overlapping [start, end) ordered by start.
func (s *EventSource) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("oauth token provider not configured")
	}
	tokenSource, err := s.tokens.TokenSource(ctx, participantID)
	if err != nil {
		return nil, err
	}
	token, err := tokenSource.Token()
	if err != nil {
		s.logger.Warn("oauth token refresh failed", "participant_id", participantID, "error", err)
		return nil, fmt.Errorf("oauth token refresh failed: %w", err)
	}
	if !token.Expiry.IsZero() && time.Until(token.Expiry) < 24*time.Hour {
		s.logger.Debug("oauth token nearing expiry", "participant_id", participantID, "expires_at", token.Expiry)
	}

	svc, err := s.service(ctx, tokenSource)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List(s.calendarID).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(pageSize)

	events := make([]domain.CalendarEvent, 0)
	err = call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			events = append(events, toCalendarEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventSource) service(ctx context.Context, tokenSource oauth2.TokenSource) (*calendar.Service, error) {
	client := &http.Client{
		Timeout: s.timeout,
		Transport: &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: oauth2.ReuseTokenSource(nil, tokenSource),
		},
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

func toCalendarEvent(item *calendar.Event) domain.CalendarEvent {
	event := domain.CalendarEvent{
		ID:            item.Id,
		Summary:       item.Summary,
		Status:        domain.NormalizeStatus(item.Status),
		AttendeeCount: len(item.Attendees),
	}
	if item.Start != nil {
		event.Start = domain.EventTime{DateTime: item.Start.DateTime, Date: item.Start.Date}
	}
	if item.End != nil {
		event.End = domain.EventTime{DateTime: item.End.DateTime, Date: item.End.Date}
	}
	if item.Creator != nil {
		event.Creator = item.Creator.Email
	}
	return event
}
