package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// Credentials authenticate one participant against the CalDAV server.
// An empty CalendarPath selects the first calendar in the participant's home set.
type Credentials struct {
	Username     string
	Password     string
	CalendarPath string
}

// CredentialProvider resolves the credentials of a participant.
type CredentialProvider interface {
	Credentials(ctx context.Context, participantID string) (Credentials, error)
}

// EventSource reads participant calendars over CalDAV (Apple Calendar, Fastmail, Nextcloud, etc.).
type EventSource struct {
	baseURL     string
	credentials CredentialProvider
	logger      *slog.Logger
	timeout     time.Duration
}

var _ calendarApp.EventSource = (*EventSource)(nil)

// NewEventSource creates a CalDAV event source.
func NewEventSource(baseURL string, credentials CredentialProvider, logger *slog.Logger) *EventSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSource{
		baseURL:     baseURL,
		credentials: credentials,
		logger:      logger,
		timeout:     30 * time.Second,
	}
}

// ListEvents returns the VEVENTs overlapping [start, end).
func (s *EventSource) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	if s.credentials == nil {
		return nil, fmt.Errorf("caldav credentials not configured")
	}
	creds, err := s.credentials.Credentials(ctx, participantID)
	if err != nil {
		return nil, err
	}

	client, err := s.client(creds)
	if err != nil {
		return nil, err
	}
	calPath, err := findCalendarPath(ctx, client, creds.CalendarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	objects, err := client.QueryCalendar(ctx, calPath, eventQuery(start, end))
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	events := make([]domain.CalendarEvent, 0, len(objects))
	for i := range objects {
		event, ok := parseCalendarObject(&objects[i])
		if !ok {
			s.logger.Debug("caldav object without VEVENT", "participant_id", participantID, "path", objects[i].Path)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *EventSource) client(creds Credentials) (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: s.timeout}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, creds.Username, creds.Password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func eventQuery(start, end time.Time) *caldav.CalendarQuery {
	return &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"UID", "SUMMARY", "DTSTART", "DTEND", "DURATION", "STATUS", "ORGANIZER", "ATTENDEE"},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: start.UTC(),
					End:   end.UTC(),
				},
			},
		},
	}
}

func findCalendarPath(ctx context.Context, client *caldav.Client, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}
	return cals[0].Path, nil
}

// parseCalendarObject maps the first VEVENT of obj. Start and end are left empty when
// they cannot be read so busy-time derivation reports the event as skipped.
func parseCalendarObject(obj *caldav.CalendarObject) (domain.CalendarEvent, bool) {
	if obj == nil || obj.Data == nil {
		return domain.CalendarEvent{}, false
	}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		event := domain.CalendarEvent{
			ID:            obj.Path,
			Status:        domain.NormalizeStatus(propValue(child, ical.PropStatus)),
			Summary:       propValue(child, ical.PropSummary),
			AttendeeCount: len(child.Props[ical.PropAttendee]),
			Creator:       strings.TrimPrefix(strings.ToLower(propValue(child, ical.PropOrganizer)), "mailto:"),
		}
		if uid := propValue(child, ical.PropUID); uid != "" {
			event.ID = uid
		}

		allDay := false
		if prop := child.Props.Get(ical.PropDateTimeStart); prop != nil && prop.ValueType() == ical.ValueDate {
			allDay = true
		}

		vevent := &ical.Event{Component: child}
		if start, err := vevent.DateTimeStart(time.UTC); err == nil && !start.IsZero() {
			event.Start = toEventTime(start, allDay)
		}
		if end, err := vevent.DateTimeEnd(time.UTC); err == nil && !end.IsZero() {
			event.End = toEventTime(end, allDay)
		}
		return event, true
	}
	return domain.CalendarEvent{}, false
}

func toEventTime(t time.Time, allDay bool) domain.EventTime {
	if allDay {
		return domain.OnDate(t)
	}
	return domain.At(t)
}

func propValue(comp *ical.Component, name string) string {
	if prop := comp.Props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}
