// Package microsoft reads Outlook calendars through Microsoft Graph.
package microsoft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// Microsoft OAuth2 endpoints
const (
	MicrosoftAuthURL  = "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"
	MicrosoftTokenURL = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
)

// CalendarReadScope is the Graph scope the event source needs.
const CalendarReadScope = "https://graph.microsoft.com/Calendars.Read"

// graphLayout is how Graph renders dateTime values once a UTC timezone is preferred.
const graphLayout = "2006-01-02T15:04:05.9999999"

// TokenSourceProvider returns the OAuth2 token source of a participant.
type TokenSourceProvider interface {
	TokenSource(ctx context.Context, participantID string) (oauth2.TokenSource, error)
}

// EventSource reads participant calendars via the Graph calendarView endpoint,
// which expands recurring events into occurrences.
type EventSource struct {
	tokens     TokenSourceProvider
	logger     *slog.Logger
	baseURL    string
	calendarID string
	timeout    time.Duration
}

var _ calendarApp.EventSource = (*EventSource)(nil)

// NewEventSource creates a Microsoft Graph event source.
func NewEventSource(tokens TokenSourceProvider, logger *slog.Logger) *EventSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSource{
		tokens:     tokens,
		logger:     logger,
		baseURL:    defaultBaseURL,
		calendarID: "primary",
		timeout:    15 * time.Second,
	}
}

// WithBaseURL overrides the Graph base URL.
func (s *EventSource) WithBaseURL(baseURL string) *EventSource {
	if baseURL != "" {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
	return s
}

// WithCalendarID sets the calendar read for every participant.
func (s *EventSource) WithCalendarID(calendarID string) *EventSource {
	if calendarID != "" {
		s.calendarID = calendarID
	}
	return s
}

// ListEvents returns the events overlapping [start, end). Events shown as free do not block time
// and are left out.
func (s *EventSource) ListEvents(ctx context.Context, participantID string, start, end time.Time) ([]domain.CalendarEvent, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("oauth token provider not configured")
	}
	client, err := s.httpClient(ctx, participantID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("startDateTime", start.UTC().Format(time.RFC3339))
	params.Set("endDateTime", end.UTC().Format(time.RFC3339))
	params.Set("$select", "id,subject,start,end,isAllDay,isCancelled,showAs,organizer,attendees")
	params.Set("$top", "100")
	next := s.calendarViewURL() + "?" + params.Encode()

	events := make([]domain.CalendarEvent, 0)
	for next != "" {
		page, err := s.fetchPage(ctx, client, next)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Value {
			if strings.EqualFold(item.ShowAs, "free") {
				continue
			}
			events = append(events, toCalendarEvent(item))
		}
		next = page.NextLink
	}
	return events, nil
}

func (s *EventSource) fetchPage(ctx context.Context, client *http.Client, pageURL string) (*msEventPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var page msEventPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return &page, nil
}

func (s *EventSource) httpClient(ctx context.Context, participantID string) (*http.Client, error) {
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

	return &http.Client{
		Timeout: s.timeout,
		Transport: &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: oauth2.ReuseTokenSource(token, tokenSource),
		},
	}, nil
}

func (s *EventSource) calendarViewURL() string {
	if s.calendarID == "primary" || s.calendarID == "" {
		return fmt.Sprintf("%s/me/calendarView", s.baseURL)
	}
	return fmt.Sprintf("%s/me/calendars/%s/calendarView", s.baseURL, url.PathEscape(s.calendarID))
}

// Microsoft Graph API event types

type msEventPage struct {
	Value    []msEvent `json:"value"`
	NextLink string    `json:"@odata.nextLink"`
}

type msEvent struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	Start       msDateTime   `json:"start"`
	End         msDateTime   `json:"end"`
	IsAllDay    bool         `json:"isAllDay"`
	IsCancelled bool         `json:"isCancelled"`
	ShowAs      string       `json:"showAs"`
	Organizer   msOrganizer  `json:"organizer"`
	Attendees   []msAttendee `json:"attendees"`
}

type msDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type msOrganizer struct {
	EmailAddress msEmailAddress `json:"emailAddress"`
}

type msAttendee struct {
	EmailAddress msEmailAddress `json:"emailAddress"`
}

type msEmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

func toCalendarEvent(item msEvent) domain.CalendarEvent {
	event := domain.CalendarEvent{
		ID:            item.ID,
		Summary:       item.Subject,
		Status:        mapStatus(item),
		AttendeeCount: len(item.Attendees),
		Creator:       strings.ToLower(item.Organizer.EmailAddress.Address),
		Start:         toEventTime(item.Start, item.IsAllDay),
		End:           toEventTime(item.End, item.IsAllDay),
	}
	return event
}

// toEventTime keeps unparseable values verbatim so busy-time derivation reports them.
func toEventTime(dt msDateTime, allDay bool) domain.EventTime {
	if dt.DateTime == "" {
		return domain.EventTime{}
	}
	parsed, err := time.Parse(graphLayout, dt.DateTime)
	if err != nil {
		return domain.EventTime{DateTime: dt.DateTime}
	}
	if allDay {
		return domain.OnDate(parsed)
	}
	return domain.At(parsed)
}

func mapStatus(item msEvent) domain.EventStatus {
	if item.IsCancelled {
		return domain.StatusCancelled
	}
	if strings.EqualFold(item.ShowAs, "tentative") {
		return domain.StatusTentative
	}
	return domain.StatusConfirmed
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("microsoft calendar API failed: status=%d body=%s", resp.StatusCode, string(body))
}
