package caldav

import (
	"context"
	"fmt"
	"strings"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
)

// AccountCredentials uses one service account for every participant and locates each
// participant's calendar by substituting the id into a path template ("/calendars/{id}/default/").
type AccountCredentials struct {
	username     string
	password     string
	pathTemplate string
}

var _ CredentialProvider = (*AccountCredentials)(nil)

// NewAccountCredentials creates the provider. An empty template discovers the account's first calendar.
func NewAccountCredentials(username, password, pathTemplate string) *AccountCredentials {
	return &AccountCredentials{username: username, password: password, pathTemplate: pathTemplate}
}

// Credentials returns the shared account with the participant's calendar path.
func (a *AccountCredentials) Credentials(ctx context.Context, participantID string) (Credentials, error) {
	if a.username == "" {
		return Credentials{}, fmt.Errorf("%w: %s", calendarApp.ErrNoCredentials, participantID)
	}
	if strings.ContainsAny(participantID, "/?#") {
		return Credentials{}, fmt.Errorf("invalid participant id for calendar path: %q", participantID)
	}
	creds := Credentials{Username: a.username, Password: a.password}
	if a.pathTemplate != "" {
		creds.CalendarPath = strings.ReplaceAll(a.pathTemplate, "{id}", participantID)
	}
	return creds, nil
}
