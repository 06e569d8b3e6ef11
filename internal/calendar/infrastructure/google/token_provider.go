package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	calendarApp "github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/security"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

// CalendarReadonlyScope is the only scope the event source needs.
const CalendarReadonlyScope = "https://www.googleapis.com/auth/calendar.readonly"

// NewOAuthConfig builds the client config used to refresh stored tokens.
// An empty tokenURL selects Google's endpoint.
func NewOAuthConfig(clientID, clientSecret, tokenURL string) *oauth2.Config {
	endpoint := googleOAuth.Endpoint
	if tokenURL != "" {
		endpoint.TokenURL = tokenURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{CalendarReadonlyScope},
	}
}

// FileTokenProvider loads participant tokens from <dir>/<participant-id>.json.
type FileTokenProvider struct {
	dir    string
	config *oauth2.Config
}

var _ TokenSourceProvider = (*FileTokenProvider)(nil)

// NewFileTokenProvider creates a provider. A nil config yields static, non-refreshing tokens.
func NewFileTokenProvider(dir string, config *oauth2.Config) *FileTokenProvider {
	return &FileTokenProvider{dir: dir, config: config}
}

// TokenSource returns a refreshing token source for the participant.
func (p *FileTokenProvider) TokenSource(ctx context.Context, participantID string) (oauth2.TokenSource, error) {
	token, err := p.load(participantID)
	if err != nil {
		return nil, err
	}
	if p.config == nil {
		return oauth2.StaticTokenSource(token), nil
	}
	return p.config.TokenSource(ctx, token), nil
}

// HasToken reports whether a token file exists for the participant.
func (p *FileTokenProvider) HasToken(participantID string) bool {
	_, err := p.load(participantID)
	return err == nil
}

func (p *FileTokenProvider) load(participantID string) (*oauth2.Token, error) {
	path := filepath.Join(p.dir, participantID+".json")
	data, err := security.ReadFileInDir(path, p.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", calendarApp.ErrNoCredentials, participantID)
		}
		return nil, fmt.Errorf("failed to read token for %s: %w", participantID, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token for %s: %w", participantID, err)
	}
	return &token, nil
}
