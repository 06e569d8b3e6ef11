package microsoft

import "golang.org/x/oauth2"

// NewOAuthConfig builds the client config used to refresh stored tokens.
// An empty tokenURL selects the common Microsoft identity endpoint.
func NewOAuthConfig(clientID, clientSecret, tokenURL string) *oauth2.Config {
	if tokenURL == "" {
		tokenURL = MicrosoftTokenURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  MicrosoftAuthURL,
			TokenURL: tokenURL,
		},
		Scopes: []string{CalendarReadScope, "offline_access"},
	}
}
