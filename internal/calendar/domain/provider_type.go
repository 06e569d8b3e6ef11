package domain

import "fmt"

// ProviderType selects where participant calendars are read from.
type ProviderType string

const (
	ProviderStatic    ProviderType = "static"
	ProviderGoogle    ProviderType = "google"
	ProviderCalDAV    ProviderType = "caldav"
	ProviderMicrosoft ProviderType = "microsoft"
)

type providerInfo struct {
	name  string
	oauth bool
}

var providers = map[ProviderType]providerInfo{
	ProviderStatic:    {name: "Static fixture"},
	ProviderGoogle:    {name: "Google Calendar", oauth: true},
	ProviderCalDAV:    {name: "CalDAV"},
	ProviderMicrosoft: {name: "Microsoft Outlook", oauth: true},
}

func (p ProviderType) String() string {
	return string(p)
}

func (p ProviderType) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresOAuth reports whether each participant signs in with their own
// OAuth2 token. CalDAV and the fixture use one shared account.
func (p ProviderType) RequiresOAuth() bool {
	return providers[p].oauth
}

// DisplayName is the product name, or the raw value for unknown providers.
func (p ProviderType) DisplayName() string {
	if info, ok := providers[p]; ok {
		return info.name
	}
	return string(p)
}

// ParseProviderType validates a configured provider name.
func ParseProviderType(s string) (ProviderType, error) {
	p := ProviderType(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown calendar provider %q", s)
	}
	return p, nil
}
