package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderType_IsValid(t *testing.T) {
	tests := []struct {
		provider domain.ProviderType
		valid    bool
	}{
		{domain.ProviderStatic, true},
		{domain.ProviderGoogle, true},
		{domain.ProviderCalDAV, true},
		{domain.ProviderMicrosoft, true},
		{domain.ProviderType("exchange"), false},
		{domain.ProviderType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
		})
	}
}

func TestProviderType_RequiresOAuth(t *testing.T) {
	assert.True(t, domain.ProviderGoogle.RequiresOAuth())
	assert.True(t, domain.ProviderMicrosoft.RequiresOAuth())
	assert.False(t, domain.ProviderCalDAV.RequiresOAuth())
	assert.False(t, domain.ProviderStatic.RequiresOAuth())
	assert.False(t, domain.ProviderType("exchange").RequiresOAuth())
}

func TestProviderType_DisplayName(t *testing.T) {
	assert.Equal(t, "Google Calendar", domain.ProviderGoogle.DisplayName())
	assert.Equal(t, "CalDAV", domain.ProviderCalDAV.DisplayName())
	assert.Equal(t, "Static fixture", domain.ProviderStatic.DisplayName())
	assert.Equal(t, "Microsoft Outlook", domain.ProviderMicrosoft.DisplayName())
	assert.Equal(t, "other", domain.ProviderType("other").DisplayName())
}

func TestParseProviderType(t *testing.T) {
	p, err := domain.ParseProviderType("caldav")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderCalDAV, p)

	_, err = domain.ParseProviderType("outlook")
	assert.Error(t, err)
}
