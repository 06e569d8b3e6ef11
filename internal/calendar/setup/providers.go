// Package setup builds the configured calendar provider and the retry, breaker and
// cache layers around it.
package setup

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/calcompare/internal/calendar/application"
	"github.com/felixgeelhaar/calcompare/internal/calendar/domain"
	"github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/cache"
	"github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/caldav"
	googleCal "github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/google"
	microsoftCal "github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/microsoft"
	"github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/resilience"
	"github.com/felixgeelhaar/calcompare/internal/calendar/infrastructure/static"
	"github.com/felixgeelhaar/calcompare/pkg/observability"
)

// CalDAVConfig holds the shared CalDAV account.
type CalDAVConfig struct {
	URL          string
	Username     string
	Password     string
	PathTemplate string
}

// OAuthConfig holds the OAuth client and the directory of per-participant tokens.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	TokenDir     string
}

// ProviderConfig selects and configures the calendar provider.
type ProviderConfig struct {
	Provider   domain.ProviderType
	CalendarID string
	StaticPath string
	CalDAV     CalDAVConfig
	OAuth      OAuthConfig
	Logger     *slog.Logger
}

// NewEventSource creates the provider named by config.Provider.
func NewEventSource(config ProviderConfig) (application.EventSource, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Provider.RequiresOAuth() {
		return newOAuthSource(config, logger), nil
	}

	switch config.Provider {
	case domain.ProviderStatic:
		if config.StaticPath == "" {
			logger.Debug("no calendar fixture configured, every participant will be degraded")
			return static.NewSource(nil), nil
		}
		source, err := static.LoadFile(config.StaticPath)
		if err != nil {
			return nil, err
		}
		return source, nil

	case domain.ProviderCalDAV:
		baseURL := config.CalDAV.URL
		if baseURL == "" {
			return nil, fmt.Errorf("caldav provider requires a server URL")
		}
		creds := caldav.NewAccountCredentials(config.CalDAV.Username, config.CalDAV.Password, config.CalDAV.PathTemplate)
		logger.Debug("registered CalDAV provider", "url", baseURL)
		return caldav.NewEventSource(baseURL, creds, logger), nil

	default:
		return nil, fmt.Errorf("unknown calendar provider: %s", config.Provider)
	}
}

// newOAuthSource reads each participant's calendar with their own token. Both
// providers keep tokens in the same per-participant file layout.
func newOAuthSource(config ProviderConfig, logger *slog.Logger) application.EventSource {
	o := config.OAuth
	if config.Provider == domain.ProviderMicrosoft {
		tokens := googleCal.NewFileTokenProvider(o.TokenDir, microsoftCal.NewOAuthConfig(o.ClientID, o.ClientSecret, o.TokenURL))
		logger.Debug("registered calendar provider", "provider", config.Provider.DisplayName())
		return microsoftCal.NewEventSource(tokens, logger).WithCalendarID(config.CalendarID)
	}
	tokens := googleCal.NewFileTokenProvider(o.TokenDir, googleCal.NewOAuthConfig(o.ClientID, o.ClientSecret, o.TokenURL))
	logger.Debug("registered calendar provider", "provider", config.Provider.DisplayName())
	return googleCal.NewEventSource(tokens, logger).WithCalendarID(config.CalendarID)
}

// ResilienceConfig configures the layers Wrap puts around a provider.
type ResilienceConfig struct {
	Retries          int
	FailureThreshold int
	BreakerTimeout   time.Duration
	CacheTTL         time.Duration
	CacheSize        int
	// Redis shares cached events between processes. Nil keeps them in process.
	Redis *redis.Client
}

// Chain is a provider wrapped in retries, per-participant breakers and the event cache.
type Chain struct {
	Source   application.EventSource
	Breakers *resilience.BreakerSource
}

// Wrap layers retries, breakers and the cache around source. The cache sits
// outermost so hits never count against a breaker. A zero CacheTTL disables it.
func Wrap(source application.EventSource, config ResilienceConfig, metrics observability.Metrics, logger *slog.Logger) Chain {
	retryConfig := resilience.DefaultRetryConfig()
	if config.Retries > 0 {
		retryConfig.Attempts = uint(config.Retries)
	}
	retried := resilience.NewRetrySource(source, retryConfig, logger)

	breakerConfig := resilience.DefaultBreakerConfig()
	if config.FailureThreshold > 0 {
		breakerConfig.FailureThreshold = uint32(config.FailureThreshold)
	}
	if config.BreakerTimeout > 0 {
		breakerConfig.Timeout = config.BreakerTimeout
	}
	breakers := resilience.NewBreakerSource(retried, breakerConfig, metrics, logger)

	chain := Chain{Source: breakers, Breakers: breakers}
	if config.CacheTTL <= 0 {
		return chain
	}

	var store cache.Store
	if config.Redis != nil {
		store = cache.NewRedisStore(config.Redis, config.CacheTTL)
	} else {
		store = cache.NewOtterStore(config.CacheSize, config.CacheTTL)
	}
	chain.Source = cache.NewCachedSource(breakers, store, metrics, logger)
	return chain
}
