package cortex

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/emotiv-community/cortex-go/cortexerr"
	"github.com/emotiv-community/cortex-go/metrics"
)

// DefaultURL is Cortex's well-known local endpoint.
const DefaultURL = "wss://localhost:6868"

// DefaultTokenRefreshInterval is comfortably below Cortex's own token
// expiry.
const DefaultTokenRefreshInterval = 6 * time.Hour

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the immutable input the resilient wrapper is built from.
// Loading it from a file or environment is explicitly out of scope for
// this package (the core only reads EMOTIV_* overrides applied by
// FromEnv, see below); applications own their own config source and
// populate a Config value directly.
type Config struct {
	// ClientID and ClientSecret are the authorize() credentials issued
	// by the vendor developer portal.
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	// License is passed to authorize when the account requires it; may
	// be empty.
	License string
	// CortexURL overrides DefaultURL.
	CortexURL string `validate:"omitempty,url"`

	// RPCTimeout bounds every individual RPC call. Zero means
	// cortexapi.DefaultTimeout.
	RPCTimeout time.Duration `validate:"omitempty,gt=0"`

	// TokenRefreshInterval overrides DefaultTokenRefreshInterval. Zero
	// means the default.
	TokenRefreshInterval time.Duration `validate:"omitempty,gt=0"`

	Reconnect ReconnectConfig
	Health    HealthConfig

	// Metrics, if non-nil, receives pending-request, reconnect,
	// token-refresh, and stream-drop observations. Nil disables
	// metrics entirely; validator ignores this field (it has no
	// wire/JSON representation).
	Metrics *metrics.Collectors `validate:"-"`
}

// ReconnectConfig controls the reconnect supervisor.
type ReconnectConfig struct {
	// Enabled turns auto-reconnect on. When false, a ConnectionError
	// always surfaces to the caller without retry.
	Enabled bool
	// BaseDelay is the first backoff delay. Required and must be
	// positive when Enabled.
	BaseDelay time.Duration `validate:"required_if=Enabled true,omitempty,gt=0"`
	// MaxDelay caps exponential backoff growth.
	MaxDelay time.Duration `validate:"required_if=Enabled true,omitempty,gtefield=BaseDelay"`
	// MaxAttempts bounds reconnect attempts before ReconnectFailed is
	// broadcast and the last error returned to blocked callers.
	MaxAttempts int `validate:"required_if=Enabled true,omitempty,gt=0"`
}

// HealthConfig controls the health-probe supervisor.
type HealthConfig struct {
	Enabled bool
	// Interval between getCortexInfo probes.
	Interval time.Duration `validate:"required_if=Enabled true,omitempty,gt=0"`
	// MaxConsecutiveFailures before the probe emits Unhealthy and
	// triggers a reconnect.
	MaxConsecutiveFailures int `validate:"required_if=Enabled true,omitempty,gt=0"`
}

// Validate checks every constraint in Config's struct tags and returns
// a *cortexerr.ConfigError describing every violation, or nil.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return cortexerr.NewConfigError(err.Error())
	}
	return nil
}

// url returns CortexURL or DefaultURL.
func (c Config) url() string {
	if c.CortexURL != "" {
		return c.CortexURL
	}
	return DefaultURL
}

func (c Config) rpcTimeout() time.Duration {
	if c.RPCTimeout > 0 {
		return c.RPCTimeout
	}
	return 0 // let cortexapi apply its own default
}

func (c Config) tokenRefreshInterval() time.Duration {
	if c.TokenRefreshInterval > 0 {
		return c.TokenRefreshInterval
	}
	return DefaultTokenRefreshInterval
}

// FromEnv overlays EMOTIV_CLIENT_ID, EMOTIV_CLIENT_SECRET, and
// EMOTIV_CORTEX_URL onto a copy of base wherever base's corresponding
// field is empty. This is the one sanctioned environment touchpoint;
// general config loading from file/env remains the embedding
// application's responsibility.
func FromEnv(base Config) Config {
	if base.ClientID == "" {
		base.ClientID = os.Getenv("EMOTIV_CLIENT_ID")
	}
	if base.ClientSecret == "" {
		base.ClientSecret = os.Getenv("EMOTIV_CLIENT_SECRET")
	}
	if base.CortexURL == "" {
		base.CortexURL = os.Getenv("EMOTIV_CORTEX_URL")
	}
	return base
}

// SkipLiveTests reports whether EMOTIV_SKIP_LIVE_TESTS is set; live/e2e
// test suites in this module and its users should check this before
// dialing a real Cortex instance.
func SkipLiveTests() bool {
	return os.Getenv("EMOTIV_SKIP_LIVE_TESTS") != ""
}
