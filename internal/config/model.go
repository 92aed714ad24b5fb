// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from its overlay layers:
//
//   • struct defaults from Defaults()           – lowest precedence,
//   • optional `.env` and `conf/site.yaml`,
//   • legacy `VITE_` names for the webhook and payment settings,
//   • `LEGACY_`-prefixed environment overrides  – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through Vault
// before unmarshalling, so the model never stores Vault URIs.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.  TrustProxy makes the client IP come from
// X-Forwarded-For, which is only safe behind a proxy that overwrites it.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
	TrustProxy bool   `koanf:"trust_proxy"`
}

//
// Webhooks section
//

// Webhooks are the automation endpoints accepted forms are posted to.  Both
// fall back to the hosted workflow URLs when unset.
type Webhooks struct {
	Lead    string `koanf:"lead"    validate:"required,url"`
	Booking string `koanf:"booking" validate:"required,url"`
}

//
// Payment section
//

// Payment holds the public key handed to the payment widget.  Empty means
// payments are not configured and the deposit endpoint answers 503.
type Payment struct {
	PublishableKey string `koanf:"publishable_key"`
}

//
// Rate-limit section
//

// RateLimit selects and sizes the submission limiter store.
type RateLimit struct {
	Backend    string        `koanf:"backend"     validate:"oneof=memory file mysql"`
	Max        int           `koanf:"max"         validate:"min=1"`
	Window     time.Duration `koanf:"window"      validate:"gt=0"`
	MemoryKeys int           `koanf:"memory_keys" validate:"min=0"`
	FilePath   string        `koanf:"file_path"   validate:"required_if=Backend file"`
	DSN        string        `koanf:"dsn"         validate:"required_if=Backend mysql"`
}

//
// Forms section
//

// Forms tunes the submission controller and form tokens.
type Forms struct {
	SubmitTimeout time.Duration `koanf:"submit_timeout" validate:"gt=0"`
	RequireToken  bool          `koanf:"require_token"`
	TokenSecret   string        `koanf:"token_secret"`
}

//
// Booking section
//

// Booking holds the business time zone used for slot date-times and for
// deciding what "today" is.
type Booking struct {
	Timezone string `koanf:"timezone" validate:"required,timezone"`
}

// Location loads the configured zone.  Validation has already proven the
// name loads, so the fallback to UTC is not expected in practice.
func (b Booking) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

//
// Geo section
//

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime.  Root is LEGACY_ROOT or the discovered
// project directory.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Webhooks  Webhooks  `koanf:"webhooks"`
	Payment   Payment   `koanf:"payment"`
	RateLimit RateLimit `koanf:"rate_limit"`
	Forms     Forms     `koanf:"forms"`
	Booking   Booking   `koanf:"booking"`
	Geo       Geo       `koanf:"geo"`
	Paths     Paths     `koanf:"-"`
}

// Fallback webhook URLs used when nothing else is configured.
const (
	FallbackLeadWebhook    = "https://mattarntsen.app.n8n.cloud/webhook-test/free-questions"
	FallbackBookingWebhook = "https://mattarntsen.app.n8n.cloud/webhook-test/booking-request"
)

// Defaults returns a Config with every tunable set.
func Defaults() Config {
	return Config{
		HTTP: HTTP{ListenAddr: ":8080"},
		Webhooks: Webhooks{
			Lead:    FallbackLeadWebhook,
			Booking: FallbackBookingWebhook,
		},
		RateLimit: RateLimit{
			Backend:    "memory",
			Max:        3,
			Window:     time.Minute,
			MemoryKeys: 10000,
			FilePath:   "data/ratelimit.json",
		},
		Forms: Forms{
			SubmitTimeout: 15 * time.Second,
		},
		Booking: Booking{Timezone: "UTC"},
	}
}
