package tokengate

import (
	"errors"
	"time"
)

// Config groups the engine's configuration. Zero values are filled from
// [DefaultConfig] by the builder; the signing secret has no default and must
// always be supplied by the host.
type Config struct {
	Token    TokenConfig
	Store    StoreConfig
	Password PasswordConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls the token codec. Secret is the opaque HS256 signing
// key shared by both token kinds. AccessTTL is minutes-scale, RefreshTTL
// days-scale; the refresh TTL is also the store record lifetime.
type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Leeway     time.Duration
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig controls the refresh token store. OpTimeout bounds every
// store call so a slow Redis cannot stall request handling.
type StoreConfig struct {
	RedisPrefix string
	OpTimeout   time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries Argon2id cost parameters, in KB for Memory.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles the in-process outcome counters.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration: 15 minute access tokens,
// 7 day refresh tokens, "rt" store namespace, 3 second store timeout, and
// the package's Argon2id defaults. Token.Secret is intentionally left empty.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			RedisPrefix: "rt",
			OpTimeout:   3 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = append([]byte(nil), cfg.Token.Secret...)
	return out
}

func validateConfig(cfg Config) error {
	if len(cfg.Token.Secret) == 0 {
		return errors.New("token signing secret is required")
	}
	if cfg.Token.AccessTTL <= 0 || cfg.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if cfg.Token.AccessTTL >= cfg.Token.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if cfg.Store.OpTimeout < 0 {
		return errors.New("store op timeout must not be negative")
	}

	return nil
}
