package tokengate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/veranyon/tokengate/internal/flows"
	"github.com/veranyon/tokengate/password"
	"github.com/veranyon/tokengate/refresh"
	"github.com/veranyon/tokengate/token"
)

// decoyPassword seeds the digest verified for unknown emails so a miss
// costs the same key derivation as a wrong password.
const decoyPassword = "decoy-credential-comparison"

// Builder assembles an [Engine]. Configure it during initialization and
// treat the result as immutable; a builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  UserStore

	built bool
}

// New returns a builder seeded with [DefaultConfig]. The host must still
// supply the signing secret, a Redis client, and a [UserStore].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the refresh token store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the credential persistence collaborator.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithMetricsEnabled toggles the in-process outcome counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, constructs the token codec, password
// hasher, and refresh store, and wires them into an [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		Secret:     cfg.Token.Secret,
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
		Issuer:     cfg.Token.Issuer,
		Leeway:     cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	decoyHash, err := hasher.Hash(decoyPassword)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		tokens:       tokens,
		store:        refresh.NewStore(b.redis, cfg.Store.RedisPrefix, cfg.Store.OpTimeout),
		passwordHash: hasher,
		users:        b.users,
		metrics:      newMetrics(cfg.Metrics.Enabled),
		decoyHash:    decoyHash,
	}
	engine.flows = flows.New(engine.flowDeps())

	b.built = true

	return engine, nil
}
