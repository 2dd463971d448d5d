package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/medintake/medintake/internal/domain/matching"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	AuthMode       string   `mapstructure:"AUTH_MODE"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL    string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	AuthDevSecret  string   `mapstructure:"AUTH_DEV_SECRET"`
	DefaultTenant  string   `mapstructure:"DEFAULT_TENANT"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	MigrationsDir  string   `mapstructure:"MIGRATIONS_DIR"`

	// Matching weights and thresholds
	MatchExactNameWeight         float64 `mapstructure:"MATCH_EXACT_NAME_WEIGHT"`
	MatchNameSimilarityThreshold float64 `mapstructure:"MATCH_NAME_SIMILARITY_THRESHOLD"`
	MatchNameSimilarityWeight    float64 `mapstructure:"MATCH_NAME_SIMILARITY_WEIGHT"`
	MatchWordMatchWeight         float64 `mapstructure:"MATCH_WORD_MATCH_WEIGHT"`
	MatchExactIDWeight           float64 `mapstructure:"MATCH_EXACT_ID_WEIGHT"`
	MatchDateWeight              float64 `mapstructure:"MATCH_DATE_WEIGHT"`
	MatchDateSimilarityThreshold float64 `mapstructure:"MATCH_DATE_SIMILARITY_THRESHOLD"`
	MatchInclusionThreshold      float64 `mapstructure:"MATCH_INCLUSION_THRESHOLD"`
	MatchAutoAcceptThreshold     float64 `mapstructure:"MATCH_AUTO_ACCEPT_THRESHOLD"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	defaults := matching.DefaultMatchWeights()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_TENANT", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("MATCH_EXACT_NAME_WEIGHT", defaults.ExactNameWeight)
	v.SetDefault("MATCH_NAME_SIMILARITY_THRESHOLD", defaults.NameSimilarityThreshold)
	v.SetDefault("MATCH_NAME_SIMILARITY_WEIGHT", defaults.NameSimilarityWeight)
	v.SetDefault("MATCH_WORD_MATCH_WEIGHT", defaults.WordMatchWeight)
	v.SetDefault("MATCH_EXACT_ID_WEIGHT", defaults.ExactIDWeight)
	v.SetDefault("MATCH_DATE_WEIGHT", defaults.DateWeight)
	v.SetDefault("MATCH_DATE_SIMILARITY_THRESHOLD", defaults.DateSimilarityThreshold)
	v.SetDefault("MATCH_INCLUSION_THRESHOLD", defaults.CandidateInclusionThreshold)
	v.SetDefault("MATCH_AUTO_ACCEPT_THRESHOLD", defaults.AutoAcceptThreshold)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "AUTH_MODE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE", "AUTH_DEV_SECRET",
		"DEFAULT_TENANT", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"MIGRATIONS_DIR",
		"MATCH_EXACT_NAME_WEIGHT", "MATCH_NAME_SIMILARITY_THRESHOLD",
		"MATCH_NAME_SIMILARITY_WEIGHT", "MATCH_WORD_MATCH_WEIGHT",
		"MATCH_EXACT_ID_WEIGHT", "MATCH_DATE_WEIGHT",
		"MATCH_DATE_SIMILARITY_THRESHOLD", "MATCH_INCLUSION_THRESHOLD",
		"MATCH_AUTO_ACCEPT_THRESHOLD",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get admin access.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise the mode is inferred:
//   - ENV=development → "development" (no auth, all requests get admin)
//   - AUTH_ISSUER set → "external" (Keycloak, Auth0, etc.)
//   - Otherwise       → "hmac" (shared-secret JWTs via AUTH_DEV_SECRET)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	if c.AuthIssuer != "" {
		return "external"
	}
	return "hmac"
}

// MatchWeights assembles the matcher configuration from the loaded values.
// The normalized primary weights are not tunable per deployment and keep
// their defaults.
func (c *Config) MatchWeights() matching.MatchWeights {
	w := matching.DefaultMatchWeights()
	w.ExactNameWeight = c.MatchExactNameWeight
	w.NameSimilarityThreshold = c.MatchNameSimilarityThreshold
	w.NameSimilarityWeight = c.MatchNameSimilarityWeight
	w.WordMatchWeight = c.MatchWordMatchWeight
	w.ExactIDWeight = c.MatchExactIDWeight
	w.DateWeight = c.MatchDateWeight
	w.DateSimilarityThreshold = c.MatchDateSimilarityThreshold
	w.CandidateInclusionThreshold = c.MatchInclusionThreshold
	w.AutoAcceptThreshold = c.MatchAutoAcceptThreshold
	return w
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	switch mode {
	case "development":
	case "external":
		if c.AuthIssuer == "" {
			return fmt.Errorf("AUTH_ISSUER must be set when AUTH_MODE is \"external\" (current ENV=%q)", c.Env)
		}
	case "hmac":
		if c.AuthDevSecret == "" {
			return fmt.Errorf("AUTH_DEV_SECRET must be set when AUTH_MODE is \"hmac\"")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be \"development\", \"hmac\", or \"external\", got %q", mode)
	}

	weights := []struct {
		name  string
		value float64
	}{
		{"MATCH_EXACT_NAME_WEIGHT", c.MatchExactNameWeight},
		{"MATCH_NAME_SIMILARITY_THRESHOLD", c.MatchNameSimilarityThreshold},
		{"MATCH_NAME_SIMILARITY_WEIGHT", c.MatchNameSimilarityWeight},
		{"MATCH_WORD_MATCH_WEIGHT", c.MatchWordMatchWeight},
		{"MATCH_EXACT_ID_WEIGHT", c.MatchExactIDWeight},
		{"MATCH_DATE_WEIGHT", c.MatchDateWeight},
		{"MATCH_DATE_SIMILARITY_THRESHOLD", c.MatchDateSimilarityThreshold},
		{"MATCH_INCLUSION_THRESHOLD", c.MatchInclusionThreshold},
		{"MATCH_AUTO_ACCEPT_THRESHOLD", c.MatchAutoAcceptThreshold},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %g", w.name, w.value)
		}
	}

	return nil
}
