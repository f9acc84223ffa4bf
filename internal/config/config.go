package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/storyarc/narrative-backend/internal/logger"
)

// PlanTier is one purchasable subscription tier.
type PlanTier struct {
	Name         string `yaml:"name"`
	TokensPerDay int    `yaml:"tokens_per_day"`
	PriceUSD     int    `yaml:"price_usd"`
}

// Config carries every runtime setting. Secrets are resolved from the
// environment only; nothing here may be baked into the binary.
type Config struct {
	Port    string
	LogMode string

	JWTSecretKey string
	TokenTTL     time.Duration

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string

	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	GenerateTimeout time.Duration

	FreeTierLimit    int
	DefaultPlanLimit int
	Plans            []PlanTier

	AnalyticsTTL time.Duration
}

// DefaultPlans mirrors the tiers the product sells. A YAML catalog file can
// replace them without a rebuild.
func DefaultPlans() []PlanTier {
	return []PlanTier{
		{Name: "Seed", TokensPerDay: 10, PriceUSD: 0},
		{Name: "Growth", TokensPerDay: 25, PriceUSD: 12},
		{Name: "Authority", TokensPerDay: 100, PriceUSD: 29},
	}
}

func Load(log *logger.Logger) (*Config, error) {
	cfg := &Config{
		Port:    GetEnv("PORT", "8080", log),
		LogMode: GetEnv("LOG_MODE", "development", log),

		JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),
		TokenTTL:     time.Duration(GetEnvAsInt("TOKEN_TTL_SECONDS", 7*24*3600, log)) * time.Second,

		PostgresHost:     GetEnv("POSTGRES_HOST", "localhost", log),
		PostgresPort:     GetEnv("POSTGRES_PORT", "5432", log),
		PostgresUser:     GetEnv("POSTGRES_USER", "postgres", log),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresName:     GetEnv("POSTGRES_NAME", "narrative", log),
		PostgresSSLMode:  GetEnv("POSTGRES_SSLMODE", "disable", log),

		RedisAddr:     GetEnv("REDIS_ADDR", "localhost:6379", log),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log),
		OpenAIModel:     GetEnv("OPENAI_MODEL", "gpt-4o", log),
		GenerateTimeout: time.Duration(GetEnvAsInt("GENERATE_TIMEOUT_SECONDS", 60, log)) * time.Second,

		FreeTierLimit:    GetEnvAsInt("FREE_TIER_LIMIT", 5, log),
		DefaultPlanLimit: GetEnvAsInt("DEFAULT_PLAN_LIMIT", 10, log),
		Plans:            DefaultPlans(),

		AnalyticsTTL: time.Duration(GetEnvAsInt("ANALYTICS_TTL_SECONDS", 60, log)) * time.Second,
	}
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("missing JWT_SECRET_KEY")
	}

	if path := os.Getenv("PLAN_CATALOG_PATH"); path != "" {
		plans, err := LoadPlanCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("load plan catalog: %w", err)
		}
		cfg.Plans = plans
		if log != nil {
			log.Info("Loaded plan catalog", "path", path, "tiers", len(plans))
		}
	}
	return cfg, nil
}

// PlanLimit resolves a plan name to its daily token limit; unknown plans fall
// back to the default paid limit rather than failing the purchase.
func (c *Config) PlanLimit(name string) int {
	for _, p := range c.Plans {
		if p.Name == name {
			return p.TokensPerDay
		}
	}
	return c.DefaultPlanLimit
}

// PlanPrice resolves a plan name to its monthly price, zero for unknown plans.
func (c *Config) PlanPrice(name string) int {
	for _, p := range c.Plans {
		if p.Name == name {
			return p.PriceUSD
		}
	}
	return 0
}

type planCatalogFile struct {
	Plans []PlanTier `yaml:"plans"`
}

func LoadPlanCatalog(path string) ([]PlanTier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file planCatalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog %s defines no plans", path)
	}
	for _, p := range file.Plans {
		if p.Name == "" || p.TokensPerDay <= 0 {
			return nil, fmt.Errorf("plan catalog %s has an invalid tier: %+v", path, p)
		}
	}
	return file.Plans, nil
}

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable is not an int, using default", "env_var", key, "value", valStr, "default", defaultVal)
		}
		return defaultVal
	}
	return i
}
