package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML. Environment variables
// override individual fields after the file is read.
type FileConfig struct {
	Port                    string   `yaml:"port"`
	LogLevel                string   `yaml:"logLevel"`
	Env                     string   `yaml:"env"`
	TenantCodes             []string `yaml:"tenantCodes"`
	SeedCarsPerTenant       int      `yaml:"seedCarsPerTenant"`
	MaxCarsPerTenant        int      `yaml:"maxCarsPerTenant"`
	StaticDir               string   `yaml:"staticDir"`
	RedisAddr               string   `yaml:"redisAddr"`
	RedisPassword           string   `yaml:"redisPassword"`
	WriteRateLimitPerMinute int      `yaml:"writeRateLimitPerMinute"`
	TrustedProxyCIDRs       []string `yaml:"trustedProxyCidrs"`
}

// Load reads config from path (defaults to config.yaml), applies env
// overrides, and validates the result.
func Load(path string) (FileConfig, error) {
	// Defaults match the reference deployment; YAML and env override them.
	cfg := FileConfig{
		Port:              "3000",
		SeedCarsPerTenant: 5,
		MaxCarsPerTenant:  10,
	}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = strings.TrimSpace(v)
	}
	if v := os.Getenv("TENANT_CODES"); v != "" {
		cfg.TenantCodes = splitCSV(v)
	}
	if v := os.Getenv("SEED_CARS_PER_TENANT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.SeedCarsPerTenant = n
		}
	}
	if v := os.Getenv("MAX_CARS_PER_TENANT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.MaxCarsPerTenant = n
		}
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("WRITE_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.WriteRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if err := validateConfig(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// IsProduction reports whether the production tenant-code policy applies.
func (c FileConfig) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

func validateConfig(cfg *FileConfig) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	if cfg.MaxCarsPerTenant <= 0 {
		return errors.New("config: maxCarsPerTenant must be positive")
	}
	if cfg.SeedCarsPerTenant < 0 {
		return errors.New("config: seedCarsPerTenant must be >= 0")
	}
	if cfg.WriteRateLimitPerMinute < 0 {
		return errors.New("config: writeRateLimitPerMinute must be >= 0")
	}
	if cfg.WriteRateLimitPerMinute > 0 && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required when write rate limiting is enabled")
	}
	if len(cfg.TenantCodes) == 0 {
		if cfg.IsProduction() {
			return errors.New("config: tenant codes are required in production (set tenantCodes or TENANT_CODES)")
		}
		// Development fallback tenant.
		cfg.TenantCodes = []string{"TEST01"}
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
