package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Survey   SurveyConfig   `yaml:"survey"`
	Admin    AdminConfig    `yaml:"admin"`
	Auth     AuthConfig     `yaml:"auth"`
	App      AppConfig      `yaml:"app"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SurveyConfig struct {
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheSchedule string        `yaml:"cache_schedule"`
}

// AdminConfig drives the field-name loader and the admin page proxy
type AdminConfig struct {
	SurveyAPIBaseURL string   `yaml:"survey_api_base_url"`
	SurveyAPIKey     string   `yaml:"survey_api_key"`
	UpstreamURL      string   `yaml:"upstream_url"`
	HelpIconSrc      string   `yaml:"help_icon_src"`
	Scripts          []string `yaml:"scripts"`
	LoaderRate       float64  `yaml:"loader_rate_per_sec"`
}

type AuthConfig struct {
	APIKey     string   `yaml:"api_key"`
	StaffUsers []string `yaml:"staff_users"`
}

type AppConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	Version     string `yaml:"version"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "crowdsourcing"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Survey: SurveyConfig{
			CacheTTL:      getEnvAsDuration("SURVEY_CACHE_TTL", 10*time.Minute),
			CacheSchedule: getEnv("SURVEY_CACHE_SCHEDULE", "0 */5 * * * *"),
		},
		Admin: AdminConfig{
			SurveyAPIBaseURL: getEnv("SURVEY_API_BASE_URL", ""),
			SurveyAPIKey:     getEnv("SURVEY_API_KEY", ""),
			UpstreamURL:      getEnv("ADMIN_UPSTREAM_URL", ""),
			HelpIconSrc:      getEnv("ADMIN_HELP_ICON_SRC", "/static/admin/img/icon-unknown.gif"),
			Scripts:          getEnvAsList("ADMIN_SCRIPTS"),
			LoaderRate:       getEnvAsFloat("LOADER_RATE_PER_SEC", 1),
		},
		Auth: AuthConfig{
			APIKey:     getEnv("API_KEY", ""),
			StaffUsers: getEnvAsList("STAFF_USERS"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// overlay merges the YAML file at path over the environment values
func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	for name, raw := range map[string]string{
		"SURVEY_API_BASE_URL": c.Admin.SurveyAPIBaseURL,
		"ADMIN_UPSTREAM_URL":  c.Admin.UpstreamURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}

	// with no remote survey API the loader reads this service's own staff-only
	// endpoint and can only get in with the API key
	if c.Admin.SurveyAPIBaseURL == "" && c.Auth.APIKey == "" {
		return fmt.Errorf("API_KEY is required when SURVEY_API_BASE_URL is not set")
	}

	if c.Survey.CacheTTL < 0 {
		return fmt.Errorf("SURVEY_CACHE_TTL must not be negative")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
