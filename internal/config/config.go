package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	ServiceName               string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Database                  DatabaseConfig
	Log                       LogConfig
	Tracing                   TracingConfig
	LoginRateLimit            RateLimitConfig
	ClinicTimezone            string
	MetricsEnabled            bool
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	SSLMode  string
	DSN      string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// TracingConfig controls the OpenTelemetry exporter.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

// RateLimitConfig is a token bucket definition.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	driver := getEnv("DB_DRIVER", "mysql")
	if driver != "mysql" && driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: must be mysql, postgres or sqlite", driver)
	}

	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	dbConfig := DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", defaultPort),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "neuroclinic"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
	dbConfig.DSN = getEnv("DATABASE_URL", dbConfig.buildDSN())

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	tracingEnabled, err := strconv.ParseBool(getEnv("TRACING_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACING_ENABLED: %w", err)
	}
	sampleRate, err := strconv.ParseFloat(getEnv("TRACING_SAMPLE_RATE", "1.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TRACING_SAMPLE_RATE: %w", err)
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}

	loginPerMinute, err := strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE: %w", err)
	}
	loginBurst, err := strconv.Atoi(getEnv("LOGIN_RATE_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_BURST: %w", err)
	}

	tz := getEnv("CLINIC_TIMEZONE", "America/Lima")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid CLINIC_TIMEZONE: %w", err)
	}

	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:8081"),
		Environment:               getEnv("APP_ENV", "development"),
		ServiceName:               getEnv("SERVICE_NAME", "neuroclinic"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Database:                  dbConfig,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Tracing: TracingConfig{
			Enabled:    tracingEnabled,
			Endpoint:   getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4318"),
			SampleRate: sampleRate,
		},
		LoginRateLimit: RateLimitConfig{
			PerMinute: loginPerMinute,
			Burst:     loginBurst,
		},
		ClinicTimezone: tz,
		MetricsEnabled: metricsEnabled,
	}, nil
}

// Location returns the clinic's time zone. LoadConfig has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether secure cookies and JSON logs should be used.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (d DatabaseConfig) buildDSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Username, d.Password, d.Name, d.Port, d.SSLMode)
	case "sqlite":
		return d.Name + ".db?_pragma=foreign_keys(1)"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
