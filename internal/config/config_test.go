package config

import (
	"strings"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("expected mysql driver, got %q", cfg.Database.Driver)
	}
	if !strings.Contains(cfg.Database.DSN, "@tcp(localhost:3306)/neuroclinic") {
		t.Errorf("unexpected mysql DSN: %s", cfg.Database.DSN)
	}
	if cfg.JWTExpirationMinutes != 15 {
		t.Errorf("expected 15 minute access tokens, got %d", cfg.JWTExpirationMinutes)
	}
	if cfg.Location() == nil {
		t.Error("expected a clinic location")
	}
}

func TestLoadConfig_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(cfg.Database.DSN, "host=db") || !strings.Contains(cfg.Database.DSN, "port=5432") {
		t.Errorf("unexpected postgres DSN: %s", cfg.Database.DSN)
	}
}

func TestLoadConfig_SQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "/var/lib/neuroclinic/clinic")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.DSN != "/var/lib/neuroclinic/clinic.db?_pragma=foreign_keys(1)" {
		t.Errorf("unexpected sqlite DSN: %s", cfg.Database.DSN)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":   {"DB_DRIVER", "oracle"},
		"jwt":      {"JWT_EXPIRATION_MINUTES", "soon"},
		"timezone": {"CLINIC_TIMEZONE", "Mars/Olympus"},
		"tracing":  {"TRACING_ENABLED", "maybe"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}
