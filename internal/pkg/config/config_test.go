package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour || cfg.Auth.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token TTLs: %v / %v", cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 || cfg.Auth.JWTIssuer != "auth-api" {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Redis.UserTTL != 5*time.Minute {
		t.Fatalf("unexpected cache TTL: %v", cfg.Redis.UserTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SeedDefaultUsers {
		t.Fatalf("seeding must be off by default")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s3cret",
		"ENV":                  "production",
		"ACCESS_TOKEN_TTL":     "15m",
		"REFRESH_TOKEN_TTL":    "2h",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"SEED_DEFAULT_USERS":   "true",
		"AUDIT_WORKERS":        "2",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute || cfg.Auth.RefreshTokenTTL != 2*time.Hour {
		t.Fatalf("TTL overrides not applied: %+v", cfg.Auth)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.SeedDefaultUsers || cfg.AuditWorkers != 2 || cfg.IsDevelopment() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"ACCESS_TOKEN_TTL": "-1m",
		"BCRYPT_COST":      "99",
	}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"ACCESS_TOKEN_TTL", "BCRYPT_COST"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
}
