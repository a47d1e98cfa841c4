package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_FileValues(t *testing.T) {
	dir := writeConfig(t, `
port: "8081"
db:
  path: /tmp/x.db
tracker:
  timezone: UTC
session:
  secret: s3cr3t
  ttl: 2h
cors:
  allowed_origins: ["http://localhost:5173"]
trusted_proxies: ["10.0.0.0/8", "127.0.0.1"]
simulator:
  enabled: true
  interval: 250ms
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8081" || cfg.DBPath != "/tmp/x.db" || cfg.Location != time.UTC {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Session.TTL != 2*time.Hour || cfg.Session.Backend != SessionMemory || cfg.Session.CookieName != "regenx.sid" {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Fatalf("unexpected trusted proxies: %v", cfg.TrustedProxies)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || !cfg.Simulator.Enabled || cfg.Simulator.Interval != 250*time.Millisecond {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, "session:\n  secret: from-file\n")
	t.Setenv("REGENX_SESSION_SECRET", "from-env")
	t.Setenv("REGENX_PORT", "9999")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Secret != "from-env" || cfg.Port != "9999" {
		t.Fatalf("env did not override: secret=%q port=%q", cfg.Session.Secret, cfg.Port)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"missing secret":  "session:\n  secret: \"\"\n",
		"unknown backend": "session:\n  secret: x\n  backend: memcached\n",
		"bad timezone":    "session:\n  secret: x\ntracker:\n  timezone: Mars/Olympus\n",
		"bad proxy":       "session:\n  secret: x\ntrusted_proxies: [\"not-an-ip\"]\n",
		"schemeless cors": "session:\n  secret: x\ncors:\n  allowed_origins: [\"app.example\"]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("REGENX_SESSION_SECRET", "x")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" || cfg.StaticDir != "public" || cfg.Location != time.Local {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
