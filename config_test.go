package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"BETTERREST_MODEL", "BETTERREST_CLOCK", "BETTERREST_PORT", "BETTERREST_CACHE_SIZE", "BETTERREST_VERBOSE"} {
		t.Setenv(k, "")
	}

	cfg := loadConfig(filepath.Join(t.TempDir(), "absent.env"))
	want := Config{Clock: "auto", CacheSize: 4096}
	if cfg != want {
		t.Errorf("loadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BETTERREST_MODEL", "/etc/betterrest/model.json")
	t.Setenv("BETTERREST_CLOCK", "24h")
	t.Setenv("BETTERREST_PORT", "8484")
	t.Setenv("BETTERREST_CACHE_SIZE", "not-a-number")
	t.Setenv("BETTERREST_VERBOSE", "true")

	cfg := loadConfig(filepath.Join(t.TempDir(), "absent.env"))
	want := Config{ModelPath: "/etc/betterrest/model.json", Clock: "24h", Port: 8484, CacheSize: 4096, Verbose: true}
	if cfg != want {
		t.Errorf("loadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigFromDotEnv(t *testing.T) {
	const key = "BETTERREST_PORT"
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BETTERREST_PORT=9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if cfg := loadConfig(path); cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
}
