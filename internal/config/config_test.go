package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvLogPath, "")
	t.Setenv(EnvDebug, "")

	cfg, err := Load(Flags{}, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	dir, _ := DefaultDir()
	if cfg.DBPath != filepath.Join(dir, "learntrack.db") {
		t.Fatalf("unexpected default db path %q", cfg.DBPath)
	}
	if cfg.LogPath != filepath.Join(dir, "learntrack.log") {
		t.Fatalf("unexpected default log path %q", cfg.LogPath)
	}
	if cfg.Debug {
		t.Fatal("debug should default to false")
	}
}

func TestLoadPrecedence(t *testing.T) {
	envFile := writeEnvFile(t, "LEARNTRACK_DB=/dotenv/db\nLEARNTRACK_LOG=/dotenv/log\nLEARNTRACK_DEBUG=true\n")

	tests := []struct {
		name    string
		flags   Flags
		env     string
		wantDB  string
		wantLog string
	}{
		{"dotenv only", Flags{}, "", "/dotenv/db", "/dotenv/log"},
		{"env beats dotenv", Flags{}, "/env/db", "/env/db", "/dotenv/log"},
		{"flag beats env", Flags{DBPath: "/flag/db"}, "/env/db", "/flag/db", "/dotenv/log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDBPath, tt.env)
			t.Setenv(EnvLogPath, "")
			t.Setenv(EnvDebug, "")

			cfg, err := Load(tt.flags, envFile)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.DBPath != tt.wantDB || cfg.LogPath != tt.wantLog {
				t.Fatalf("got db=%q log=%q, want db=%q log=%q", cfg.DBPath, cfg.LogPath, tt.wantDB, tt.wantLog)
			}
			if !cfg.Debug {
				t.Fatal("debug should come from the .env file")
			}
		})
	}
}

func TestLoadDoesNotTouchEnvironment(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	envFile := writeEnvFile(t, "LEARNTRACK_DB=/dotenv/db\n")
	if _, err := Load(Flags{}, envFile); err != nil {
		t.Fatal(err)
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		t.Fatalf("Load must not export .env values, got %q", v)
	}
}

func TestLoadBadDebug(t *testing.T) {
	t.Setenv(EnvDebug, "sometimes")
	if _, err := Load(Flags{}, ""); err == nil {
		t.Fatal("expected error for unparseable debug flag")
	}
}
