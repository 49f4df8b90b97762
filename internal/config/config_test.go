package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got=%v", err)
	}
	s := Default().PhysicsSettings()
	if s.Gravity.Y != -10 || s.TimeStep != 0.05 || s.Iterations != 10 {
		t.Fatalf("unexpected physics settings: %+v", s)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got=%+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airclash.yaml")
	data := []byte("sub_steps: 3\ndraw_contacts: true\nplayer_name: ada\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got=%v", err)
	}
	if cfg.SubSteps != 3 || !cfg.DrawContacts || cfg.PlayerName != "ada" {
		t.Fatalf("expected overrides applied, got=%+v", cfg)
	}
	if cfg.FrameRate != 50 {
		t.Fatalf("expected untouched keys to keep defaults, got frame_rate=%d", cfg.FrameRate)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airclash.yaml")
	if err := os.WriteFile(path, []byte("sub_steps: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got=%v", err)
	}
}

func TestSetAndGet(t *testing.T) {
	cfg := Default()
	tests := []struct {
		key, value, want string
	}{
		{"draw_contacts", "1", "1"},
		{"draw_contacts", "false", "0"},
		{"gravity_y", "-9.5", "-9.5"},
		{"sub_steps", "7", "7"},
		{"player_name", "grace", "grace"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err != nil {
			t.Fatalf("set %s=%s: %v", tt.key, tt.value, err)
		}
		got, err := cfg.Get(tt.key)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Fatalf("expected %s=%s, got=%s", tt.key, tt.want, got)
		}
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	cfg := Default()
	if err := cfg.Set("nope", "1"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got=%v", err)
	}
	if err := cfg.Set("sub_steps", "many"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unparsable value, got=%v", err)
	}
	if err := cfg.Set("sub_steps", "-1"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for out of range value, got=%v", err)
	}
	if cfg.SubSteps != 5 {
		t.Fatalf("expected rejected set to leave config unchanged, got=%d", cfg.SubSteps)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvName("draw_contacts"), "1")
	t.Setenv(EnvName("player_name"), "env-player")
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if !cfg.DrawContacts || cfg.PlayerName != "env-player" {
		t.Fatalf("expected env overrides, got=%+v", cfg)
	}
}

func TestGetEnvFallback(t *testing.T) {
	if got := GetEnv("AIRCLASH_TEST_UNSET_VARIABLE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got=%s", got)
	}
}

func TestBundledConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("expected bundled config to equal defaults, got=%+v", cfg)
	}
}
