package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.KnownDir != "known_faces" {
		t.Errorf("KnownDir = %q, want known_faces", cfg.KnownDir)
	}
	if cfg.Tolerance != 0.6 {
		t.Errorf("Tolerance = %v, want 0.6", cfg.Tolerance)
	}
	if cfg.Scale != 0.25 {
		t.Errorf("Scale = %v, want 0.25", cfg.Scale)
	}
	if cfg.Engine != EngineDlib || cfg.DetectionModel != ModelHOG {
		t.Errorf("Engine/Model = %s/%s", cfg.Engine, cfg.DetectionModel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yml := "known_dir: people\ntolerance: 0.5\nscale: 0.5\ndevice: 2\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FACELENS_TOLERANCE", "0.45")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.KnownDir != "people" {
		t.Errorf("KnownDir = %q, want people from file", cfg.KnownDir)
	}
	if cfg.Tolerance != 0.45 {
		t.Errorf("Tolerance = %v, want env override 0.45", cfg.Tolerance)
	}
	if cfg.Device != 2 || cfg.Scale != 0.5 {
		t.Errorf("Device/Scale = %d/%v, want 2/0.5", cfg.Device, cfg.Scale)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("FACELENS_KNOWN_DIR=from_dotenv\n"), 0644)
	// Registered so the variable is restored after the test
	t.Setenv("FACELENS_KNOWN_DIR", "")
	os.Unsetenv("FACELENS_KNOWN_DIR")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.KnownDir != "from_dotenv" {
		t.Errorf("KnownDir = %q, want from_dotenv", cfg.KnownDir)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("missing explicit config file should be an error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("tolerance: [not a number"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("malformed config file should be an error")
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("FACELENS_DEVICE", "abc")
	if got := envInt("FACELENS_DEVICE", 3); got != 3 {
		t.Errorf("invalid int should fall back, got %d", got)
	}
	t.Setenv("FACELENS_DEVICE", "-1")
	if got := envInt("FACELENS_DEVICE", 3); got != 3 {
		t.Errorf("negative int should fall back, got %d", got)
	}
	t.Setenv("FACELENS_SCALE", "0")
	if got := envFloat("FACELENS_SCALE", 0.25); got != 0.25 {
		t.Errorf("zero float should fall back, got %v", got)
	}
	t.Setenv("FACELENS_SCALE", "0.5")
	if got := envFloat("FACELENS_SCALE", 0.25); got != 0.5 {
		t.Errorf("envFloat = %v, want 0.5", got)
	}
}

func TestApplyFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("known", "known_faces", "")
	fs.Float64("threshold", 0.6, "")
	fs.Int("device", 0, "")
	fs.Float64("scale", 0.25, "")
	if err := fs.Parse([]string{"--known", "crew", "--device", "1"}); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Tolerance = 0.4 // from env; unchanged flag must not clobber it
	cfg.ApplyFlags(fs)

	if cfg.KnownDir != "crew" || cfg.Device != 1 {
		t.Errorf("explicit flags not applied: %+v", cfg)
	}
	if cfg.Tolerance != 0.4 {
		t.Errorf("Tolerance = %v, default flag value should not override", cfg.Tolerance)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }, "tolerance"},
		{"tolerance above one", func(c *Config) { c.Tolerance = 1.5 }, "tolerance"},
		{"tolerance of one", func(c *Config) { c.Tolerance = 1 }, ""},
		{"scale too big", func(c *Config) { c.Scale = 2 }, "scale"},
		{"negative device", func(c *Config) { c.Device = -1 }, "device"},
		{"bad engine", func(c *Config) { c.Engine = "magic" }, "unknown engine"},
		{"worker without command", func(c *Config) { c.Engine = EngineWorker }, "worker command"},
		{"worker with command", func(c *Config) { c.Engine = EngineWorker; c.WorkerCommand = "python3 engine.py" }, ""},
		{"bad model", func(c *Config) { c.DetectionModel = "yolo" }, "detection model"},
		{"empty known dir", func(c *Config) { c.KnownDir = "" }, "known faces"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q): %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore Chdir(%q): %v", old, err)
		}
	})
}
