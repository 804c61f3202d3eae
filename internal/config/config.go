// Package config resolves settings from defaults, an optional YAML file, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	EngineDlib   = "dlib"
	EngineWorker = "worker"

	ModelHOG = "hog"
	ModelCNN = "cnn"

	// DefaultFile is read when present and no explicit path was given
	DefaultFile = "facelens.yaml"
)

type Config struct {
	KnownDir       string  `yaml:"known_dir"`
	Tolerance      float64 `yaml:"tolerance"`
	Engine         string  `yaml:"engine"`
	ModelsDir      string  `yaml:"models_dir"`
	DetectionModel string  `yaml:"detection_model"`
	WorkerCommand  string  `yaml:"worker_command"` // program and args for the external engine
	Device         int     `yaml:"device"`
	Scale          float64 `yaml:"scale"` // live-path downscale factor
	TestDir        string  `yaml:"test_dir"`
	LogLevel       string  `yaml:"log_level"`
	LogFile        string  `yaml:"log_file"` // optional rotating log file
}

func Default() *Config {
	return &Config{
		KnownDir:       "known_faces",
		Tolerance:      0.6,
		Engine:         EngineDlib,
		ModelsDir:      "models",
		DetectionModel: ModelHOG,
		Device:         0,
		Scale:          0.25,
		TestDir:        "test_images",
		LogLevel:       "info",
	}
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envFloat is envInt for positive floats
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// Load builds the configuration. path may be empty, in which case DefaultFile is
// used if it exists. A .env file in the working directory is loaded into the
// environment first; variables already set win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.KnownDir = envString("FACELENS_KNOWN_DIR", c.KnownDir)
	c.Tolerance = envFloat("FACELENS_TOLERANCE", c.Tolerance)
	c.Engine = envString("FACELENS_ENGINE", c.Engine)
	c.ModelsDir = envString("FACELENS_MODELS_DIR", c.ModelsDir)
	c.DetectionModel = envString("FACELENS_DETECTION_MODEL", c.DetectionModel)
	c.WorkerCommand = envString("FACELENS_WORKER_CMD", c.WorkerCommand)
	c.Device = envInt("FACELENS_DEVICE", c.Device)
	c.Scale = envFloat("FACELENS_SCALE", c.Scale)
	c.TestDir = envString("FACELENS_TEST_DIR", c.TestDir)
	c.LogLevel = envString("FACELENS_LOG_LEVEL", c.LogLevel)
	c.LogFile = envString("FACELENS_LOG_FILE", c.LogFile)
}

// ApplyFlags overrides fields with flags the user explicitly set.
// Flags that are not defined on fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) {
	str := func(name string, dst *string) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	num := func(name string, dst *float64) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if v, err := strconv.ParseFloat(f.Value.String(), 64); err == nil {
				*dst = v
			}
		}
	}

	str("known", &c.KnownDir)
	num("threshold", &c.Tolerance)
	str("engine", &c.Engine)
	str("models", &c.ModelsDir)
	str("model", &c.DetectionModel)
	str("worker-cmd", &c.WorkerCommand)
	num("scale", &c.Scale)
	str("dir", &c.TestDir)
	str("log-level", &c.LogLevel)
	str("log-file", &c.LogFile)

	if f := fs.Lookup("device"); f != nil && f.Changed {
		if v, err := strconv.Atoi(f.Value.String()); err == nil {
			c.Device = v
		}
	}
}

// Validate rejects settings no command can run with
func (c *Config) Validate() error {
	if c.Tolerance <= 0 || c.Tolerance > 1 {
		return fmt.Errorf("tolerance must be in (0, 1], got %v", c.Tolerance)
	}
	if c.Scale <= 0 || c.Scale > 1 {
		return fmt.Errorf("scale must be in (0, 1], got %v", c.Scale)
	}
	if c.Device < 0 {
		return fmt.Errorf("device must be non-negative, got %d", c.Device)
	}
	switch c.Engine {
	case EngineDlib:
	case EngineWorker:
		if c.WorkerCommand == "" {
			return errors.New("engine 'worker' requires a worker command")
		}
	default:
		return fmt.Errorf("unknown engine %q (expected %s or %s)", c.Engine, EngineDlib, EngineWorker)
	}
	if c.DetectionModel != ModelHOG && c.DetectionModel != ModelCNN {
		return fmt.Errorf("unknown detection model %q (expected %s or %s)", c.DetectionModel, ModelHOG, ModelCNN)
	}
	if c.KnownDir == "" {
		return errors.New("known faces directory must not be empty")
	}
	return nil
}
