// Package config loads the hullbench program configuration from a YAML file,
// a .env file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/xraph/go-utils/log"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/xraph/hull/internal/bench"
)

// Config is the typed program configuration.
type Config struct {
	Bench BenchConfig `yaml:"bench"`
	Log   LogConfig   `yaml:"log"`
	Serve ServeConfig `yaml:"serve"`
}

type BenchConfig struct {
	Repetitions int    `yaml:"repetitions"`
	TimeScale   string `yaml:"time_scale"` // ns | ms
}

type LogConfig struct {
	Level       string `yaml:"level"` // debug | info | warn | error
	Development bool   `yaml:"development"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Bench: BenchConfig{
			Repetitions: 100_000,
			TimeScale:   string(bench.Nanoseconds),
		},
		Log: LogConfig{
			Level: "info",
		},
		Serve: ServeConfig{
			Addr: ":8085",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped when
// path is empty), then the env files (".env" when none are given; missing
// files are ignored), then HULL_* environment variables.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("yaml unmarshal %s: %w", path, err)
		}
	}

	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		// A missing file is fine; an unreadable or malformed one is not
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env %s: %w", file, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HULL_BENCH_REPETITIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HULL_BENCH_REPETITIONS: %w", err)
		}
		c.Bench.Repetitions = n
	}

	c.Bench.TimeScale = env("HULL_BENCH_TIME_SCALE", c.Bench.TimeScale)
	c.Log.Level = env("HULL_LOG_LEVEL", c.Log.Level)
	c.Serve.Addr = env("HULL_SERVE_ADDR", c.Serve.Addr)

	if v := os.Getenv("HULL_LOG_DEVELOPMENT"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HULL_LOG_DEVELOPMENT: %w", err)
		}
		c.Log.Development = dev
	}

	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Bench.Repetitions < 1 {
		return errors.New("bench.repetitions must be at least 1")
	}

	if _, err := bench.ParseTimeScale(c.Bench.TimeScale); err != nil {
		return fmt.Errorf("bench.time_scale: %w", err)
	}

	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	return nil
}

// TimeScale returns the parsed benchmark unit.
func (c *Config) TimeScale() bench.TimeScale {
	scale, err := bench.ParseTimeScale(c.Bench.TimeScale)
	if err != nil {
		return bench.Nanoseconds
	}

	return scale
}

// NewLogger builds the program logger at Log.Level: the colored development
// logger when Log.Development is set, JSON production output otherwise.
func (c *Config) NewLogger() (log.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	if c.Log.Development {
		return log.NewDevelopmentLoggerWithLevel(level.Level()), nil
	}

	return log.NewLogger(log.LoggingConfig{
		Level:       log.LogLevel(level.String()),
		Environment: "production",
	}), nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
