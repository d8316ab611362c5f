package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/km-arc/go-extkit/framework/container"
	"github.com/km-arc/go-extkit/framework/validation"
)

// Token is the container token the loaded *Config is bound under.
var Token = container.NewToken[*Config]("config")

// Config is the central typed configuration struct.
type Config struct {
	App AppConfig
	Log LogConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Addr  string // listen address for `serve`
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console; empty picks by APP_ENV
}

// Load reads the given .env files (default ".env", if present) and populates
// a Config from environment variables. Variables already set in the process
// environment win over the files.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "extkit"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", false),
			Addr:  env("APP_ADDR", ":8000"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(env("LOG_LEVEL", "info")),
			Format: strings.ToLower(env("LOG_FORMAT", "")),
		},
	}
}

// Validate checks the values that the host cannot start without.
func (c *Config) Validate() error {
	v := validation.Make(map[string]string{
		"APP_NAME":   c.App.Name,
		"APP_ENV":    c.App.Env,
		"APP_ADDR":   c.App.Addr,
		"LOG_LEVEL":  c.Log.Level,
		"LOG_FORMAT": c.Log.Format,
	}, validation.Rules{
		"APP_NAME":   "required|max:64",
		"APP_ENV":    "required|in:local,production,testing",
		"APP_ADDR":   "required",
		"LOG_LEVEL":  "required|in:debug,info,warn,error",
		"LOG_FORMAT": "in:json,console",
	})
	if v.Fails() {
		return fmt.Errorf("config: %w", v.Errors())
	}
	return nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// ── helpers ──────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
