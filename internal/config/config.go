// internal/config/config.go
//
// Runtime configuration.
// Values come from the process environment, optionally seeded from a .env
// file in the working directory. Unset or unparsable values fall back to
// their defaults.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config gathers every tunable of the solver, the surfaces and the simulator.
type Config struct {
	LogLevel  string
	LogFormat string // "console" | "json"

	CorpusFile  string // file or directory; "" = embedded sample
	VerseLength int    // 10 or 14; 0 = detect from the surface

	MaxAttempts    int
	RetryBudget    int
	MaxTurns       int
	ConflictPolicy string

	HistoryFile string // "" disables the JSON transcript
	HistoryDB   string // "" disables the SQLite store

	GameURL     string
	BrowserBin  string
	Headless    bool
	WaitTimeout time.Duration

	Port        string
	GameSecret  string
	DailySalt   string
	ConfirmExit bool
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),

		CorpusFile:  getEnv("CORPUS_FILE", ""),
		VerseLength: envInt("VERSE_LENGTH", 0),

		MaxAttempts:    envInt("MAX_ATTEMPTS", 9),
		RetryBudget:    envInt("RETRY_BUDGET", 3),
		MaxTurns:       envInt("MAX_TURNS", 0),
		ConflictPolicy: strings.ToLower(getEnv("CONFLICT_POLICY", "reject")),

		HistoryFile: envOptional("HISTORY_FILE", "guess_history.json"),
		HistoryDB:   envOptional("HISTORY_DB", "./data/history.db"),

		GameURL:     getEnv("GAME_URL", "https://xiaoce.fun/xunhualing"),
		BrowserBin:  getEnv("BROWSER_BIN", ""),
		Headless:    envBool("HEADLESS", false),
		WaitTimeout: envDuration("WAIT_TIMEOUT", 15*time.Second),

		Port:        getEnv("PORT", "5175"),
		GameSecret:  getEnv("GAME_SECRET", "dev_secret_change_me"),
		DailySalt:   getEnv("DAILY_SALT", "local_dev_salt"),
		ConfirmExit: envBool("CONFIRM_EXIT", false),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envOptional is getEnv, except that a variable explicitly set to "" disables
// the feature instead of selecting the default.
func envOptional(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
