// Package config reads the process environment, with an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lazharichir/blackjack/cards"
	"github.com/lazharichir/blackjack/table"
)

const DefaultPort = "7777"

// Config holds every runtime setting of the server and the CLI
type Config struct {
	Port            string
	DatabaseURL     string
	Debug           bool
	NumDecks        int
	NumSimulations  int
	ReshuffleRatio  float64
	BlackjackPayout float64
	AllowSplit      bool
	MaxHandCards    int
	Workers         int
	Seed            *int64
}

// Load reads .env if present, then the environment. Values that fail to
// parse keep their defaults.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration from the environment only
func FromEnv() Config {
	def := table.DefaultConfig()

	cfg := Config{
		Port:            getenv("BJ_PORT", DefaultPort),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Debug:           asBool(os.Getenv("BJ_DEBUG")),
		NumDecks:        decks(os.Getenv("BJ_DECKS"), def.NumDecks),
		NumSimulations:  positiveInt(os.Getenv("BJ_SIMULATIONS"), def.NumSimulations),
		ReshuffleRatio:  ratio(os.Getenv("BJ_RESHUFFLE_RATIO"), def.ReshuffleRatio),
		BlackjackPayout: positiveFloat(os.Getenv("BJ_BLACKJACK_PAYOUT"), def.BlackjackPayout),
		AllowSplit:      boolDef(os.Getenv("BJ_ALLOW_SPLIT"), def.AllowSplit),
		MaxHandCards:    positiveInt(os.Getenv("BJ_MAX_HAND_CARDS"), def.MaxHandCards),
		Workers:         positiveInt(os.Getenv("BJ_WORKERS"), def.Workers),
	}
	if s := strings.TrimSpace(os.Getenv("BJ_SEED")); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			cfg.Seed = &n
		}
	}
	return cfg
}

// TableConfig returns the table settings
func (c Config) TableConfig() table.Config {
	return table.Config{
		NumDecks:        c.NumDecks,
		NumSimulations:  c.NumSimulations,
		ReshuffleRatio:  c.ReshuffleRatio,
		BlackjackPayout: c.BlackjackPayout,
		AllowSplit:      c.AllowSplit,
		MaxHandCards:    c.MaxHandCards,
		Workers:         c.Workers,
		Seed:            c.Seed,
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func decks(s string, def int) int {
	n := positiveInt(s, def)
	if n > cards.MaxDecks {
		return def
	}
	return n
}

func positiveFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

// ratio accepts values in (0, 1). A zero ratio would never reshuffle.
func ratio(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 || f >= 1 {
		return def
	}
	return f
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func boolDef(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
