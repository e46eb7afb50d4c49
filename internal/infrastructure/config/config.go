package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	// Question bank
	QuestionsDir string // directory with questions_index.csv + type files
	LookupsDir   string // directory with topics/components/priorities JSON

	// Attempt history
	AttemptStore string // "jsonl" or "sqlite"
	AttemptsDir  string // JSONL partitions, when AttemptStore=jsonl
	SQLitePath   string // database file, when AttemptStore=sqlite
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   mustGetenv("SERVER_ADDRESS"),
		ShutdownTimeout: mustGetDuration("SHUTDOWN_TIMEOUT"),
		QuestionsDir:    getenvDefault("QUESTIONS_DIR", "data/questions"),
		LookupsDir:      getenvDefault("LOOKUPS_DIR", "data/lookups"),
		AttemptStore:    getenvDefault("ATTEMPT_STORE", "jsonl"),
		AttemptsDir:     getenvDefault("ATTEMPTS_DIR", "user_data/attempts"),
		SQLitePath:      getenvDefault("SQLITE_PATH", "taxdrill.db"),
	}
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}
