package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App AppConfig
	API APIConfig
	Log LogConfig
}

type AppConfig struct {
	Environment string
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	CookieFilePath string
}

type LogConfig struct {
	FilePath string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
		},
		API: APIConfig{
			BaseURL: getEnv("LABNOTE_API_BASE_URL", "http://localhost:5000"),
			// 0 means no client-side timeout; a hung request stays in
			// flight until the caller's context is abandoned.
			RequestTimeout: getEnvAsDuration("LABNOTE_REQUEST_TIMEOUT", 0),
			CookieFilePath: getEnv("LABNOTE_COOKIE_FILE", defaultCookiePath()),
		},
		Log: LogConfig{
			FilePath: getEnv("LOG_FILE_PATH", "labnote.log"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func defaultCookiePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".labnote-cookies.json"
	}
	return filepath.Join(home, ".labnote-cookies.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
