package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	RecallAPIKey       string
	RecallBaseURL      string
	N8NWebhookURL      string
	APISharedSecret    string
	MongoURI           string
	MongoDB            string
	DataDir            string
	BaseURL            string
	ShareSecret        string
	ShareTTL           time.Duration
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModelSummary string
	MaxBodyBytes       int64
}

func LoadConfig() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("PORT", "4000")
	cfg.RecallAPIKey = os.Getenv("RECALL_API_KEY")
	cfg.RecallBaseURL = envOrDefault("RECALL_BASE_URL", "https://us-east-1.recall.ai/api/v1")
	cfg.N8NWebhookURL = os.Getenv("N8N_WEBHOOK_URL")
	cfg.APISharedSecret = os.Getenv("API_SHARED_SECRET")

	cfg.MongoURI = os.Getenv("MONGO_URI")
	cfg.MongoDB = envOrDefault("MONGO_DB", "notetaker")
	cfg.DataDir = envOrDefault("DATA_DIR", "data")

	cfg.BaseURL = envOrDefault("BASE_URL", fmt.Sprintf("http://localhost:%s", cfg.Port))
	cfg.ShareSecret = envOrDefault("SHARE_SECRET", "change-me")

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = envOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	cfg.OpenAIModelSummary = envOrDefault("OPENAI_MODEL_SUMMARY", "gpt-4o-mini")

	shareTTLSeconds, err := parseIntEnv("SHARE_TTL_SECONDS", 86400)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHARE_TTL_SECONDS: %w", err)
	}
	cfg.ShareTTL = time.Duration(shareTTLSeconds) * time.Second

	maxBodyMB, err := parseIntEnv("MAX_BODY_MB", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_BODY_MB: %w", err)
	}
	cfg.MaxBodyBytes = maxBodyMB * 1024 * 1024

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = absDataDir

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}
