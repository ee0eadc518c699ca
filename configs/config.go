package config

import (
	"os"
)

// Config holds the application configuration
type Config struct {
	Port              string
	Environment       string
	APIKey            string
	AdminUsername     string
	AdminPassword     string
	InferenceEndpoint string
	InferenceAPIKey   string
	EmbeddingModel    string
	EntailmentModel   string
	DefaultEngine     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		APIKey:            getEnv("API_KEY", ""),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "default_secret_key"),
		InferenceEndpoint: getEnv("INFERENCE_ENDPOINT", "http://localhost:8000"),
		InferenceAPIKey:   getEnv("INFERENCE_API_KEY", ""),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "BM-K/KoSimCSE-roberta-multitask"),
		EntailmentModel:   getEnv("ENTAILMENT_MODEL", "Huffon/klue-roberta-base-nli"),
		DefaultEngine:     getEnv("DEFAULT_ENGINE", "similarity"),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
