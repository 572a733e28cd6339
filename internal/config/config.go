package config

import (
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string
	LogFile  string

	ClinicName string
	DoctorName string

	// DataFile is the JSON file backing the appointment store.
	DataFile     string
	SlotDuration time.Duration
	OpenAt       string
	CloseAt      string

	AWSRegion      string
	BedrockModelID string
	GeminiAPIKey   string
	GeminiModelID  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		ClinicName: getEnv("CLINIC_NAME", "Clínica SaúdeViva"),
		DoctorName: getEnv("CLINIC_DOCTOR", "Dr. Carlos (General Practitioner)"),

		DataFile:     getEnv("CLINIC_DATA_FILE", "consultas.json"),
		SlotDuration: getEnvAsDuration("CLINIC_SLOT_DURATION", 30*time.Minute),
		OpenAt:       getEnv("CLINIC_OPEN", "08:00"),
		CloseAt:      getEnv("CLINIC_CLOSE", "18:00"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
