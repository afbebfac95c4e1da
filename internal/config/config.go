package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MQTTBroker   string
	MQTTPort     int
	MQTTTopic    string
	MQTTClientID string

	FrigateAPIURL  string
	RequestTimeout time.Duration

	ConfidenceThreshold float64
	TargetClasses       []string
	FullEvidence        bool // keep scanning after the first qualifying hit

	Workers       int
	PopTimeout    time.Duration
	DedupeHistory int // recent event IDs remembered by the listener, 0 disables

	ModelPath       string
	ModelConfigPath string

	ReviewDirectory string
	DatabasePath    string
	LogDirectory    string

	StatusPort int // 0 disables the status server
}

func Load() *Config {
	return &Config{
		MQTTBroker:          getEnv("MQTT_BROKER", "localhost"),
		MQTTPort:            getEnvAsInt("MQTT_PORT", 1883),
		MQTTTopic:           getEnv("MQTT_TOPIC", "frigate/events/#"),
		MQTTClientID:        getEnv("MQTT_CLIENT_ID", "frigate-reviewer"),
		FrigateAPIURL:       getEnv("FRIGATE_API_URL", "http://localhost:5000"),
		RequestTimeout:      getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.5),
		TargetClasses:       getEnvAsList("TARGET_CLASSES", []string{"person", "car", "truck", "dog", "cat"}),
		FullEvidence:        getEnvAsBool("FULL_EVIDENCE", false),
		Workers:             getEnvAsInt("WORKERS", 1),
		PopTimeout:          getEnvAsDuration("POP_TIMEOUT", time.Second),
		DedupeHistory:       getEnvAsInt("DEDUPE_HISTORY", 0),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ModelConfigPath:     getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		ReviewDirectory:     getEnv("REVIEW_DIR", filepath.Join(".", "reviewed")),
		DatabasePath:        getEnv("DATABASE_PATH", filepath.Join(".", "reviews.db")),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		StatusPort:          getEnvAsInt("STATUS_PORT", 8080),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		list := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		if len(list) > 0 {
			return list
		}
	}
	return defaultValue
}
