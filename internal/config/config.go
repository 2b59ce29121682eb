package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	HTTPAddr        string
	DBDSN           string
	RedisAddr       string
	RedisPassword   string
	JWTSecret       string
	CasesDir        string
	LLMProvider     string
	LLMModel        string
	GeminiBaseURL   string
	GeminiAPIKey    string
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	LLMTimeout      time.Duration
	AssessBaseURL   string
	AssessAPIKey    string
	AssessTimeout   time.Duration
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string
	HistoryLimit    int
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		DBDSN:           os.Getenv("DB_DSN"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getenvDefault("JWT_SECRET", "change-me-in-production"),
		CasesDir:        getenvDefault("CASES_DIR", "./cases"),
		LLMProvider:     getenvDefault("LLM_PROVIDER", "gemini"),
		LLMModel:        getenvDefault("LLM_MODEL", "gemini-2.5-flash-lite"),
		GeminiBaseURL:   os.Getenv("GEMINI_BASE_URL"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIBaseURL:   getenvDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		LLMTimeout:      time.Duration(getenvIntDefault("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		AssessBaseURL:   strings.TrimRight(os.Getenv("ASSESS_BASE_URL"), "/"),
		AssessAPIKey:    os.Getenv("ASSESS_API_KEY"),
		AssessTimeout:   time.Duration(getenvIntDefault("ASSESS_TIMEOUT_SECONDS", 10)) * time.Second,
		MQTTBrokerURL:   os.Getenv("MQTT_BROKER_URL"),
		MQTTClientID:    getenvDefault("MQTT_CLIENT_ID", "dentai-server"),
		MQTTUsername:    os.Getenv("MQTT_USERNAME"),
		MQTTPassword:    os.Getenv("MQTT_PASSWORD"),
		MQTTTopicPrefix: getenvDefault("MQTT_TOPIC_PREFIX", "dentai"),
		HistoryLimit:    getenvIntDefault("CHAT_HISTORY_LIMIT", 100),
	}

	if cfg.DBDSN == "" {
		return ServerConfig{}, fmt.Errorf("DB_DSN is required")
	}
	if cfg.LLMProvider == "gemini" && cfg.GeminiAPIKey == "" {
		return ServerConfig{}, fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
	}
	if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
		return ServerConfig{}, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}

	return cfg, nil
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}
