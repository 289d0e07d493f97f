package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	WhapiToken   string
	WhapiBaseURL string
	SiteURL      string
	CompanyName  string
	SendDelay    time.Duration

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBPath     string

	AMQPURL      string
	AMQPExchange string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		WhapiToken:   getEnv("WHAPI_TOKEN", ""),
		WhapiBaseURL: getEnv("WHAPI_BASE_URL", "https://gate.whapi.cloud"),
		SiteURL:      getEnv("SITE_URL", "https://app.gabonautoimport.com"),
		CompanyName:  getEnv("COMPANY_NAME", "Gabon Auto Import"),
		SendDelay:    getEnvMillis("SEND_DELAY_MS", 500),

		DBHost:     getEnv("DB_HOST", ""),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "broker_notify"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "./broker-notify.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "orders"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvMillis(key string, fallback int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
		log.Printf("Warning: invalid %s value %q, using default", key, value)
	}
	return time.Duration(fallback) * time.Millisecond
}
