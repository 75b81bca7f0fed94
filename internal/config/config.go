package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DBDriver       string
	DBUrl          string
	JWTSecret      string
	UploadDir      string
	SeedCatalog    bool
	RateLimitRPS   float64
	RateLimitBurst int
	LogLevel       string

	APIURL      string
	LocalStore  string
	AuthLatency time.Duration
	BcryptCost  int
}

const DefaultJWTSecret = "default-secret-key-change-in-production"

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, using defaults")
	}

	return Config{
		Port:           getEnv("PORT", "3001"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBUrl:          getEnv("DB_URL", "mobilehub.db"),
		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		UploadDir:      os.Getenv("UPLOAD_DIR"),
		SeedCatalog:    getEnvBool("SEED_CATALOG", true),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		APIURL:      getEnv("API_URL", "http://localhost:3001"),
		LocalStore:  getEnv("LOCAL_STORE", ".mobilehub/local.db"),
		AuthLatency: time.Duration(getEnvInt("AUTH_LATENCY_MS", 0)) * time.Millisecond,
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
