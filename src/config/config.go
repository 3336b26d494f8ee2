package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	CanisterURL     string
	CanisterTimeout time.Duration
	RedisURL        string
	JWTSecret       string
	Port            string
	AllowedOrigins  []string
	PageSize        int
	RefreshInterval time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	_ = godotenv.Load()

	pageSize, _ := strconv.Atoi(getenv("PAGE_SIZE", "10"))
	refresh, _ := strconv.Atoi(getenv("REFRESH_INTERVAL", "15"))
	timeout, _ := strconv.Atoi(getenv("CANISTER_TIMEOUT", "30"))

	return Config{
		CanisterURL:     getenv("CANISTER_URL", "http://127.0.0.1:4943"),
		CanisterTimeout: time.Duration(timeout) * time.Second,
		RedisURL:        getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret:       getenv("JWT_SECRET", ""),
		Port:            getenv("PORT", "8080"),
		AllowedOrigins:  strings.Split(getenv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		PageSize:        pageSize,
		RefreshInterval: time.Duration(refresh) * time.Second,
	}
}
