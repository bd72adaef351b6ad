package config

import (
	"log"
	"os"
)

type Config struct {
	HTTPPort           string
	StoreURL           string // base URL of the hosted table store REST endpoint
	StoreKey           string // static bearer credential for the store
	JWTSecret          string
	MasterPasswordHash string // bcrypt hash of the single admin password
	CORSOrigins        string
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		StoreURL:           getEnv("STORE_URL", ""),
		StoreKey:           getEnv("STORE_KEY", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		MasterPasswordHash: getEnv("MASTER_PASSWORD_HASH", ""),
		CORSOrigins:        getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	if cfg.StoreURL == "" {
		log.Fatal("[FATAL] STORE_URL is not set")
	}
	if cfg.StoreKey == "" {
		log.Fatal("[FATAL] STORE_KEY is not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.MasterPasswordHash == "" {
		log.Fatal("[FATAL] MASTER_PASSWORD_HASH is not set")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the development default")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
