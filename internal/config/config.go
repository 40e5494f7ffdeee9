package config

import (
	"log"
	"os"

	"github.com/subosito/gotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
	UploadDir   string // where profile pictures are stored
	BaseURL     string // public base URL used to build avatar links
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = gotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "3000"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=eoq port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174"),
		UploadDir:   getEnv("UPLOAD_DIR", "./public/uploads"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set, refusing to start")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=eoq port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own Postgres DSN for production")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
