package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries every environment-driven setting. Load it once in main and
// pass it down; nothing below the wiring layer reads the environment.
type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	AuthMode                string
	AllowedEmailDomain      string
}

// Load reads the .env file if present and resolves the configuration.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		AuthMode:                getEnv("AUTH_MODE", "jwt"),
		AllowedEmailDomain:      getEnv("ALLOWED_EMAIL_DOMAIN", "iitj.ac.in"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
