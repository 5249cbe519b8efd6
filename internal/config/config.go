package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time for duration-typed settings
)

// Config holds all runtime configuration for the API server. Each field
// corresponds to an environment variable. Google OAuth settings are
// optional: when the client id is empty the Google login routes respond
// 503 instead of redirecting.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign identity tokens
	AccessTTLMin int    // identity token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	GoogleClientID     string        // Google OAuth client id (optional)
	GoogleClientSecret string        // Google OAuth client secret (optional)
	GoogleRedirectURL  string        // callback URL registered with Google (optional)
	NonceTTL           time.Duration // lifetime of an unconsumed OAuth nonce

	NotifyURL     string        // base URL of the notification receiver
	NotifySecret  string        // shared-secret bearer sent on /notify calls
	NotifyTimeout time.Duration // upper bound on the synchronous notify call
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		NonceTTL:           envDur("OAUTH_NONCE_TTL", 10*time.Minute),

		NotifyURL:     must("NOTIFY_URL"),
		NotifySecret:  os.Getenv("NOTIFY_SECRET"),
		NotifyTimeout: envDur("NOTIFY_TIMEOUT", 5*time.Second),
	}
}

// NotifierConfig holds runtime configuration for the notification
// receiver service. It shares the database variable names with the API
// server so both services can be pointed at the same .env in development.
type NotifierConfig struct {
	Env    string // application environment
	Port   string // HTTP port to listen on
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string
	Secret string // shared-secret expected on /notify (empty disables the check)
}

// LoadNotifier reads the notification receiver's configuration.
func LoadNotifier() NotifierConfig {
	return NotifierConfig{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),
		Secret: os.Getenv("NOTIFY_SECRET"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
