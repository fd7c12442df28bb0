package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration problems
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Identity and database settings are hard
// requirements; the mail relay and map provider keys degrade to a
// logged warning when absent because neither is correctness-critical.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	SendgridKey    string // sendgrid API key for the mail relay (optional)
	MailFrom       string // sender address for outgoing mail
	MapProviderKey string // map tiles API key handed to clients (optional)
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Optional variables only produce a warning.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		SendgridKey:    os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenv("MAIL_FROM", "noreply@ganpatimandal.com"),
		MapProviderKey: os.Getenv("MAP_PROVIDER_KEY"),
	}
	if cfg.SendgridKey == "" {
		log.Printf("warn: SENDGRID_API_KEY not set; outgoing mail will be logged and dropped")
	}
	if cfg.MapProviderKey == "" {
		log.Printf("warn: MAP_PROVIDER_KEY not set; map clients will run without a tiles key")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
