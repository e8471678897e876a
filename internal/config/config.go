package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses sweep intervals
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env               string        // application environment (e.g. "dev", "prod")
	Port              string        // HTTP port to listen on
	DBUser            string        // database username
	DBPass            string        // database password (optional)
	DBHost            string        // database host address
	DBPort            string        // database port number
	DBName            string        // database name
	JWTSecret         string        // secret used to sign JWTs
	AccessTTLMin      int           // access token time-to-live in minutes
	RefreshTTLDays    int           // refresh token time-to-live in days
	BcryptCost        int           // bcrypt cost for password hashing
	CommissionPercent int64         // platform fee as a percentage of the winning bid
	SweepInterval     time.Duration // period of the settlement sweep
	MediaUploadURL    string        // endpoint of the external image storage service (optional)
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Settlement knobs
// carry defaults: 5% commission and a one-minute sweep.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:    mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:        mustInt("BCRYPT_COST"),
		CommissionPercent: int64(defInt("COMMISSION_PERCENT", 5)),
		SweepInterval:     defDur("SWEEP_INTERVAL", time.Minute),
		MediaUploadURL:    os.Getenv("MEDIA_UPLOAD_URL"),
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

// defInt reads an optional integer variable, falling back to def when unset.
func defInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}

// defDur reads an optional duration variable ("30s", "1m"), falling back
// to def when unset.
func defDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
