package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Engine knobs get permissive defaults so a
// bare environment runs with the documented behavior; connection
// parameters are required and enforced by must().
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret the identity collaborator signs member tokens with

	GraceWindow     time.Duration // early-arrival window before a slot's start
	RejectEarly     bool          // reject arrivals more than GraceWindow before the first slot
	PrivilegedTiers []string      // membership tiers admitted to privileged slots
	StorageTimeout  time.Duration // per storage attempt bound
	CommitRetries   int           // extra attempts for a transient commit failure
}

// Load reads configuration values from environment variables and returns
// a Config.  Missing required variables cause a fatal log message.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),

		GraceWindow:     envDuration("SCAN_GRACE_WINDOW", 10*time.Minute),
		RejectEarly:     envBoolean("SCAN_REJECT_EARLY", false),
		PrivilegedTiers: splitList(getenvDefault("PRIVILEGED_TIERS", "senior,staff")),
		StorageTimeout:  envDuration("STORAGE_TIMEOUT", 3*time.Second),
		CommitRetries:   envInteger("COMMIT_RETRIES", 2),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}

func envInteger(key string, def int) int {
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

func envBoolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	log.Fatalf("invalid bool for %s: %q", key, v)
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
