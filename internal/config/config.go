package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// devSessionSecret is only accepted outside production.
const devSessionSecret = "sendagaya"

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	SessionSecret    string // HMAC key for session tokens
	SessionTTLMin    int    // session lifetime in minutes
	BcryptCost       int    // bcrypt cost for new password hashes
	ImageDir         string // directory holding image blobs
	UploadLimitBytes int64  // maximum accepted upload size
}

// Load reads configuration values from environment variables and returns a
// Config. Production refuses to start without an explicit session secret.
func Load() Config {
	cfg := Config{
		Env:              envStr("APP_ENV", "dev"),
		Port:             envStr("APP_PORT", "8080"),
		DBUser:           envStr("ISUCONP_DB_USER", "root"),
		DBPass:           os.Getenv("ISUCONP_DB_PASSWORD"), // empty allowed
		DBHost:           envStr("ISUCONP_DB_HOST", "localhost"),
		DBPort:           envStr("ISUCONP_DB_PORT", "3306"),
		DBName:           envStr("ISUCONP_DB_NAME", "isuconp"),
		SessionSecret:    envStr("SESSION_SECRET", devSessionSecret),
		SessionTTLMin:    envInt("SESSION_TTL_MIN", 24*60),
		BcryptCost:       envInt("BCRYPT_COST", 10),
		ImageDir:         envStr("IMAGE_DIR", "../public/images"),
		UploadLimitBytes: int64(envInt("UPLOAD_LIMIT_BYTES", 10*1024*1024)),
	}
	if cfg.IsProd() {
		cfg.SessionSecret = must("SESSION_SECRET")
	}
	return cfg
}

// IsProd reports whether the service runs with production settings.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
