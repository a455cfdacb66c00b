package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env                 string   // application environment (e.g. "dev", "prod")
	Port                string   // HTTP port to listen on
	DBUser              string   // database username
	DBPass              string   // database password (optional)
	DBHost              string   // database host address
	DBPort              string   // database port number
	DBName              string   // database name
	JWTSecret           string   // secret used to sign JWTs
	TokenTTLHours       int      // access token time-to-live in hours
	BcryptCost          int      // bcrypt cost for password hashing
	AdminEmails         []string // emails granted the admin role at registration
	StripeSecretKey     string   // secret API key for the payment gateway
	StripeWebhookSecret string   // shared secret for webhook signature checks
	SiteOrigin          string   // public origin used in checkout redirect URLs
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                 must("APP_ENV"),
		Port:                must("APP_PORT"),
		DBUser:              must("DB_USER"),
		DBPass:              os.Getenv("DB_PASS"), // empty allowed
		DBHost:              must("DB_HOST"),
		DBPort:              must("DB_PORT"),
		DBName:              must("DB_NAME"),
		JWTSecret:           must("JWT_SECRET"),
		TokenTTLHours:       mustInt("TOKEN_TTL_HOURS"),
		BcryptCost:          mustInt("BCRYPT_COST"),
		AdminEmails:         splitEmails(os.Getenv("ADMIN_EMAILS")),
		StripeSecretKey:     must("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: must("STRIPE_WEBHOOK_SECRET"),
		SiteOrigin:          must("SITE_ORIGIN"),
	}
}

// IsAdminEmail reports whether email is on the configured admin allow-list.
// Comparison is case-insensitive on the normalized address.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range c.AdminEmails {
		if a == email {
			return true
		}
	}
	return false
}

func splitEmails(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
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
