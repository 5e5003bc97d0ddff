package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.  Required variables abort startup
// when missing; optional ones carry defaults suited to development.
type Config struct {
	Env                 string // application environment (dev, test, prod)
	Port                string // HTTP port to listen on
	DBUser              string
	DBPass              string // empty allowed for local databases
	DBHost              string
	DBPort              string
	DBName              string
	JWTSecret           string // secret used to sign admin JWTs
	AccessTTLMin        int    // admin access token lifetime in minutes
	BcryptCost          int    // bcrypt cost for admin password hashing
	AdminEmail          string // bootstrap admin account (optional)
	AdminPassword       string // bootstrap admin password (optional)
	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string // ISO currency code for checkout sessions
	CheckoutSuccessURL  string // browser redirect after a paid checkout
	CheckoutCancelURL   string // browser redirect after an abandoned checkout
	PendingTTLMin       int    // minutes before a pending booking is swept
	SweepIntervalMin    int    // minutes between expiry sweep runs
	AMQPURL             string // RabbitMQ connection URL (empty disables the queue)
}

// Load reads configuration from the environment.  A .env file in the
// working directory is applied first when present; real environment
// variables always win.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:                 must("APP_ENV"),
		Port:                must("APP_PORT"),
		DBUser:              must("DB_USER"),
		DBPass:              os.Getenv("DB_PASS"),
		DBHost:              must("DB_HOST"),
		DBPort:              must("DB_PORT"),
		DBName:              must("DB_NAME"),
		JWTSecret:           must("JWT_SECRET"),
		AccessTTLMin:        mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:          envInt("BCRYPT_COST", 12),
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		StripeSecretKey:     must("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: must("STRIPE_WEBHOOK_SECRET"),
		Currency:            getenv("CURRENCY", "gbp"),
		CheckoutSuccessURL:  must("CHECKOUT_SUCCESS_URL"),
		CheckoutCancelURL:   must("CHECKOUT_CANCEL_URL"),
		PendingTTLMin:       envInt("PENDING_TTL_MIN", 60),
		SweepIntervalMin:    envInt("SWEEP_INTERVAL_MIN", 15),
		AMQPURL:             os.Getenv("AMQP_URL"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is must with an integer conversion.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
