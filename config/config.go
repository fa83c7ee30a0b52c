package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`
	TrustedProxies    string `mapstructure:"TRUSTED_PROXIES"` // CIDRs or IPs, comma separated

	// Database.
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"` // "mongo" or "memory"
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking rules.
	QuoteTTLMinutes int    `mapstructure:"QUOTE_TTL_MINUTES"`
	StudioTimezone  string `mapstructure:"STUDIO_TIMEZONE"`
	Currency        string `mapstructure:"CURRENCY"`

	// Stripe.
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL   string `mapstructure:"CHECKOUT_CANCEL_URL"`

	// Operator access.
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	AdminEmail         string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash  string `mapstructure:"ADMIN_PASSWORD_HASH"`
	AdminNotifyEmail   string `mapstructure:"ADMIN_NOTIFY_EMAIL"`
	AdminTokenTTLHours int    `mapstructure:"ADMIN_TOKEN_TTL_HOURS"`

	// Mail.
	MailTransport string `mapstructure:"MAIL_TRANSPORT"` // "log" or "smtp"
	MailFrom      string `mapstructure:"MAIL_FROM"`
	SMTPHost      string `mapstructure:"SMTP_HOST"`
	SMTPPort      int    `mapstructure:"SMTP_PORT"`
	SMTPUsername  string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string `mapstructure:"SMTP_PASSWORD"`

	// Cloudinary.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	OutboxPollSeconds int `mapstructure:"OUTBOX_POLL_SECONDS"`
}

var AppConfig Config

var defaults = map[string]any{
	"APP_PORT":              "8080",
	"ENV":                   "development",
	"LOG_LEVEL":             "info",
	"MAX_REQUESTS_PER_MIN":  60,
	"ALLOWED_ORIGINS":       "*",
	"TRUSTED_PROXIES":       "",
	"DATABASE_DRIVER":       "mongo",
	"DATABASE_URL":          "mongodb://localhost:27017/?replicaSet=rs0",
	"DATABASE_NAME":         "studiobook",
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PASSWORD":        "",
	"REDIS_CACHE_DB":        0,
	"REDIS_QUEUE_DB":        1,
	"QUOTE_TTL_MINUTES":     60,
	"STUDIO_TIMEZONE":       "Europe/London",
	"CURRENCY":              "gbp",
	"STRIPE_SECRET_KEY":     "",
	"STRIPE_WEBHOOK_SECRET": "",
	"CHECKOUT_SUCCESS_URL":  "http://localhost:3000/booking/success?session_id={CHECKOUT_SESSION_ID}",
	"CHECKOUT_CANCEL_URL":   "http://localhost:3000/booking/cancelled",
	"JWT_SECRET":            "",
	"ADMIN_EMAIL":           "",
	"ADMIN_PASSWORD_HASH":   "",
	"ADMIN_NOTIFY_EMAIL":    "",
	"ADMIN_TOKEN_TTL_HOURS": 12,
	"MAIL_TRANSPORT":        "log",
	"MAIL_FROM":             "bookings@localhost",
	"SMTP_HOST":             "",
	"SMTP_PORT":             587,
	"SMTP_USERNAME":         "",
	"SMTP_PASSWORD":         "",
	"CLOUDINARY_CLOUD_NAME": "",
	"CLOUDINARY_API_KEY":    "",
	"CLOUDINARY_API_SECRET": "",
	"OUTBOX_POLL_SECONDS":   2,
}

// Load reads config.yaml (from "." or "./config") and the environment, with
// environment variables taking precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig populates AppConfig or exits.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = *cfg
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	switch c.DatabaseDriver {
	case "mongo", "memory":
	default:
		return errors.New("DATABASE_DRIVER must be mongo or memory")
	}
	switch c.MailTransport {
	case "log", "smtp":
	default:
		return errors.New("MAIL_TRANSPORT must be log or smtp")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// Proxies splits TRUSTED_PROXIES on commas.
func (c *Config) Proxies() []string {
	return splitList(c.TrustedProxies)
}

func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
