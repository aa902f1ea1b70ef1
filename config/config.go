package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port        string
	CORSOrigins []string
	StoreDriver string
	MongoURI    string
	DBName      string
	DBUsername  string
	DBPass      string
	DBHost      string
	DBAppName   string

	JWTSecret string
	TokenTTL  time.Duration

	CatalogURL string

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	MaxUploadMB   int64

	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	MailFrom       string
	ModeratorEmail string
}

// Load reads configuration from the environment. Call godotenv first if a
// .env file should be honoured.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_DB", "libraryDB")
	v.SetDefault("DB_HOST", "cluster0.rfkbq1n.mongodb.net")
	v.SetDefault("DB_APP_NAME", "Cluster0")
	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("CATALOG_URL", "https://www.googleapis.com/books/v1/volumes")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("MAX_UPLOAD_MB", 5)
	v.SetDefault("SMTP_PORT", 587)

	cfg := &Config{
		Port:           v.GetString("PORT"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		MongoURI:       v.GetString("MONGODB_URI"),
		DBName:         v.GetString("MONGODB_DB"),
		DBUsername:     v.GetString("DB_USERNAME"),
		DBPass:         v.GetString("DB_PASS"),
		DBHost:         v.GetString("DB_HOST"),
		DBAppName:      v.GetString("DB_APP_NAME"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		CatalogURL:     v.GetString("CATALOG_URL"),
		S3Bucket:       v.GetString("AWS_S3_BUCKET"),
		S3Region:       v.GetString("AWS_REGION"),
		S3AccessKeyID:  v.GetString("AWS_ACCESS_KEY_ID"),
		S3SecretKey:    v.GetString("AWS_SECRET_ACCESS_KEY"),
		MaxUploadMB:    v.GetInt64("MAX_UPLOAD_MB"),
		SMTPHost:       v.GetString("SMTP_HOST"),
		SMTPPort:       v.GetInt("SMTP_PORT"),
		SMTPUsername:   v.GetString("SMTP_USERNAME"),
		SMTPPassword:   v.GetString("SMTP_PASSWORD"),
		MailFrom:       v.GetString("MAIL_FROM"),
		ModeratorEmail: v.GetString("MODERATOR_EMAIL"),
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 5
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = cfg.assembleURI()
	}
	return cfg, nil
}

// assembleURI builds an Atlas SRV connection string from DB_USERNAME and
// DB_PASS. It returns "" when the credentials are not set.
func (c *Config) assembleURI() string {
	if c.DBUsername == "" || c.DBPass == "" {
		return ""
	}
	u := url.URL{
		Scheme: "mongodb+srv",
		User:   url.UserPassword(c.DBUsername, c.DBPass),
		Host:   c.DBHost,
		Path:   "/",
	}
	if c.DBAppName != "" {
		u.RawQuery = url.Values{"appName": {c.DBAppName}}.Encode()
	}
	return u.String()
}

// Validate reports configuration that would keep the server from starting.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI or DB_USERNAME/DB_PASS is required"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MailEnabled reports whether moderator notifications can be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.ModeratorEmail != ""
}
