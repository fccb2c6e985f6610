package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"shopify-app-backend/internal/domain"
)

// Config is the process-wide configuration, built once at startup
type Config struct {
	LogLevel string
	Server   ServerConfig
	Shopify  ShopifyConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port int
}

// ShopifyConfig holds the app credentials and the URLs used in the OAuth flow
type ShopifyConfig struct {
	APIKey     string
	APISecret  string
	APIVersion string
	Scopes     []string
	// APIURL is the public base URL of this backend
	APIURL string
	// AppURL is the client application the callback redirects to
	AppURL   string
	Timeout  time.Duration
	Retries  int
	StateTTL time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the Postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type MongoConfig struct {
	URI      string
	Database string
}

// Enabled reports whether the webhook audit log is configured
func (c MongoConfig) Enabled() bool { return c.URI != "" }

type RedisConfig struct {
	URL string
}

// Enabled reports whether the OAuth state store is configured
func (c RedisConfig) Enabled() bool { return c.URL != "" }

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads .env (when present) and the environment
func Load() (Config, bool, error) {
	envLoaded := godotenv.Load() == nil
	cfg, err := load(viper.New())
	return cfg, envLoaded, err
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("shopify_api_version", "unstable")
	v.SetDefault("shopify_api_scopes", "read_products,read_orders")
	v.SetDefault("shopify_api_url", "http://localhost:8080")
	v.SetDefault("shopify_app_url", "http://localhost:3000")
	v.SetDefault("shopify_api_timeout", "15s")
	v.SetDefault("shopify_api_retries", 3)
	v.SetDefault("oauth_state_ttl", "10m")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db", "shopify")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("mongodb_uri", "")
	v.SetDefault("mongodb_database", "shopify")
	v.SetDefault("redis_url", "")
	v.SetDefault("cors_allowed_origins", "")

	port := v.GetInt("port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT: %d", port)
	}

	apiKey := strings.TrimSpace(v.GetString("shopify_api_key"))
	apiSecret := strings.TrimSpace(v.GetString("shopify_api_secret"))
	if apiKey == "" || apiSecret == "" {
		return Config{}, fmt.Errorf("SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required")
	}

	apiURL := strings.TrimRight(strings.TrimSpace(v.GetString("shopify_api_url")), "/")
	if _, err := url.ParseRequestURI(apiURL); err != nil {
		return Config{}, fmt.Errorf("invalid SHOPIFY_API_URL: %w", err)
	}
	appURL := strings.TrimRight(strings.TrimSpace(v.GetString("shopify_app_url")), "/")

	timeout := v.GetDuration("shopify_api_timeout")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := v.GetInt("shopify_api_retries")
	if retries < 0 {
		retries = 0
	}
	stateTTL := v.GetDuration("oauth_state_ttl")
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}

	origins := splitList(v.GetString("cors_allowed_origins"))
	if len(origins) == 0 {
		origins = []string{apiURL, appURL}
	}

	return Config{
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		Server:   ServerConfig{Port: port},
		Shopify: ShopifyConfig{
			APIKey:     apiKey,
			APISecret:  apiSecret,
			APIVersion: strings.TrimSpace(v.GetString("shopify_api_version")),
			Scopes:     domain.SplitScopes(v.GetString("shopify_api_scopes")),
			APIURL:     apiURL,
			AppURL:     appURL,
			Timeout:    timeout,
			Retries:    retries,
			StateTTL:   stateTTL,
		},
		Database: DatabaseConfig{
			Host:     strings.TrimSpace(v.GetString("postgres_host")),
			Port:     v.GetInt("postgres_port"),
			User:     strings.TrimSpace(v.GetString("postgres_user")),
			Password: v.GetString("postgres_password"),
			Name:     strings.TrimSpace(v.GetString("postgres_db")),
			SSLMode:  strings.TrimSpace(v.GetString("postgres_sslmode")),
		},
		Mongo: MongoConfig{
			URI:      strings.TrimSpace(v.GetString("mongodb_uri")),
			Database: strings.TrimSpace(v.GetString("mongodb_database")),
		},
		Redis: RedisConfig{URL: strings.TrimSpace(v.GetString("redis_url"))},
		CORS:  CORSConfig{AllowedOrigins: origins},
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
