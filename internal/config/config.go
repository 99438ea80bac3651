package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	RealtimeChannelBase string
	VAPIDPublicKey      string
	VAPIDPrivateKey     string
	PushTimeout         time.Duration
	TrendingCacheTTL    time.Duration
	TrendingWindow      time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BARAKAH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Barakah API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("realtime.channel_base", "barakah")
	v.SetDefault("push.timeout", "10s")
	v.SetDefault("trending.cache_ttl", "1m")
	v.SetDefault("trending.window", "48h")

	pushTimeout, err := parseDuration(v, "push.timeout", 10*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid push timeout: %w", err)
	}

	cacheTTL, err := parseDuration(v, "trending.cache_ttl", time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid trending cache ttl: %w", err)
	}

	window, err := parseDuration(v, "trending.window", 48*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid trending window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		RealtimeChannelBase: v.GetString("realtime.channel_base"),
		VAPIDPublicKey:      v.GetString("vapid.public_key"),
		VAPIDPrivateKey:     v.GetString("vapid.private_key"),
		PushTimeout:         pushTimeout,
		TrendingCacheTTL:    cacheTTL,
		TrendingWindow:      window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
