package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string
	// AllowedOrigins is the CORS allow list, comma separated in the environment.
	AllowedOrigins []string
	Log            LogConfig
	Store          StoreConfig
	NATS           NATSConfig
	Engine         EngineConfig
	Auth           AuthConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type StoreConfig struct {
	// Driver is memory, sqlite, postgres or redis.
	Driver      string
	DatabaseURL string
	RedisURL    string
}

type NATSConfig struct {
	// URL empty disables the JetStream publisher.
	URL    string
	Stream string
}

type EngineConfig struct {
	SchedulerInterval     time.Duration
	ActivationQuorum      int
	IntentMaxAttempts     int
	WalletStartingBalance int64
}

type OAuthProvider struct {
	Key         string
	Secret      string
	CallbackURL string
}

type AuthConfig struct {
	SessionLifetime time.Duration
	Discord         OAuthProvider
	Google          OAuthProvider
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("DATABASE_URL", "bracket.db?_journal_mode=WAL")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_STREAM", "BRACKET_EVENTS")
	v.SetDefault("SCHEDULER_INTERVAL", 30*time.Second)
	v.SetDefault("ACTIVATION_QUORUM", 4)
	v.SetDefault("INTENT_MAX_ATTEMPTS", 3)
	v.SetDefault("WALLET_STARTING_BALANCE", 1000)
	v.SetDefault("SESSION_LIFETIME", 24*time.Hour)
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Store: StoreConfig{
			Driver:      v.GetString("STORE_DRIVER"),
			DatabaseURL: v.GetString("DATABASE_URL"),
			RedisURL:    v.GetString("REDIS_URL"),
		},
		NATS: NATSConfig{
			URL:    v.GetString("NATS_URL"),
			Stream: v.GetString("NATS_STREAM"),
		},
		Engine: EngineConfig{
			SchedulerInterval:     v.GetDuration("SCHEDULER_INTERVAL"),
			ActivationQuorum:      v.GetInt("ACTIVATION_QUORUM"),
			IntentMaxAttempts:     v.GetInt("INTENT_MAX_ATTEMPTS"),
			WalletStartingBalance: v.GetInt64("WALLET_STARTING_BALANCE"),
		},
		Auth: AuthConfig{
			SessionLifetime: v.GetDuration("SESSION_LIFETIME"),
			Discord: OAuthProvider{
				Key:         v.GetString("DISCORD_KEY"),
				Secret:      v.GetString("DISCORD_SECRET"),
				CallbackURL: v.GetString("DISCORD_CALLBACK_URL"),
			},
			Google: OAuthProvider{
				Key:         v.GetString("GOOGLE_KEY"),
				Secret:      v.GetString("GOOGLE_SECRET"),
				CallbackURL: v.GetString("GOOGLE_CALLBACK_URL"),
			},
		},
	}
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
