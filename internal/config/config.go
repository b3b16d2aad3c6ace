package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret        string
		AccessTTLMinutes int
		RefreshTTLHours  int
	}
	Lockout struct {
		MaxAttempts int
		LockMinutes int
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		URLTTLMinutes int
	}
	AWS struct {
		Profile string
	}
	Uploads struct {
		Dir     string
		BaseURL string
	}
	Seed struct {
		Enabled       bool
		AdminEmail    string
		AdminPassword string
	}
}

// Load reads configuration from environment variables and optional config files.
// Values in an adjacent .env file are applied first without overriding the
// process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WELLNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/wellness.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.accessttlminutes", 60)
	v.SetDefault("auth.refreshttlhours", 720)
	v.SetDefault("lockout.maxattempts", 5)
	v.SetDefault("lockout.lockminutes", 15)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "wellness-assets")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.urlttlminutes", 15)
	v.SetDefault("aws.profile", "")
	v.SetDefault("uploads.dir", "data/uploads")
	v.SetDefault("uploads.baseurl", "/uploads")
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.adminemail", "")
	v.SetDefault("seed.adminpassword", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
