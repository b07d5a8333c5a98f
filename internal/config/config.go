package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`

	// Dispute timing rules. The quiet period restarts on every accepted
	// bid; once it expires the closing window is sampled uniformly from
	// [RandomCloseMinSeconds, RandomCloseMaxSeconds] exactly once.
	QuietPeriodSeconds    int `mapstructure:"QUIET_PERIOD_SECONDS"`
	RandomCloseMinSeconds int `mapstructure:"RANDOM_CLOSE_MIN_SECONDS"`
	RandomCloseMaxSeconds int `mapstructure:"RANDOM_CLOSE_MAX_SECONDS"`
	ClientBufferSize      int `mapstructure:"CLIENT_BUFFER_SIZE"`
	RoomTokenTTLMinutes   int `mapstructure:"ROOM_TOKEN_TTL_MINUTES"`
}

func Load(path string) (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "portaldcp")
	viper.SetDefault("JWT_SECRET", "super-secret-key-change-me")
	viper.SetDefault("QUIET_PERIOD_SECONDS", 120)
	viper.SetDefault("RANDOM_CLOSE_MIN_SECONDS", 120)
	viper.SetDefault("RANDOM_CLOSE_MAX_SECONDS", 1800)
	viper.SetDefault("CLIENT_BUFFER_SIZE", 64)
	viper.SetDefault("ROOM_TOKEN_TTL_MINUTES", 480)

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// A config file is optional; env vars and defaults are enough.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) QuietPeriod() time.Duration {
	return time.Duration(c.QuietPeriodSeconds) * time.Second
}

func (c *Config) RandomCloseMin() time.Duration {
	return time.Duration(c.RandomCloseMinSeconds) * time.Second
}

func (c *Config) RandomCloseMax() time.Duration {
	return time.Duration(c.RandomCloseMaxSeconds) * time.Second
}

func (c *Config) RoomTokenTTL() time.Duration {
	return time.Duration(c.RoomTokenTTLMinutes) * time.Minute
}
