package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port       string `mapstructure:"port"`
		AdminToken string `mapstructure:"admin_token"`
	} `mapstructure:"server"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	Game struct {
		MaxPlayers     int           `mapstructure:"max_players"`
		DeclareSeconds int           `mapstructure:"declare_seconds"`
		TickInterval   time.Duration `mapstructure:"tick_interval"`
		CodeTTL        time.Duration `mapstructure:"code_ttl"`
	} `mapstructure:"game"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var C Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.admin_token", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "samloc-dev-secret")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("game.max_players", 5)
	v.SetDefault("game.declare_seconds", 15)
	v.SetDefault("game.tick_interval", time.Second)
	v.SetDefault("game.code_ttl", 12*time.Hour)
	v.SetDefault("log.level", "info")
}

// Load reads the YAML file at path into C. A missing file is fine; defaults and
// SAMLOC_* environment variables still apply.
func Load(path string) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SAMLOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if c.Game.MaxPlayers < 2 {
		c.Game.MaxPlayers = 2
	}
	if c.Game.MaxPlayers > 5 {
		c.Game.MaxPlayers = 5
	}
	if c.Game.DeclareSeconds < 0 {
		c.Game.DeclareSeconds = 0
	}
	C = c
	return nil
}

// DeclareWindow is the Sâm declaration window as a duration.
func (c Config) DeclareWindow() time.Duration {
	return time.Duration(c.Game.DeclareSeconds) * time.Second
}
