package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Env holds the environment overrides. Empty fields leave the file
// config untouched.
type Env struct {
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	StoreDriver   string `mapstructure:"MINDWAVE_STORE"`
	LogLevel      string `mapstructure:"MINDWAVE_LOG_LEVEL"`
	LogFormat     string `mapstructure:"MINDWAVE_LOG_FORMAT"`
	ServerAddr    string `mapstructure:"MINDWAVE_ADDR"`
	UserID        string `mapstructure:"MINDWAVE_USER"`
}

var envKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"MINDWAVE_STORE",
	"MINDWAVE_LOG_LEVEL",
	"MINDWAVE_LOG_FORMAT",
	"MINDWAVE_ADDR",
	"MINDWAVE_USER",
}

// LoadEnv reads .env files (missing files are ignored) and then the
// process environment.
func LoadEnv(files ...string) Env {
	_ = godotenv.Load(files...)

	v := viper.New()
	v.AutomaticEnv()
	for _, k := range envKeys {
		v.SetDefault(k, "")
	}

	var env Env
	_ = v.Unmarshal(&env)
	return env
}

func (c *Config) ApplyEnv(e Env) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Store.DatabaseURL, e.DatabaseURL)
	set(&c.Store.RedisAddr, e.RedisAddr)
	set(&c.Store.RedisPassword, e.RedisPassword)
	set(&c.Store.Driver, e.StoreDriver)
	set(&c.Log.Level, e.LogLevel)
	set(&c.Log.Format, e.LogFormat)
	set(&c.Server.Addr, e.ServerAddr)
	set(&c.UserID, e.UserID)

	if e.DatabaseURL != "" && e.StoreDriver == "" {
		c.Store.Driver = "postgres"
	}
}
