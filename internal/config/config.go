// Package config loads runtime configuration from environment variables and
// an optional stockade.yaml, with live reload of evaluation tunables.
package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	HTTPAddr string
	DBDriver string
	DBDSN    string
	LogLevel string

	strictVariables atomic.Bool
}

// StrictVariables reports whether a formula referencing an unbound variable
// is treated as an evaluation error instead of silently reading zero. The
// zero default matches historical estimator behavior; strict mode exists to
// surface configuration bugs. Reloadable at runtime via the config file.
func (c *Config) StrictVariables() bool {
	return c.strictVariables.Load()
}

// SetStrictVariables overrides the strict-variable policy, mainly for tests.
func (c *Config) SetStrictVariables(strict bool) {
	c.strictVariables.Store(strict)
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOCKADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "stockade.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("formula.strict_variables", false)

	v.SetConfigName("stockade")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/stockade")

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg := &Config{
		HTTPAddr: v.GetString("http.addr"),
		DBDriver: v.GetString("db.driver"),
		DBDSN:    v.GetString("db.dsn"),
		LogLevel: v.GetString("log.level"),
	}
	cfg.strictVariables.Store(v.GetBool("formula.strict_variables"))

	if fileLoaded {
		v.OnConfigChange(func(fsnotify.Event) {
			cfg.strictVariables.Store(v.GetBool("formula.strict_variables"))
		})
		v.WatchConfig()
	}

	return cfg, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
