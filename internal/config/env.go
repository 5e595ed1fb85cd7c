package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. IMGNAMER_REDIS_ADDR.
const EnvPrefix = "IMGNAMER"

// ApplyEnv overlays IMGNAMER_* environment variables onto cfg. Unset
// variables leave the current values alone, so flags parsed afterwards
// still win.
func ApplyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if v.IsSet("engines") {
		cfg.Engines = splitList(v.GetString("engines"))
	}
	if v.IsSet("sites") {
		cfg.Sites = splitList(v.GetString("sites"))
	}
	if v.IsSet("num") {
		cfg.Num = v.GetInt("num")
	}
	if v.IsSet("timeout") {
		cfg.Timeout = v.GetDuration("timeout")
	}
	if v.IsSet("render") {
		cfg.Render = v.GetBool("render")
	}
	if v.IsSet("user-agent") {
		cfg.UserAgent = v.GetString("user-agent")
	}
	if v.IsSet("redis-addr") {
		cfg.RedisAddr = v.GetString("redis-addr")
	}
	if v.IsSet("cache-ttl") {
		cfg.CacheTTL = v.GetDuration("cache-ttl")
	}
	if v.IsSet("rules") {
		cfg.RulesFile = v.GetString("rules")
	}
	if v.IsSet("log-level") {
		cfg.LogLevel = strings.ToLower(v.GetString("log-level"))
	}
	if v.IsSet("log-format") {
		cfg.LogFormat = strings.ToLower(v.GetString("log-format"))
	}
	if v.IsSet("metrics-file") {
		cfg.MetricsFile = v.GetString("metrics-file")
	}
}
