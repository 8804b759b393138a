package infra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "LIGHTRPC"

// InitConfig loads the YAML configuration at path into the global viper
// instance. An empty path searches ./configs and the working directory for
// config.yml. Environment variables prefixed with LIGHTRPC_ override file
// values, e.g. LIGHTRPC_HTTP_ADDR for http.addr.
func InitConfig(path string) error {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("infra: failed to read config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("service.name", "lightclient-rpc-service")
	viper.SetDefault("service.instance", "local")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("http.addr", "127.0.0.1:8545")
	viper.SetDefault("rpc.call_timeout_seconds", 30)
	viper.SetDefault("cache.backend", CacheBackendNone)
	viper.SetDefault("cache.size", 1024)
	viper.SetDefault("cache.ttl_seconds", 0)
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.key_prefix", "lightrpc:block")
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.client_id", "lightclient-rpc-service")
	viper.SetDefault("pprof.enabled", false)
}
