package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/taskore/taskore/modules/queue"
	"github.com/taskore/taskore/modules/storage"
)

// Config aggregates the per-module settings of the task pipeline.
type Config struct {
	Queue   queue.Config   `mapstructure:"queue"`
	Storage storage.Config `mapstructure:"storage"`
}

// Load reads the configuration file at path and unmarshals it into Config.
// Environment variables prefixed with TASKORE_ override file values, with
// dots mapped to underscores (queue.host -> TASKORE_QUEUE_HOST).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("TASKORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("queue.host", "localhost")
	v.SetDefault("queue.port", "6379")
	v.SetDefault("queue.db", 0)
	v.SetDefault("queue.prefix", "taskore:")
	v.SetDefault("storage.host", "localhost")
	v.SetDefault("storage.port", "5432")
	v.SetDefault("storage.sslmode", "disable")
}
