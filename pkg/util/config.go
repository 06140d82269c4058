package util

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig loads config.{yaml,json,toml,...} from configDir into the global viper instance.
// a missing config file is not an error, the defaults set by the caller stay in effect.
func ReadConfig(configDir string) error {
	viper.SetConfigName("config")
	viper.AddConfigPath(configDir)
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
