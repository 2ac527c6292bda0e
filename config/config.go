// Package config loads UBPE's runtime configuration the way the rest of
// the pack does: viper with mapstructure tags, a small default search
// path, and environment override.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Config holds the tunables a binding layer passes into Fit/Encode, plus
// ambient fields the core itself does not interpret (LogLevel, CacheDir).
type Config struct {
	NTokens         int    `mapstructure:"nTokens"`
	AlphabetSize    int    `mapstructure:"alphabetSize"`
	NCandidates     int    `mapstructure:"nCandidates"`
	RearrangeTokens bool   `mapstructure:"rearrangeTokens"`
	TopN            int    `mapstructure:"topN"`
	LogLevel        string `mapstructure:"logLevel"`
	CacheDir        string `mapstructure:"cacheDir"`
}

// Load reads configuration from path, or (if path is empty) searches the
// current and parent directory for a file named "ubpe.yaml". Missing
// config files are not an error: defaults plus environment overrides
// apply on their own.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("..")
		v.SetConfigName("ubpe")
		v.SetConfigType("yaml")
	}

	v.SetDefault("nTokens", 0)
	v.SetDefault("alphabetSize", 0)
	v.SetDefault("nCandidates", 50)
	v.SetDefault("rearrangeTokens", true)
	v.SetDefault("topN", 1)
	v.SetDefault("logLevel", "info")
	v.SetDefault("cacheDir", "")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling config: %w", err)
	}
	return &cfg, nil
}
