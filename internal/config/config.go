// Package config reads the optional dllgather.yaml next to the
// inspected binary or in the working directory.
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/fileutil"
)

const ConfigFileName = "dllgather"

// Config carries the user-provided tweaks to a run. Everything is
// optional, an absent config file yields the zero value.
type Config struct {
	// Additional library names to treat as always present. This is
	// where OS-inbuilt libraries the static list misses belong.
	KnownDLLs []string `mapstructure:"known-dlls"`

	// Directories probed right after the binary's own directory,
	// before any OS directory.
	SearchDirs []string `mapstructure:"search-dirs"`

	// Objdump overrides which objdump binary is invoked.
	Objdump string `mapstructure:"objdump"`
}

// Find looks for a dllgather.yaml in the specified directories, in
// order, and parses the first one found. No config file is not an
// error.
func Find(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if errors.As(err, &notFoundErr) {
			return &Config{}, nil
		}
		return nil, errors.WithStack(err)
	}
	log.Debugf("Using config file %s", v.ConfigFileUsed())

	config := &Config{}
	err = v.Unmarshal(config)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, dir := range config.SearchDirs {
		if !fileutil.IsDir(dir) {
			log.Warnf("Configured search directory %s does not exist", dir)
		}
	}

	return config, nil
}
