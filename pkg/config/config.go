/*
Package config manages TOML configuration for ngramkit's engine defaults,
IPC server, and CLI.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure.
type Config struct {
	StringFuzzy   EngineConfig `toml:"string_fuzzy"`
	StringPredict EngineConfig `toml:"string_predict"`
	TokenFuzzy    EngineConfig `toml:"token_fuzzy"`
	TokenPredict  EngineConfig `toml:"token_predict"`
	Server        ServerConfig `toml:"server"`
	CLI           CliConfig    `toml:"cli"`
}

// EngineConfig mirrors the shared constructor parameters from spec.md §6.
type EngineConfig struct {
	NGramMin      int  `toml:"n_gram_min"`
	NGramMax      int  `toml:"n_gram_max"`
	MaxResults    int  `toml:"max_results"`
	CaseSensitive bool `toml:"case_sensitive"`
}

// ServerConfig holds IPC server options.
type ServerConfig struct {
	MaxLimit int `toml:"max_limit"`
}

// CliConfig holds CLI interface options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// DefaultConfig returns a Config with the spec.md §6 engine defaults.
func DefaultConfig() *Config {
	return &Config{
		StringFuzzy:   EngineConfig{NGramMin: 3, NGramMax: 5, MaxResults: 10, CaseSensitive: false},
		StringPredict: EngineConfig{NGramMin: 1, NGramMax: 25, MaxResults: 10, CaseSensitive: true},
		TokenFuzzy:    EngineConfig{NGramMin: 3, NGramMax: 5, MaxResults: 10},
		TokenPredict:  EngineConfig{NGramMin: 3, NGramMax: 25, MaxResults: 10},
		Server:        ServerConfig{MaxLimit: 64},
		CLI:           CliConfig{DefaultLimit: 10},
	}
}

// LoadConfig loads from a TOML file, falling back to defaults for any
// section the file doesn't set.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return DefaultConfig(), err
	}
	return config, nil
}

// SaveConfig saves a Config into a TOML file.
func SaveConfig(config *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		log.Errorf("Failed to create config file: %v", err)
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(config)
}

// InitConfig loads config from file, creating a default one if missing.
func InitConfig(configPath string) (*Config, error) {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", dir, err)
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}
