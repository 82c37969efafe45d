package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/proofworks/proofpipe/internal/config"
)

func loadConfig(workDir string) (config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = filepath.Join(".proofpipe", "config.json")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := config.ValidateSettings(viper.AllSettings()); err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
