package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// BaseSettingsDir is the directory holding the active settings file, or the
// project-local .realty directory when no file was loaded.
func BaseSettingsDir() string {
	// Check if config.path is explicitly set (for testing)
	if configPath := viper.GetString("config.path"); configPath != "" {
		return configPath
	}

	currentConfig := viper.ConfigFileUsed()
	if currentConfig == "" {
		return ".realty"
	}
	return filepath.Dir(currentConfig)
}

func BuildSettingsPath(target string) string {
	return filepath.Join(BaseSettingsDir(), target)
}
