package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appName   = "restpad"
	envConfig = "RESTPAD_CONFIG_DIR"
)

// Dir returns the directory holding settings, bindings and logs.
// RESTPAD_CONFIG_DIR wins over the platform user config directory.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(envConfig)); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, appName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "."+appName)
	}
	return "." + appName
}

// LogPath resolves the log file location, defaulting into Dir.
func (l LogSettings) LogPath() string {
	if path := strings.TrimSpace(l.File); path != "" {
		return path
	}
	return filepath.Join(Dir(), appName+".log")
}
