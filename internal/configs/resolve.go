package configs

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the TOML config file's fixed name inside the app's
// config directory.
const ConfigFileName = "adrestreamer.toml"

// ResolvedConfig describes the config file a run will load.
type ResolvedConfig struct {
	Path   string
	Exists bool
}

// ResolveConfigFile locates the TOML config file inside configDir,
// reporting whether it already exists (a fresh install gets the embedded
// default template copied to this path).
func ResolveConfigFile(configDir string) ResolvedConfig {
	path := filepath.Join(configDir, ConfigFileName)
	_, err := os.Stat(path)
	return ResolvedConfig{Path: path, Exists: err == nil}
}
