package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/streamshift/adrestreamer/internal/types"
)

// pathManager centralizes the app's on-disk locations, following XDG.
type pathManager struct {
	isPortable bool
	rootDir    string // only meaningful in portable mode

	configDir string
	dataDir   string
	stateDir  string
	cacheDir  string

	logDir string
}

var (
	paths     pathManager
	initOnce  sync.Once
)

func initPaths() {
	initOnce.Do(func() {
		portableRoot := os.Getenv("ADRESTREAMER_ROOT")
		if portableRoot != "" {
			absRoot, err := filepath.Abs(portableRoot)
			if err != nil {
				panic(fmt.Sprintf("cannot resolve portable root: %v", err))
			}
			paths.isPortable = true
			paths.rootDir = absRoot
			paths.configDir = absRoot
			paths.stateDir = absRoot
			paths.dataDir = filepath.Join(absRoot, "data")
			paths.cacheDir = filepath.Join(absRoot, "cache")
			mustCreateDirectory(absRoot)
		} else {
			paths.dataDir = filepath.Join(xdg.DataHome, types.AppLocalDataDir)
			paths.stateDir = filepath.Join(xdg.StateHome, types.AppLocalDataDir)
			paths.cacheDir = filepath.Join(xdg.CacheHome, types.AppLocalDataDir)
			path, err := xdg.ConfigFile(types.AppLocalDataDir)
			if err != nil {
				panic(fmt.Sprintf("cannot resolve config dir: %v", err))
			}
			paths.configDir = path
		}
		paths.logDir = filepath.Join(paths.stateDir, "log")

		mustCreateDirectory(paths.configDir, paths.dataDir, paths.logDir)
	})
}

func mustCreateDirectory(dirs ...string) {
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				slog.Error("failed to create directory", "dir", dir, "error", err)
			}
		}
	}
}

// ConfigDir returns the directory holding the TOML config file.
func ConfigDir() string {
	initPaths()
	return paths.configDir
}

// DataDir returns the directory holding the ad library database and the
// classifier model.
func DataDir() string {
	initPaths()
	return paths.dataDir
}

// StateDir returns the directory holding logs and other run state.
func StateDir() string {
	initPaths()
	return paths.stateDir
}

// LogDir returns the directory log files are written under.
func LogDir() string {
	initPaths()
	return paths.logDir
}

// CacheDir returns the directory used for transient per-request scratch
// files (recording tees, ffmpeg temp files).
func CacheDir() string {
	initPaths()
	return paths.cacheDir
}
