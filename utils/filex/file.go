package filex

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/streamshift/adrestreamer/internal/configs"
	"github.com/streamshift/adrestreamer/utils/app"
)

// LoadConfig loads the TOML config file from the app's config directory,
// writing the embedded default template there first on a fresh install.
func LoadConfig() {
	configDir := app.ConfigDir()

	resolved := configs.ResolveConfigFile(configDir)
	if !resolved.Exists {
		if err := CopyFileFromEmbed("embed/adrestreamer.toml", resolved.Path); err != nil {
			panic(fmt.Sprintf("fatal: failed to write default config: %v", err))
		}
	}

	cfg, err := configs.NewConfigFromTomlFile(resolved.Path)
	if err != nil {
		panic(fmt.Sprintf("fatal: failed to load configuration: %v", err))
	}
	configs.AppConfig = cfg
}

func FileOrDirExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

func CopyFileFromEmbed(src, dst string) error {
	var (
		err   error
		srcfd fs.File
		dstfd *os.File
	)

	if srcfd, err = embedDir.Open(src); err != nil {
		return err
	}
	defer srcfd.Close()

	if dstfd, err = os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0766); err != nil {
		return err
	}
	defer dstfd.Close()

	if _, err = io.Copy(dstfd, srcfd); err != nil {
		return err
	}
	return nil
}

func CopyDirFromEmbed(src, dst string) error {
	var (
		err error
		fds []fs.DirEntry
	)

	if err = os.MkdirAll(dst, 0766); err != nil {
		return err
	}
	if fds, err = embedDir.ReadDir(src); err != nil {
		return err
	}
	for _, fd := range fds {
		srcfp := filepath.Join(src, fd.Name())
		dstfp := filepath.Join(dst, fd.Name())

		if fd.IsDir() {
			if err = CopyDirFromEmbed(srcfp, dstfp); err != nil {
				return err
			}
		} else {
			if err = CopyFileFromEmbed(srcfp, dstfp); err != nil {
				return err
			}
		}
	}
	return nil
}

func FileURL(filepath string) string {
	return "file://" + filepath
}
