// Package utils provides small ambient helpers (config path resolution,
// filesystem checks) used by ngramctl.
package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver locates ngramctl's config file across platforms, falling
// back through a chain of writable directories.
type PathResolver struct {
	homeDir string
	dataDir string
}

// NewPathResolver determines the user's home and config directory.
func NewPathResolver() (*PathResolver, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}
	return &PathResolver{homeDir: homeDir, dataDir: getConfigDir(homeDir)}, nil
}

// getConfigDir returns the platform-appropriate config directory for
// ngramctl.
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "ngramctl")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "ngramctl")
		}
		return filepath.Join(homeDir, ".config", "ngramctl")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "ngramctl")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "ngramctl")
	default:
		return filepath.Join(homeDir, ".ngramctl")
	}
}

// GetConfigPath returns the full path for a config file, falling back
// through ~/.ngramctl and the OS temp dir when the preferred config
// directory isn't writable.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	configPath := filepath.Join(pr.dataDir, filename)
	if pr.ensureDir(pr.dataDir) {
		return configPath, nil
	}

	fallbackDirs := []string{
		filepath.Join(pr.homeDir, ".ngramctl"),
		filepath.Join(os.TempDir(), "ngramctl"),
	}
	for _, dir := range fallbackDirs {
		if pr.ensureDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("using temporary config file: %s", tempPath)
	return tempPath, nil
}

func (pr *PathResolver) ensureDir(dir string) bool {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Debugf("cannot create config directory %s: %v", dir, err)
		return false
	}
	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		log.Debugf("config directory %s is not writable: %v", dir, err)
		return false
	}
	os.Remove(testFile)
	return true
}

// GetConfigDir returns the resolved config directory.
func (pr *PathResolver) GetConfigDir() string { return pr.dataDir }
