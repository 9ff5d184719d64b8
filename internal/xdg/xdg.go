// Package xdg locates the per-user directories the judge keeps files in.
package xdg

import (
	"os"
	"path/filepath"
	"strconv"
)

// Dirs holds base directories. An XDG_* variable is honoured only when it
// holds an absolute path.
type Dirs struct {
	Config  string
	Cache   string
	Runtime string
}

func Lookup() Dirs {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return Dirs{
		Config:  absEnv("XDG_CONFIG_HOME", filepath.Join(home, ".config")),
		Cache:   absEnv("XDG_CACHE_HOME", filepath.Join(home, ".cache")),
		Runtime: absEnv("XDG_RUNTIME_DIR", filepath.Join(os.TempDir(), "judge-"+strconv.Itoa(os.Getuid()))),
	}
}

// Join returns the app's own subdirectories.
func (d Dirs) Join(app string) Dirs {
	return Dirs{
		Config:  filepath.Join(d.Config, app),
		Cache:   filepath.Join(d.Cache, app),
		Runtime: filepath.Join(d.Runtime, app),
	}
}

func absEnv(key, fallback string) string {
	if v := os.Getenv(key); filepath.IsAbs(v) {
		return v
	}
	return fallback
}
