package xdg_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/programme-lv/judge/internal/xdg"
	"github.com/stretchr/testify/assert"
)

func TestLookupUsesVariables(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_CACHE_HOME", "/cache")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	assert.Equal(t, xdg.Dirs{
		Config:  "/cfg/judge",
		Cache:   "/cache/judge",
		Runtime: "/run/user/1000/judge",
	}, xdg.Lookup().Join("judge"))
}

func TestLookupFallsBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "relative/cache")
	t.Setenv("XDG_RUNTIME_DIR", "")

	dirs := xdg.Lookup()
	assert.Equal(t, filepath.Join(home, ".config"), dirs.Config)
	assert.Equal(t, filepath.Join(home, ".cache"), dirs.Cache)
	assert.Equal(t, filepath.Join(os.TempDir(), "judge-"+strconv.Itoa(os.Getuid())), dirs.Runtime)
}
