package testfiles_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/judge/internal/testfiles"
	"github.com/stretchr/testify/require"
)

func writeZst(t *testing.T, path string, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestResolvePlainFileInPlace(t *testing.T) {
	store := testfiles.New(t.TempDir(), 2, nil)
	got, err := store.Resolve("/data/1.in")
	require.NoError(t, err)
	require.Equal(t, "/data/1.in", got)
}

func TestResolveDecompressesOnce(t *testing.T) {
	dataDir := t.TempDir()
	cacheDir := t.TempDir()
	src := filepath.Join(dataDir, "1.in.zst")
	writeZst(t, src, "315941512 -119267504\n")

	store := testfiles.New(cacheDir, 2, nil)
	first, err := store.Resolve(src)
	require.NoError(t, err)
	require.Equal(t, cacheDir, filepath.Dir(first))

	body, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, "315941512 -119267504\n", string(body))

	second, err := store.Resolve(src)
	require.NoError(t, err)
	require.Equal(t, first, second)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestResolveRejectsCorruptArchive(t *testing.T) {
	dataDir := t.TempDir()
	src := filepath.Join(dataDir, "bad.ans.zst")
	require.NoError(t, os.WriteFile(src, []byte("definitely not zstd"), 0644))

	store := testfiles.New(t.TempDir(), 1, nil)
	_, err := store.Resolve(src)
	require.Error(t, err)
	_, err = store.Resolve(src)
	require.Error(t, err)

	_, err = store.Resolve(filepath.Join(dataDir, "missing.zst"))
	require.Error(t, err)
}

func TestPrefetch(t *testing.T) {
	dataDir := t.TempDir()
	var paths []string
	for _, name := range []string{"1.in.zst", "1.ans.zst", "2.in.zst", "2.ans"} {
		p := filepath.Join(dataDir, name)
		if filepath.Ext(name) == ".zst" {
			writeZst(t, p, name)
		} else {
			require.NoError(t, os.WriteFile(p, []byte(name), 0644))
		}
		paths = append(paths, p)
	}

	cacheDir := t.TempDir()
	store := testfiles.New(cacheDir, 2, nil)
	require.NoError(t, store.Prefetch(context.Background(), paths))

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Error(t, store.Prefetch(context.Background(), []string{filepath.Join(dataDir, "nope.zst")}))
}
