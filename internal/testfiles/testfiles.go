// Package testfiles turns catalog case file paths into readable plain files.
// Plain files are used in place. Files ending in ".zst" are decompressed once
// into a cache directory and shared by every later lookup.
package testfiles

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

const compressedExt = ".zst"

type Store struct {
	cacheDir    string
	entries     *xsync.MapOf[string, *entry]
	parallelism int
	logger      *slog.Logger
}

type entry struct {
	once sync.Once
	path string
	err  error
}

// New creates a store decompressing into cacheDir. Prefetch runs at most
// parallelism decompressions at once.
func New(cacheDir string, parallelism int, logger *slog.Logger) *Store {
	if parallelism < 1 {
		parallelism = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		cacheDir:    cacheDir,
		entries:     xsync.NewMapOf[string, *entry](),
		parallelism: parallelism,
		logger:      logger,
	}
}

// Resolve returns a path whose content is the plain content of path.
func (s *Store) Resolve(path string) (string, error) {
	if !strings.HasSuffix(path, compressedExt) {
		return path, nil
	}

	key, err := cacheKey(path)
	if err != nil {
		return "", err
	}

	e, _ := s.entries.LoadOrCompute(key, func() *entry { return &entry{} })
	e.once.Do(func() {
		e.path, e.err = s.decompress(path, key)
	})
	if e.err != nil {
		// let a later call retry
		s.entries.Compute(key, func(old *entry, loaded bool) (*entry, bool) {
			return old, !loaded || old == e
		})
		return "", e.err
	}
	return e.path, nil
}

// Prefetch resolves every path ahead of time. It stops at the first error.
func (s *Store) Prefetch(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for _, p := range paths {
		if !strings.HasSuffix(p, compressedExt) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.Resolve(p)
			return err
		})
	}
	return g.Wait()
}

// cacheKey changes whenever the compressed file is replaced.
func cacheKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	h := sha256.New()
	io.WriteString(h, abs)
	io.WriteString(h, "\x00"+strconv.FormatInt(info.Size(), 10))
	io.WriteString(h, "\x00"+strconv.FormatInt(info.ModTime().UnixNano(), 10))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Store) decompress(path string, key string) (string, error) {
	target := filepath.Join(s.cacheDir, key)
	if _, err := os.Stat(target); err == nil {
		return target, nil
	}

	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	dec, err := zstd.NewReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	tmp, err := os.CreateTemp(s.cacheDir, key+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, dec)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to decompress %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to move %s into cache: %w", path, err)
	}
	s.logger.Debug("decompressed case file", "src", path, "dst", target, "bytes", n)
	return target, nil
}
