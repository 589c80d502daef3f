// Package cache stores provider responses so repeated imports do not hit the
// upstream API again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Cache is a byte store keyed by request identity.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Config controls whether responses are cached and where.
type Config struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" yaml:"dir"`
}

// New returns a disk cache when enabled, otherwise a no-op cache.
func New(cfg Config) (Cache, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	return NewDisk(cfg.Dir)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Put(string, []byte) error         { return nil }

// Disk keeps zstd-compressed entries as files under a directory.
type Disk struct {
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
	mu  sync.Mutex
}

// NewDisk creates the cache directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if dir == "" {
		return nil, errors.New("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	return &Disk{dir: dir, enc: enc, dec: dec}, nil
}

// Get returns the cached value for key. A corrupt entry is reported as a miss
// and removed.
func (d *Disk) Get(key string) ([]byte, bool, error) {
	path := d.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	d.mu.Lock()
	out, err := d.dec.DecodeAll(raw, nil)
	d.mu.Unlock()
	if err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return out, true, nil
}

// Put writes value atomically under key.
func (d *Disk) Put(key string, value []byte) error {
	d.mu.Lock()
	compressed := d.enc.EncodeAll(value, nil)
	d.mu.Unlock()

	path := d.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache shard: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	if _, err := tmp.Write(compressed); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache entry: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Close releases the codec resources.
func (d *Disk) Close() error {
	d.dec.Close()
	return d.enc.Close()
}

func (d *Disk) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(d.dir, name[:2], name+".zst")
}
