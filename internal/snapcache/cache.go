// Package snapcache stores reconstructed graphs on disk, keyed by the
// content hash of the input and the backend that parsed it.
package snapcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"irgraph/internal/irerr"
	"irgraph/internal/llgraph"
)

// Bump when Payload changes shape; older entries are then ignored.
const schemaVersion uint16 = 1

// Key identifies a cache entry.
type Key [sha256.Size]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// KeyFor hashes the backend name and the raw input.
func KeyFor(backend string, data []byte) Key {
	h := sha256.New()
	fmt.Fprintf(h, "irgraph/%d/%s\x00", schemaVersion, backend)
	h.Write(data)
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// Cache is a directory of msgpack snapshots. A nil *Cache is a valid
// disabled cache. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open returns a cache rooted at dir. An empty dir selects
// $XDG_CACHE_HOME/irgraph, falling back to ~/.cache/irgraph.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "irgraph")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, irerr.Wrap(irerr.PhaseCache, irerr.KindInvalidInput, err, "create cache dir")
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(k Key) string {
	return filepath.Join(c.dir, "graphs", k.String()+".mp")
}

// Put stores m under k. The write goes through a temp file and a rename so
// readers never see a partial entry.
func (c *Cache) Put(k Key, m *llgraph.Module) (err error) {
	if c == nil || m == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(k)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(Encode(m)); err != nil {
		_ = f.Close()
		return irerr.Wrap(irerr.PhaseCache, irerr.KindInternal, err, "encode snapshot")
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Get loads the graph stored under k. A missing entry or one written by
// another schema version reports false with no error.
func (c *Cache) Get(k Key) (*llgraph.Module, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(k))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, false, irerr.Wrap(irerr.PhaseCache, irerr.KindInvalidInput, err, "decode snapshot "+k.String())
	}
	if p.Schema != schemaVersion {
		return nil, false, nil
	}
	return Decode(&p), true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
