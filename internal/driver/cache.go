package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"lintel/internal/diag"
	"lintel/internal/source"
)

// Current schema version - increment when CachePayload format changes
const resultCacheSchemaVersion uint16 = 1

// Key identifies a cached result.
type Key [32]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// KeyInput lists everything a file's offenses depend on.
type KeyInput struct {
	Content     [32]byte // sha256 of the normalized file content
	Config      string   // config.Config.Fingerprint
	Cops        []string // IDs of the cops that ran, in registration order
	Version     string
	MaxOffenses int
}

// Key hashes the input. Fields are length-prefixed so that adjacent values
// cannot run into each other.
func (in KeyInput) Key() Key {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(strconv.Itoa(len(s))))
		h.Write([]byte{':'})
		h.Write([]byte(s))
	}
	h.Write(in.Content[:])
	write(in.Config)
	write(in.Version)
	write(strconv.Itoa(in.MaxOffenses))
	for _, id := range in.Cops {
		write(id)
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// ResultCache хранит результаты анализа файлов на диске.
// Thread-safe for concurrent access.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is the stored result of one file.
type CachePayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Offenses   []diag.Offense
	Truncated  bool
	Suppressed int
	Syntax     bool // the file had syntax errors
}

// OpenResultCache initializes and returns a result cache at the standard location.
func OpenResultCache(app string) (*ResultCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenResultCacheAt(filepath.Join(base, app))
}

// OpenResultCacheAt opens a result cache rooted at dir.
func OpenResultCacheAt(dir string) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *ResultCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *ResultCache) pathFor(key Key) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не держать всё в одном каталоге
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *ResultCache) Put(key Key, payload *CachePayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = resultCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload. Entries with another schema version
// are reported as misses.
func (c *ResultCache) Get(key Key, out *CachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if out.Schema != resultCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.dir, "results")
	old := dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// rebind points the spans of cached offenses at the file of the current run.
func rebind(offs []diag.Offense, file source.FileID) {
	for i := range offs {
		offs[i].Primary.File = file
		for j := range offs[i].Notes {
			offs[i].Notes[j].Span.File = file
		}
	}
}
