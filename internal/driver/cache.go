package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/format"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

// Current schema version - increment when CacheEntry format or formatter output changes
const cacheSchemaVersion uint16 = 1

// CacheKey identifies one formatting job: content, language and options.
type CacheKey [32]byte

// DiskCache хранит отформатированный вывод по CacheKey на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CacheEntry is the stored outcome of formatting one file.
type CacheEntry struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Output      []byte
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic without its file id, which differs per run.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		var err error
		base, err = os.UserCacheDir()
		if err != nil {
			return nil, err
		}
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	return c.dir
}

// KeyFor hashes everything the formatted output depends on.
func KeyFor(content []byte, lang cst.Language, opt format.Options) CacheKey {
	h := sha256.New()
	var hdr [8]byte
	binary.LittleEndian.PutUint16(hdr[0:], cacheSchemaVersion)
	hdr[2] = byte(lang)
	hdr[3] = byte(opt.Style)
	width, err := safecast.Conv[uint16](opt.IndentWidth)
	if err != nil {
		width = 0
	}
	binary.LittleEndian.PutUint16(hdr[4:], width)
	if opt.UseTabs {
		hdr[6] = 1
	}
	_, _ = h.Write(hdr[:])
	_, _ = h.Write(content)
	var out CacheKey
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "fmt", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes an entry to the disk cache.
func (c *DiskCache) Put(key CacheKey, entry *CacheEntry) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	entry.Schema = cacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(entry); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes an entry. Entries of another schema are misses.
func (c *DiskCache) Get(key CacheKey) (*CacheEntry, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var entry CacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false, err
	}
	if entry.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &entry, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
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

func toCached(ds []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, 0, len(ds))
	for _, d := range ds {
		out = append(out, CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		})
	}
	return out
}

func fromCached(cs []CachedDiagnostic, file source.FileID) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(cs))
	for _, c := range cs {
		out = append(out, diag.New(diag.Severity(c.Severity), diag.Code(c.Code),
			source.Span{File: file, Start: c.Start, End: c.End}, c.Message))
	}
	return out
}
