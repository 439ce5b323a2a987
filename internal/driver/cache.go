package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"datemark/internal/isodate"
	"datemark/internal/source"
)

// Bump when the payload format changes; mismatched entries are ignored.
const scanCacheSchemaVersion uint16 = 1

// ScanCache stores per-file scan results on disk, keyed by content hash and
// scan configuration. Thread-safe for concurrent access.
type ScanCache struct {
	mu  sync.RWMutex
	dir string
}

type rewriteRecord struct {
	Start    uint32
	End      uint32
	LitStart uint32
	LitEnd   uint32
	Literal  string
	Offset   float64
	NewText  string
}

type scanPayload struct {
	Schema   uint16
	Rewrites []rewriteRecord
}

// OpenScanCache initializes a disk cache at the standard location
// ($XDG_CACHE_HOME/<app>, falling back to ~/.cache/<app>).
func OpenScanCache(app string) (*ScanCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ScanCache{dir: dir}, nil
}

// OpenScanCacheAt initializes a disk cache rooted at an explicit directory.
func OpenScanCacheAt(dir string) (*ScanCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ScanCache{dir: dir}, nil
}

// key mixes the file content hash with every option that influences the
// scan result, so a config change invalidates naturally.
func (c *ScanCache) key(file *source.File, opts Options) [32]byte {
	h := sha256.New()
	h.Write(file.Hash[:])
	fmt.Fprintf(h, "|%d|%s|%s|%s", scanCacheSchemaVersion, opts.Marker, opts.Label, opts.Template)
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *ScanCache) pathFor(key [32]byte) string {
	// "scans" subdirectory keeps the cache root readable.
	return filepath.Join(c.dir, "scans", hex.EncodeToString(key[:])+".mp")
}

// Lookup populates result from a cached payload. Returns false on miss,
// schema mismatch, or any read error (a damaged entry is just a miss).
func (c *ScanCache) Lookup(file *source.File, opts Options, result *FileResult) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(c.key(file, opts)))
	if err != nil {
		return false
	}
	defer f.Close()

	var payload scanPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false
	}
	if payload.Schema != scanCacheSchemaVersion {
		return false
	}

	for _, r := range payload.Rewrites {
		result.Rewrites = append(result.Rewrites, Rewrite{
			Span:    source.Span{File: file.ID, Start: r.Start, End: r.End},
			LitSpan: source.Span{File: file.ID, Start: r.LitStart, End: r.LitEnd},
			Literal: r.Literal,
			Offset:  isodate.Offset(r.Offset),
			NewText: r.NewText,
		})
	}
	return true
}

// Store serializes a scan result and writes it atomically. Only clean scans
// are cached: a file with diagnostics must re-report them with full context
// on the next run.
func (c *ScanCache) Store(file *source.File, opts Options, result *FileResult) {
	if c == nil || result.Bag.Len() > 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := scanPayload{Schema: scanCacheSchemaVersion}
	for _, r := range result.Rewrites {
		payload.Rewrites = append(payload.Rewrites, rewriteRecord{
			Start:    r.Span.Start,
			End:      r.Span.End,
			LitStart: r.LitSpan.Start,
			LitEnd:   r.LitSpan.End,
			Literal:  r.Literal,
			Offset:   float64(r.Offset),
			NewText:  r.NewText,
		})
	}
	p := c.pathFor(c.key(file, opts))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return
	}
	if err := f.Close(); err != nil {
		return
	}
	// The cache is advisory: a failed rename is silently a miss next time.
	_ = os.Rename(tmp, p)
}
