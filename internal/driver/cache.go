package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"ownlint/internal/diag"
	"ownlint/internal/source"
)

// Bump when the payload layout changes; stale entries are silently ignored.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores per-file diagnostic payloads keyed by content hash.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a disk cache at the standard XDG location.
func OpenDiskCache(app string) (*DiskCache, error) {
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
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at dir (tests, CI).
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

type cachedNote struct {
	Msg   string
	Start uint32
	End   uint32
}

type cachedEdit struct {
	Start   uint32
	End     uint32
	NewText string
	OldText string
}

type cachedFix struct {
	Title         string
	Applicability uint8
	IsPreferred   bool
	Edits         []cachedEdit
}

type cachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []cachedNote
	Fixes    []cachedFix
}

// diskPayload is the serialized analysis result for one file.
type diskPayload struct {
	Schema      uint16
	Diagnostics []cachedDiagnostic
}

// fill reconstructs diagnostics into bag, rebinding spans onto fileID.
func (p *diskPayload) fill(bag *diag.Bag, fileID source.FileID) {
	for _, cd := range p.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: fileID, Start: cd.Start, End: cd.End},
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: fileID, Start: n.Start, End: n.End},
				Msg:  n.Msg,
			})
		}
		for _, f := range cd.Fixes {
			fx := diag.Fix{
				Title:         f.Title,
				Applicability: diag.FixApplicability(f.Applicability),
				IsPreferred:   f.IsPreferred,
			}
			for _, e := range f.Edits {
				fx.Edits = append(fx.Edits, diag.TextEdit{
					Span:    source.Span{File: fileID, Start: e.Start, End: e.End},
					NewText: e.NewText,
					OldText: e.OldText,
				})
			}
			d.Fixes = append(d.Fixes, fx)
		}
		bag.Add(d)
	}
}

func payloadFromBag(bag *diag.Bag) *diskPayload {
	p := &diskPayload{Schema: diskCacheSchemaVersion}
	for _, d := range bag.Items() {
		cd := cachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, cachedNote{Msg: n.Msg, Start: n.Span.Start, End: n.Span.End})
		}
		for _, f := range d.Fixes {
			cf := cachedFix{
				Title:         f.Title,
				Applicability: uint8(f.Applicability),
				IsPreferred:   f.IsPreferred,
			}
			for _, e := range f.Edits {
				cf.Edits = append(cf.Edits, cachedEdit{
					Start: e.Span.Start, End: e.Span.End,
					NewText: e.NewText, OldText: e.OldText,
				})
			}
			cd.Fixes = append(cd.Fixes, cf)
		}
		p.Diagnostics = append(p.Diagnostics, cd)
	}
	return p
}

func (c *DiskCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "scripts", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and atomically writes a payload to the cache.
func (c *DiskCache) Put(key [32]byte, payload *diskPayload) error {
	if c == nil {
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
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the cache.
func (c *DiskCache) Get(key [32]byte, out *diskPayload) (bool, error) {
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
		return false, err
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "scripts"))
}

func cacheLookup(c *DiskCache, file *source.File) (*diskPayload, bool) {
	if c == nil {
		return nil, false
	}
	var payload diskPayload
	ok, err := c.Get(file.Hash, &payload)
	if err != nil || !ok || payload.Schema != diskCacheSchemaVersion {
		return nil, false
	}
	return &payload, true
}

func cacheStore(c *DiskCache, file *source.File, bag *diag.Bag) {
	if c == nil {
		return
	}
	// Cache write failures are non-fatal; the next run just recomputes.
	_ = c.Put(file.Hash, payloadFromBag(bag))
}
