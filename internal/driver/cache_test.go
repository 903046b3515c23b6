package driver

import (
	"os"
	"path/filepath"
	"testing"

	"ownlint/internal/diag"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	key := [32]byte{1, 2, 3}
	in := &diskPayload{Schema: diskCacheSchemaVersion}
	in.Diagnostics = append(in.Diagnostics, cachedDiagnostic{
		Code:     uint16(diag.CheckUseAfterMove),
		Severity: uint8(diag.SevError),
		Message:  "use of moved value",
		Start:    7,
		End:      12,
	})
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out diskPayload
	ok, err := cache.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("get returned (%v, %v)", ok, err)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Message != "use of moved value" {
		t.Fatalf("payload mangled: %+v", out)
	}

	var missing diskPayload
	if ok, err := cache.Get([32]byte{9}, &missing); ok || err != nil {
		t.Fatalf("missing key must report (false, nil), got (%v, %v)", ok, err)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := [32]byte{4}
	if err := cache.Put(key, &diskPayload{Schema: diskCacheSchemaVersion}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	var out diskPayload
	if ok, _ := cache.Get(key, &out); ok {
		t.Fatalf("cache must be empty after DropAll")
	}
}

func TestCheckFileUsesCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "a.own")
	if err := os.WriteFile(path, []byte("bind s\nmove d <- s\nuse s\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	opts := Options{Cache: cache}

	_, first, err := CheckFile(path, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheHit {
		t.Fatalf("first run must miss the cache")
	}

	_, second, err := CheckFile(path, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.CacheHit {
		t.Fatalf("second run must hit the cache")
	}
	if first.Bag.Len() != second.Bag.Len() {
		t.Fatalf("cached run disagrees: %d vs %d diagnostics", first.Bag.Len(), second.Bag.Len())
	}
	f, s := first.Bag.Items()[0], second.Bag.Items()[0]
	if f.Code != s.Code || f.Message != s.Message || f.Primary.Start != s.Primary.Start {
		t.Fatalf("cached diagnostic differs:\n%+v\n%+v", f, s)
	}

	// Changing the content invalidates the entry.
	if err := os.WriteFile(path, []byte("bind s\nuse s\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	_, third, err := CheckFile(path, opts)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.CacheHit {
		t.Fatalf("changed content must miss the cache")
	}
	if third.Bag.Len() != 0 {
		t.Fatalf("clean rewrite must have no diagnostics")
	}
}

func TestStaleSchemaIgnored(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "a.own")
	if err := os.WriteFile(path, []byte("bind x\nuse x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fileSetProbe, probe, err := CheckFile(path, Options{})
	if err != nil {
		t.Fatalf("probe run: %v", err)
	}
	hash := fileSetProbe.Get(probe.FileID).Hash

	if err := cache.Put(hash, &diskPayload{Schema: diskCacheSchemaVersion + 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	_, res, err := CheckFile(path, Options{Cache: cache})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.CacheHit {
		t.Fatalf("entry with a newer schema must be ignored")
	}
}
