package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	for _, src := range []string{"embed:goregular", "embed:GoBold", "embed:gomedium"} {
		data, err := Load(src)
		if err != nil {
			t.Fatalf("load %s: %v", src, err)
		}
		if len(data) == 0 {
			t.Fatalf("load %s returned no bytes", src)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	cases := []string{"", "embed:comic-sans", filepath.Join(t.TempDir(), "nope.ttf")}
	for _, src := range cases {
		if _, err := Load(src); !errors.Is(err, ErrNotFound) {
			t.Fatalf("load %q: expected ErrNotFound, got %v", src, err)
		}
	}
}

func TestCacheReusesParsedFont(t *testing.T) {
	c := NewCache()
	a, err := c.Get(DefaultSrc)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	b, err := c.Get(" " + DefaultSrc + " ")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if a != b {
		t.Fatalf("expected the cached font to be reused")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached font, got %d", c.Len())
	}
}

func TestCacheRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewCache().Get(path); err == nil {
		t.Fatalf("expected parse error for garbage font")
	}
}

func TestFirstAvailable(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.ttf")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok := FirstAvailable(filepath.Join(dir, "missing.ttf"), dir, present, DefaultSrc)
	if !ok || got != present {
		t.Fatalf("expected %s, got %q (ok=%v)", present, got, ok)
	}
	got, ok = FirstAvailable("", "embed:unknown", DefaultSrc)
	if !ok || got != DefaultSrc {
		t.Fatalf("expected embedded fallback, got %q", got)
	}
	if _, ok := FirstAvailable(filepath.Join(dir, "missing.ttf")); ok {
		t.Fatalf("expected no candidate")
	}
}

func TestCacheFirstSkipsBrokenCandidates(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.ttf")
	if err := os.WriteFile(broken, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := NewCache()
	f, src, err := c.First(filepath.Join(dir, "missing.ttf"), broken, "embed:gobold")
	if err != nil || f == nil {
		t.Fatalf("expected gobold, got %v", err)
	}
	if src != "embed:gobold" {
		t.Fatalf("unexpected source %q", src)
	}

	if _, _, err := c.First(filepath.Join(dir, "missing.ttf")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := c.First(broken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unparsable-only list, got %v", err)
	}
}
