package credential

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemory("")
	if _, ok := m.Get(); ok {
		t.Fatal("expected empty store")
	}
	if err := m.Set("abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, ok := m.Get(); !ok || got != "abc" {
		t.Errorf("expected abc, got %q (%v)", got, ok)
	}
	if err := m.Set("def"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := m.Get(); got != "def" {
		t.Errorf("expected last writer to win, got %q", got)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := m.Get(); ok {
		t.Error("expected empty store after clear")
	}
}

func TestFileStore_RoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	if err := NewFile(path).Set("secret"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A fresh instance simulates a reload.
	got, ok := NewFile(path).Get()
	if !ok || got != "secret" {
		t.Fatalf("expected secret, got %q (%v)", got, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestFileStore_ClearMissingIsNoError(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "token.json"))
	if err := f.Clear(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestFileStore_CorruptFileIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewFile(path).Get(); ok {
		t.Error("corrupt token file must count as no credential")
	}
}

func TestFileStore_SetEmptyClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	f := NewFile(path)
	if err := f.Set("x"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set(""); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected token file removed, stat err=%v", err)
	}
}
