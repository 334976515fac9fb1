package credential

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("")
	if _, ok := s.Get(); ok {
		t.Fatal("new empty store should have no key")
	}

	if err := s.Set("  hf_secret  "); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	key, ok := s.Get()
	if !ok || key != "hf_secret" {
		t.Errorf("Get: got %q, %v; want hf_secret, true", key, ok)
	}

	if err := s.Set("   "); !errors.Is(err, ErrEmptyCredential) {
		t.Errorf("blank Set: got %v, want ErrEmptyCredential", err)
	}
	if key, _ := s.Get(); key != "hf_secret" {
		t.Errorf("rejected Set changed the key to %q", key)
	}
}

func TestNewMemoryStore_Seeded(t *testing.T) {
	key, ok := NewMemoryStore(" abc ").Get()
	if !ok || key != "abc" {
		t.Errorf("Get: got %q, %v", key, ok)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.env")
	s := NewFileStore(path)

	if _, ok := s.Get(); ok {
		t.Fatal("missing file should mean no key")
	}

	if err := s.Set("hf_abcdefghijkl"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("credential file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode: got %o, want 600", perm)
	}

	// A fresh store sees the persisted key
	key, ok := NewFileStore(path).Get()
	if !ok || key != "hf_abcdefghijkl" {
		t.Errorf("Get: got %q, %v", key, ok)
	}
}

func TestFileStore_PreservesOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.env")
	if err := os.WriteFile(path, []byte("OTHER_SETTING=keep\n"+KeyName+"=old\n"), 0o600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	s := NewFileStore(path)
	if key, _ := s.Get(); key != "old" {
		t.Fatalf("seeded key: got %q, want old", key)
	}
	if err := s.Set("new-key"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "OTHER_SETTING") {
		t.Errorf("other entries lost: %q", data)
	}
	if key, _ := s.Get(); key != "new-key" {
		t.Errorf("Get after Set: got %q, want new-key", key)
	}
}

func TestFileStore_RejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.env")
	s := NewFileStore(path)

	if err := s.Set(""); !errors.Is(err, ErrEmptyCredential) {
		t.Errorf("got %v, want ErrEmptyCredential", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected Set should not create the file")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	t.Setenv("HOME", "/tmp/home-test")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("handwrite-mcp", "credentials.env")) {
		t.Errorf("unexpected path %q", path)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"short", "********"},
		{"12345678", "********"},
		{"hf_abcdefghwxyz", "hf_a...wxyz"},
	}
	for _, tt := range tests {
		if got := Redact(tt.input); got != tt.want {
			t.Errorf("Redact(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
