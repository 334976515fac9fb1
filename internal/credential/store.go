// Package credential stores the API key used by the recognition service.
//
// The key is kept under the name KeyName, either in memory or in a dotenv
// file read and written with godotenv. Values are trimmed on Set and empty
// values are rejected.
package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// KeyName is the name the API key is stored under.
const KeyName = "huggingface_api_key"

var (
	// ErrMissing is returned when a key is needed but none is stored.
	ErrMissing = errors.New("API key not configured")

	// ErrEmptyCredential is returned by Set for blank input.
	ErrEmptyCredential = errors.New("API key cannot be empty")
)

// Store holds a single API key.
type Store interface {
	// Get returns the stored key and whether one is present.
	Get() (string, bool)

	// Set replaces the stored key. Implementations trim surrounding
	// whitespace and return ErrEmptyCredential for blank input.
	Set(key string) error
}

func clean(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyCredential
	}
	return key, nil
}

// MemoryStore keeps the key for the lifetime of the process.
type MemoryStore struct {
	mu  sync.RWMutex
	key string
}

// NewMemoryStore returns a store holding key. An empty key means no key.
func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{key: strings.TrimSpace(key)}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.key != ""
}

func (s *MemoryStore) Set(key string) error {
	key, err := clean(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
	return nil
}

// FileStore keeps the key in a dotenv file. Other entries in the file are
// preserved on Set. The file is created with mode 0600.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the file at path. The file need
// not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns $XDG_CONFIG_HOME/handwrite-mcp/credentials.env, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "handwrite-mcp", "credentials.env"), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) read() (map[string]string, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}
	return values, nil
}

// Get returns the stored key. An unreadable file counts as no key.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(values[KeyName])
	return key, key != ""
}

func (s *FileStore) Set(key string) error {
	key, err := clean(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[KeyName] = key

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict credential file: %w", err)
	}
	return nil
}

// Redact masks a key for display, keeping the first and last four
// characters: "hf_a...wxyz".
func Redact(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", key[:4], key[len(key)-4:])
}
