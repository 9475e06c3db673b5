package credstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the token pair in a JSON file so a login survives a
// full restart of the CLI. The file is written with 0600 since it holds
// live credentials.
type FileStore struct {
	path string
	mu   sync.Mutex
	pair Pair
}

// DefaultPath returns the token file location under the user's home
// directory (~/.legalai/tokens.json).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".legalai", "tokens.json"), nil
}

// NewFileStore opens (or lazily creates) a file-backed store at path.
// A missing file is not an error: it simply means no one has logged in
// yet on this machine.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.pair); err != nil {
		// A corrupt token file is treated as logged out rather than a
		// hard failure; the next Set overwrites it.
		s.pair = Pair{}
	}
	return s, nil
}

// Get returns the current pair.
func (s *FileStore) Get() Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// Set persists both tokens together. Readers never observe one field
// updated without the other.
func (s *FileStore) Set(p Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	return s.writeLocked()
}

// Clear removes both tokens, locally and on disk.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) writeLocked() error {
	data, err := json.MarshalIndent(s.pair, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
