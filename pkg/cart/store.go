package cart

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
)

// Store persists cart lines between client sessions.
type Store interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// FileStore keeps the cart as a JSON file, written atomically via a temp file
// and rename. A missing file loads as an empty cart.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cart file")
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "parse cart file")
	}
	return items, nil
}

func (s *FileStore) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cart-*")
	if err != nil {
		return errors.Wrap(err, "create temp cart file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write cart file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close cart file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace cart file")
}

// MemStore is an in-memory Store for tests and ephemeral carts.
type MemStore struct {
	mu    sync.Mutex
	items []Item
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Save(items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]Item, len(items))
	copy(s.items, items)
	return nil
}
