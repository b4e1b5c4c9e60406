package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/odvcencio/rvcs/internal/fsutil"
)

const defaultCacheSize = 256

// Store is a content-addressed object store with a flat layout:
// objects/<hash>. Objects are write-once; there is no update or delete.
type Store struct {
	root  string
	cache *lru.Cache[Hash, []byte]
}

// NewStore creates a Store rooted at the given repository directory. The
// objects/ subdirectory must already exist; it is created by repository
// initialization, never by the store.
func NewStore(root string) *Store {
	cache, err := lru.New[Hash, []byte](defaultCacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &Store{root: root, cache: cache}
}

// Dir returns the objects directory.
func (s *Store) Dir() string {
	return filepath.Join(s.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.Dir(), string(h))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	if s.cache.Contains(h) {
		return true
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores data and returns its content hash. If an object with that
// hash already exists nothing is written. New objects are written
// atomically, so a reader never observes a partially written object.
func (s *Store) Put(data []byte) (Hash, error) {
	h := HashBytes(data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	dest := s.objectPath(h)
	if err := fsutil.WriteFile(dest, data, 0o644); err != nil {
		return "", &IOError{Op: "object write", Path: dest, Err: err}
	}

	s.remember(h, data)
	return h, nil
}

// Get retrieves the exact bytes stored under h.
func (s *Store) Get(h Hash) ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("object read %q: malformed hash: %w", h, ErrObjectNotFound)
	}
	if data, ok := s.cache.Get(h); ok {
		return cloneBytes(data), nil
	}

	path := s.objectPath(h)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return nil, &IOError{Op: "object read", Path: path, Err: err}
	}

	s.remember(h, data)
	return cloneBytes(data), nil
}

func (s *Store) remember(h Hash, data []byte) {
	s.cache.Add(h, cloneBytes(data))
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Put(b.Data)
}

// ReadBlob reads a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	return &Blob{Data: data}, nil
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Put(MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Put(MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return c, nil
}
