package object

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytesKnownValue(t *testing.T) {
	h := HashBytes([]byte("hello world"))
	assert.Equal(t, Hash("b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"), h)
	assert.True(t, h.Valid())
	assert.Equal(t, "b94d27b", h.Short())
}

func TestHashBytesDifferentInput(t *testing.T) {
	assert.NotEqual(t, HashBytes([]byte("aaa")), HashBytes([]byte("bbb")))
}

func TestHashValid(t *testing.T) {
	tests := []struct {
		name string
		in   Hash
		want bool
	}{
		{"empty", "", false},
		{"short", "abc", false},
		{"uppercase", Hash(strings.Repeat("A", 64)), false},
		{"non-hex", Hash(strings.Repeat("g", 64)), false},
		{"ok", Hash(strings.Repeat("0f", 32)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Valid())
		})
	}
}

func tempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "objects"), 0o755))
	return NewStore(dir)
}

func TestStorePutGet(t *testing.T) {
	s := tempStore(t)
	data := []byte("hello world")

	h, err := s.Put(data)
	require.NoError(t, err)
	assert.Equal(t, HashBytes(data), h)

	// The object is stored verbatim under its hash.
	raw, err := os.ReadFile(filepath.Join(s.Dir(), string(h)))
	require.NoError(t, err)
	assert.Equal(t, data, raw)

	got, err := s.Get(h)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStorePutIdempotent(t *testing.T) {
	s := tempStore(t)
	data := []byte("same bytes")

	h1, err := s.Put(data)
	require.NoError(t, err)
	before, err := os.Stat(filepath.Join(s.Dir(), string(h1)))
	require.NoError(t, err)

	// A fresh store has an empty cache, so the on-disk check is exercised.
	s2 := NewStore(filepath.Dir(s.Dir()))
	h2, err := s2.Put(data)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	after, err := os.Stat(filepath.Join(s.Dir(), string(h2)))
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "second Put must not rewrite the object")

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStorePutEmpty(t *testing.T) {
	s := tempStore(t)
	h, err := s.Put(nil)
	require.NoError(t, err)

	got, err := s.Get(h)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreGetMissing(t *testing.T) {
	s := tempStore(t)
	_, err := s.Get(HashBytes([]byte("never stored")))
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = s.Get("../../etc/passwd")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := tempStore(t)
	h, err := s.Put([]byte("immutable"))
	require.NoError(t, err)

	got, err := s.Get(h)
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), again)
}

func TestStorePutMissingObjectsDir(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Put([]byte("data"))
	assert.ErrorIs(t, err, ErrIO)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "object write", ioErr.Op)
}

func TestStoreHas(t *testing.T) {
	s := tempStore(t)
	h := HashBytes([]byte("x"))
	assert.False(t, s.Has(h))

	_, err := s.Put([]byte("x"))
	require.NoError(t, err)
	assert.True(t, s.Has(h))
	assert.False(t, s.Has("not-a-hash"))
}

func TestStoreTypedRoundTrip(t *testing.T) {
	s := tempStore(t)

	bh, err := s.WriteBlob(&Blob{Data: []byte("content")})
	require.NoError(t, err)
	b, err := s.ReadBlob(bh)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), b.Data)

	th, err := s.WriteTree(&TreeObj{Entries: []TreeEntry{{Path: "a.txt", BlobHash: bh}}})
	require.NoError(t, err)
	tr, err := s.ReadTree(th)
	require.NoError(t, err)
	require.Len(t, tr.Entries, 1)
	assert.Equal(t, "a.txt", tr.Entries[0].Path)

	ch, err := s.WriteCommit(&CommitObj{TreeHash: th, Author: "rvcs", Timestamp: 42, Message: "msg"})
	require.NoError(t, err)
	c, err := s.ReadCommit(ch)
	require.NoError(t, err)
	assert.Equal(t, th, c.TreeHash)
	assert.Equal(t, "msg", c.Message)
}

func TestStorePut_WritesOnlyTheObject(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	s := tempStore(t)

	h, err := s.Put([]byte("only me"))
	require.NoError(t, err)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(h), entries[0].Name())

	tmpEntries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, tmpEntries)
}
