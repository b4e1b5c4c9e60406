package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, r.RootDir)

	rvcsDir := filepath.Join(dir, DirName)
	assert.Equal(t, rvcsDir, r.RvcsDir)
	assertDir(t, rvcsDir)
	assertDir(t, filepath.Join(rvcsDir, "objects"))
	assertFile(t, filepath.Join(rvcsDir, "index"))

	head, err := os.ReadFile(filepath.Join(rvcsDir, "HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/main\n", string(head))

	// The branch file does not exist until the first commit.
	_, err = os.Stat(filepath.Join(rvcsDir, "refs", "heads", "main"))
	assert.True(t, os.IsNotExist(err))
}

func TestInit_ExistingRepoLeftUntouched(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)
	writeRepoFile(t, r, "a.txt", "a")
	_, err = r.Add([]string{"a.txt"})
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(r.RvcsDir, "index"))
	require.NoError(t, err)

	_, err = Init(dir)
	assert.ErrorIs(t, err, ErrRepositoryExists)

	after, err := os.ReadFile(filepath.Join(r.RvcsDir, "index"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestOpen_MissingRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrRepositoryMissing)
}

func TestOpen_NoUpwardSearch(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	_, err = Open(sub)
	assert.ErrorIs(t, err, ErrRepositoryMissing)
}

func TestOpen_MissingObjectsIsCorrupted(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, DirName, "objects")))

	_, err = Open(dir)
	assert.ErrorIs(t, err, ErrRepositoryCorrupted)
}

func TestOpen_LoadsConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, DirName, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[index]\nstrict = true\n"), 0o644))

	r, err := Open(dir)
	require.NoError(t, err)
	assert.True(t, r.Config.Index.Strict)
	assert.Equal(t, DefaultAuthor, r.Config.Core.Author)
	assert.NotNil(t, r.Logger)
}
