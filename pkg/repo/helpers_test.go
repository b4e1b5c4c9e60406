package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/odvcencio/rvcs/pkg/object"
)

// newTestRepo initializes a repository in a fresh temp dir with a fixed
// clock and a test logger.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	require.NoError(t, err)
	r.Logger = zaptest.NewLogger(t)
	r.Now = fixedClock(time.Unix(1700000000, 0))
	return r
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func writeRepoFile(t *testing.T, r *Repo, name, content string) {
	t.Helper()
	path := filepath.Join(r.RootDir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func stageFile(t *testing.T, r *Repo, name, content string) object.Hash {
	t.Helper()
	writeRepoFile(t, r, name, content)
	added, err := r.Add([]string{name})
	require.NoError(t, err)
	require.Len(t, added, 1)
	return added[0].Hash
}

func countObjects(t *testing.T, r *Repo) int {
	t.Helper()
	entries, err := os.ReadDir(r.Store.Dir())
	require.NoError(t, err)
	return len(entries)
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "expected directory %q to exist", path)
	require.True(t, info.IsDir(), "%q exists but is not a directory", path)
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "expected file %q to exist", path)
	require.False(t, info.IsDir(), "%q exists but is a directory, expected file", path)
}
