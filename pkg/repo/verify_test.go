package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/rvcs/pkg/object"
)

func TestVerify_HealthyRepository(t *testing.T) {
	r := newTestRepo(t)
	stageFile(t, r, "a.txt", "a")
	_, err := r.Commit("one")
	require.NoError(t, err)
	stageFile(t, r, "b.txt", "b")
	_, err = r.Commit("two")
	require.NoError(t, err)

	report, err := r.Verify()
	require.NoError(t, err)
	// 2 blobs, 2 trees, 2 commits.
	assert.Equal(t, 6, report.Objects)
	assert.Equal(t, 6, report.Reachable)
	assert.Equal(t, 1, report.Roots)
}

func TestVerify_DetectsTamperedObject(t *testing.T) {
	r := newTestRepo(t)
	h := stageFile(t, r, "a.txt", "a")
	_, err := r.Commit("one")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(r.Store.Dir(), string(h)), []byte("tampered"), 0o644))

	// A fresh handle so no cached copy hides the change.
	r2, err := Open(r.RootDir)
	require.NoError(t, err)
	_, err = r2.Verify()
	assert.ErrorContains(t, err, "hash mismatch")
}

func TestVerify_DetectsMissingObject(t *testing.T) {
	r := newTestRepo(t)
	h := stageFile(t, r, "a.txt", "a")
	_, err := r.Commit("one")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(r.Store.Dir(), string(h))))

	r2, err := Open(r.RootDir)
	require.NoError(t, err)
	_, err = r2.Verify()
	assert.ErrorIs(t, err, object.ErrObjectNotFound)
}
