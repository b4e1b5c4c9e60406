package repo

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/rvcs/pkg/object"
)

func TestUpdateRef_WritesReflog(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.UpdateRef("refs/heads/main", hashA))
	require.NoError(t, r.UpdateRef("refs/heads/main", hashB))

	entries, err := r.ReadReflog("main", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, hashB, entries[0].NewHash)
	assert.Equal(t, hashA, entries[0].OldHash)
	assert.Equal(t, hashA, entries[1].NewHash)
	assert.Empty(t, entries[1].OldHash)
	assert.Equal(t, uint64(1700000000), entries[0].Timestamp)

	assertFile(t, filepath.Join(r.RvcsDir, "logs", "refs", "heads", "main"))
}

func TestReadReflog_RespectsLimit(t *testing.T) {
	r := newTestRepo(t)
	for i := 1; i <= 5; i++ {
		require.NoError(t, r.UpdateRef("refs/heads/main", object.Hash(fmt.Sprintf("%064x", i))))
	}

	entries, err := r.ReadReflog("HEAD", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, object.Hash(fmt.Sprintf("%064x", 5)), entries[0].NewHash)
}

func TestCommit_ReflogReasonIsFirstMessageLine(t *testing.T) {
	r := newTestRepo(t)
	stageFile(t, r, "a.txt", "x")
	h, err := r.Commit("subject line\n\nbody text")
	require.NoError(t, err)

	entries, err := r.ReadReflog("", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, h, entries[0].NewHash)
	assert.Equal(t, "commit: subject line", entries[0].Reason)
}

func TestReadReflog_Missing(t *testing.T) {
	r := newTestRepo(t)
	entries, err := r.ReadReflog("nope", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
