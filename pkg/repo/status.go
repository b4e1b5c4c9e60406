package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/rvcs/pkg/object"
)

// FileStatus represents the state of a file in the working tree or index.
type FileStatus int

const (
	StatusClean    FileStatus = iota // file matches between compared areas
	StatusNew                        // in staging, not in HEAD tree
	StatusModified                   // in staging, different from HEAD
	StatusDirty                      // staged but working copy differs from staged
	StatusMissing                    // staged but gone from the working tree
)

func (s FileStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusDirty:
		return "dirty"
	case StatusMissing:
		return "missing"
	default:
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
}

// StatusEntry records the status of a single staged file.
type StatusEntry struct {
	Path        string     // repo-relative path
	Hash        object.Hash
	IndexStatus FileStatus // staging vs HEAD comparison
	WorkStatus  FileStatus // working tree vs staging comparison
}

// Status compares every staged path against the tree of the current
// commit and against the file in the working tree. Entries are sorted by
// path.
func (r *Repo) Status() ([]StatusEntry, error) {
	idx, _, err := r.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	headEntries, err := r.headTreeEntries()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	var out []StatusEntry
	for _, e := range idx.Entries() {
		se := StatusEntry{Path: e.Path, Hash: e.Hash}

		switch headHash, ok := headEntries[e.Path]; {
		case !ok:
			se.IndexStatus = StatusNew
		case headHash != e.Hash:
			se.IndexStatus = StatusModified
		default:
			se.IndexStatus = StatusClean
		}

		se.WorkStatus, err = r.worktreeStatus(e)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		out = append(out, se)
	}
	return out, nil
}

func (r *Repo) worktreeStatus(e IndexEntry) (FileStatus, error) {
	absPath := filepath.Join(r.RootDir, filepath.FromSlash(e.Path))
	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StatusMissing, nil
		}
		return 0, &object.IOError{Op: "read", Path: absPath, Err: err}
	}
	if object.HashBytes(data) != e.Hash {
		return StatusDirty, nil
	}
	return StatusClean, nil
}

// headTreeEntries returns path -> blob hash for the tree of the current
// commit, or an empty map before the first commit.
func (r *Repo) headTreeEntries() (map[string]object.Hash, error) {
	entries := make(map[string]object.Hash)
	head, err := r.CurrentCommit()
	if err != nil || head == "" {
		return entries, err
	}
	c, err := r.Store.ReadCommit(head)
	if err != nil {
		return nil, err
	}
	tr, err := r.Store.ReadTree(c.TreeHash)
	if err != nil {
		return nil, err
	}
	for _, te := range tr.Entries {
		entries[te.Path] = te.BlobHash
	}
	return entries, nil
}
