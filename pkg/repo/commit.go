package repo

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/odvcencio/rvcs/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in CommitObj.Signature.
type CommitSigner func(payload []byte) (string, error)

// commitState names the stages a commit passes through. A failure at any
// stage aborts the commit; objects already written stay in the store as
// unreferenced, harmless orphans.
type commitState string

const (
	stateIndexLoaded    commitState = "IndexLoaded"
	stateTreeBuilt      commitState = "TreeBuilt"
	stateParentResolved commitState = "ParentResolved"
	stateCommitWritten  commitState = "CommitWritten"
	stateRefUpdated     commitState = "RefUpdated"
)

func (r *Repo) author() string {
	if r.Config != nil && r.Config.Core.Author != "" {
		return r.Config.Core.Author
	}
	return DefaultAuthor
}

// BuildTree stores the tree object listing entries and returns its hash.
// The manifest is sorted by path, so the same set of entries always yields
// the same tree regardless of the order they were staged in.
func (r *Repo) BuildTree(entries []IndexEntry) (object.Hash, error) {
	tr := &object.TreeObj{Entries: make([]object.TreeEntry, 0, len(entries))}
	for _, e := range entries {
		tr.Entries = append(tr.Entries, object.TreeEntry{Path: e.Path, BlobHash: e.Hash})
	}
	h, err := r.Store.WriteTree(tr)
	if err != nil {
		return "", fmt.Errorf("build tree: %w", err)
	}
	return h, nil
}

// BuildCommit stores a commit object for tree with the given parent ("" for
// a root commit) and returns its hash. When signer is non-nil the unsigned
// payload is signed and the signature recorded in the commit.
func (r *Repo) BuildCommit(tree, parent object.Hash, message string, timestamp uint64, signer CommitSigner) (object.Hash, error) {
	c := &object.CommitObj{
		TreeHash:  tree,
		Parent:    parent,
		Author:    r.author(),
		Timestamp: timestamp,
		Message:   message,
	}
	if signer != nil {
		signature, err := signer(object.CommitSigningPayload(c))
		if err != nil {
			return "", fmt.Errorf("build commit: sign commit: %w", err)
		}
		c.Signature = signature
	}

	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", fmt.Errorf("build commit: %w", err)
	}
	return h, nil
}

// Commit creates a new commit from the current staging area.
//
//  1. Load the index; an empty index fails with ErrEmptyCommit
//  2. Build and store the tree
//  3. Resolve HEAD to the parent commit (none on the first commit)
//  4. Build and store the commit object
//  5. Advance the current branch (or detached HEAD) to the new commit
func (r *Repo) Commit(message string) (object.Hash, error) {
	return r.CommitWithSigner(message, nil)
}

// CommitWithSigner creates a new commit and signs it when signer is provided.
func (r *Repo) CommitWithSigner(message string, signer CommitSigner) (object.Hash, error) {
	logger := r.log()

	// 1. Load index.
	idx, _, err := r.LoadIndex()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if idx.Len() == 0 {
		return "", fmt.Errorf("commit: %w", ErrEmptyCommit)
	}
	logger.Debug("commit", zap.String("state", string(stateIndexLoaded)), zap.Int("entries", idx.Len()))

	// 2. Build tree.
	treeHash, err := r.BuildTree(idx.Entries())
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	logger.Debug("commit", zap.String("state", string(stateTreeBuilt)), zap.String("tree", string(treeHash)))

	// 3. Resolve parent.
	parent, err := r.CurrentCommit()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	logger.Debug("commit", zap.String("state", string(stateParentResolved)), zap.String("parent", string(parent)))

	// 4. Build commit.
	ts, err := r.timestamp()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	commitHash, err := r.BuildCommit(treeHash, parent, message, ts, signer)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	logger.Debug("commit", zap.String("state", string(stateCommitWritten)), zap.String("commit", string(commitHash)))

	// 5. Update ref.
	if err := r.UpdateHead(commitHash, parent, "commit: "+message); err != nil {
		// The ref itself moved; only the reflog is behind.
		if !errors.Is(err, ErrRefUpdatedButReflogAppendFailed) {
			return "", fmt.Errorf("commit: %w", err)
		}
		logger.Warn("reflog append failed", zap.Error(err))
	}
	logger.Debug("commit", zap.String("state", string(stateRefUpdated)), zap.String("commit", string(commitHash)))

	return commitHash, nil
}

// LogEntry pairs a commit with its hash.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the commit history starting from the given hash, following
// parent links, returning up to limit commits newest first. limit <= 0
// walks the whole chain down to the root commit.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	seen := make(map[object.Hash]struct{})

	for current := start; current != ""; {
		if limit > 0 && len(entries) >= limit {
			break
		}
		if _, ok := seen[current]; ok {
			return nil, fmt.Errorf("log: parent cycle at %s: %w", current, ErrRepositoryCorrupted)
		}
		seen[current] = struct{}{}

		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})
		current = c.Parent
	}

	return entries, nil
}
