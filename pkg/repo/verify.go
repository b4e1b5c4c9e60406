package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/rvcs/pkg/object"
)

// VerifySummary reports the outcome of Repo.Verify.
type VerifySummary struct {
	Objects   int // objects whose content matches their name
	Reachable int // objects reachable from refs and HEAD
	Roots     int // distinct commits the walk started from
}

// Verify checks object integrity and that every object referenced from a
// branch or HEAD exists, following each parent chain to its root commit.
func (r *Repo) Verify() (*VerifySummary, error) {
	storeReport, err := r.Store.Verify()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	refs, err := r.ListRefs("")
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	rootSet := make(map[object.Hash]struct{}, len(refs)+1)
	for _, h := range refs {
		if h != "" {
			rootSet[h] = struct{}{}
		}
	}
	head, err := r.CurrentCommit()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if head != "" {
		rootSet[head] = struct{}{}
	}

	roots := make([]object.Hash, 0, len(rootSet))
	for h := range rootSet {
		roots = append(roots, h)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	reachable, err := r.Store.ReachableSet(roots)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	return &VerifySummary{
		Objects:   storeReport.Objects,
		Reachable: len(reachable),
		Roots:     len(roots),
	}, nil
}
