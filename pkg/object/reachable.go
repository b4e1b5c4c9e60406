package object

import (
	"fmt"
)

// ReachableSet returns all object hashes reachable from the given commit
// hashes: every commit along each parent chain, their trees, and the blobs
// those trees list. Objects carry no type tag, so the walk relies on the
// position each hash is referenced from. A referenced object that is not
// in the store is reported as an error wrapping ErrObjectNotFound.
func (s *Store) ReachableSet(commits []Hash) (map[Hash]struct{}, error) {
	out := make(map[Hash]struct{})

	for _, start := range commits {
		for h := start; h != ""; {
			if _, ok := out[h]; ok {
				break
			}
			c, err := s.ReadCommit(h)
			if err != nil {
				return nil, fmt.Errorf("reachable set commit %s: %w", h, err)
			}
			out[h] = struct{}{}

			if err := s.addTree(c.TreeHash, out); err != nil {
				return nil, fmt.Errorf("reachable set commit %s: %w", h, err)
			}
			h = c.Parent
		}
	}
	return out, nil
}

func (s *Store) addTree(h Hash, out map[Hash]struct{}) error {
	if _, ok := out[h]; ok {
		return nil
	}
	tr, err := s.ReadTree(h)
	if err != nil {
		return fmt.Errorf("tree %s: %w", h, err)
	}
	out[h] = struct{}{}
	for _, e := range tr.Entries {
		if !s.Has(e.BlobHash) {
			return fmt.Errorf("blob %s (%s): %w", e.BlobHash, e.Path, ErrObjectNotFound)
		}
		out[e.BlobHash] = struct{}{}
	}
	return nil
}
