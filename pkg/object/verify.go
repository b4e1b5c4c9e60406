package object

import (
	"fmt"
	"os"
	"sort"
)

// VerifySummary reports the outcome of Store.Verify.
type VerifySummary struct {
	Objects int
	Skipped int // files in objects/ whose names are not hashes
}

// Verify checks that every object's content hashes to its filename.
func (s *Store) Verify() (*VerifySummary, error) {
	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		return nil, &IOError{Op: "verify list", Path: s.Dir(), Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	report := &VerifySummary{}
	for _, name := range names {
		h := Hash(name)
		if !h.Valid() {
			report.Skipped++
			continue
		}
		data, err := s.Get(h)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", h, err)
		}
		if actual := HashBytes(data); actual != h {
			return nil, fmt.Errorf("verify %s: hash mismatch (computed %s)", h, actual)
		}
		report.Objects++
	}
	return report, nil
}
