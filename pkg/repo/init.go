package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultBranchRef is the ref HEAD points at in a fresh repository.
const DefaultBranchRef = "refs/heads/main"

// Init creates a new repository at path: .rvcs/objects/, an empty
// .rvcs/index and a HEAD pointing at refs/heads/main. The branch file
// itself is created by the first commit. If .rvcs/ already exists Init
// leaves it untouched and returns an error wrapping ErrRepositoryExists.
func Init(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	rvcsDir := filepath.Join(abs, DirName)

	if _, err := os.Stat(rvcsDir); err == nil {
		return nil, fmt.Errorf("init: %s: %w", rvcsDir, ErrRepositoryExists)
	}

	if err := os.Mkdir(rvcsDir, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", rvcsDir, err)
	}
	if err := os.Mkdir(filepath.Join(rvcsDir, "objects"), 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir objects: %w", err)
	}
	if err := os.WriteFile(filepath.Join(rvcsDir, "index"), nil, 0o644); err != nil {
		return nil, fmt.Errorf("init: write index: %w", err)
	}

	headPath := filepath.Join(rvcsDir, "HEAD")
	if err := os.WriteFile(headPath, []byte(symbolicPrefix+DefaultBranchRef+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return newRepo(abs, rvcsDir), nil
}
