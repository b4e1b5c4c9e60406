package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/rvcs/pkg/object"
)

// DirName is the repository marker directory created under the root.
const DirName = ".rvcs"

var (
	ErrRepositoryMissing   = errors.New("not an rvcs repository (run `rvcs init` first)")
	ErrRepositoryCorrupted = errors.New("repository is corrupted")
	ErrRepositoryExists    = errors.New("repository already exists")
	ErrPathNotFound        = errors.New("path does not exist")
	ErrPathIsDirectory     = errors.New("directory is not supported")
	ErrPathOutsideRepo     = errors.New("path is outside the repository")
	ErrEmptyCommit         = errors.New("nothing to commit (use \"rvcs add\" to track files)")
	ErrClockFailure        = errors.New("system clock reads before the unix epoch")
)

// Repo represents an opened rvcs repository. A Repo holds no state that
// outlives an operation: the index, HEAD and refs are read from disk each
// time they are needed.
type Repo struct {
	RootDir string        // working directory root
	RvcsDir string        // .rvcs/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config       // settings loaded from .rvcs/config.toml

	// Logger receives debug output for each step of an operation.
	Logger *zap.Logger
	// Now supplies commit timestamps.
	Now func() time.Time
}

// Open opens the repository whose root is exactly root. Unlike Git there is
// no upward search: callers pass the root explicitly.
func Open(root string) (*Repo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	rvcsDir := filepath.Join(abs, DirName)
	info, err := os.Stat(rvcsDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open %s: %w", abs, ErrRepositoryMissing)
	}
	info, err = os.Stat(filepath.Join(rvcsDir, "objects"))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open %s: %s/objects missing: %w", abs, DirName, ErrRepositoryCorrupted)
	}

	r := newRepo(abs, rvcsDir)
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	r.Config = cfg
	return r, nil
}

func newRepo(root, rvcsDir string) *Repo {
	return &Repo{
		RootDir: root,
		RvcsDir: rvcsDir,
		Store:   object.NewStore(rvcsDir),
		Config:  DefaultConfig(),
		Logger:  zap.NewNop(),
		Now:     time.Now,
	}
}

func (r *Repo) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// timestamp reads the clock and converts it to whole seconds since the
// epoch.
func (r *Repo) timestamp() (uint64, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	secs := now().Unix()
	if secs < 0 {
		return 0, ErrClockFailure
	}
	return uint64(secs), nil
}
