package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/rvcs/internal/fsutil"
	"github.com/odvcencio/rvcs/pkg/object"
)

// ErrMalformedIndex is returned by a strict index load that met lines it
// could not parse.
var ErrMalformedIndex = errors.New("malformed index")

// IndexEntry records the staged content of a single path.
type IndexEntry struct {
	Path string      // forward-slash path relative to the repository root
	Hash object.Hash // blob hash of the staged content
}

// LineDiagnostic describes an index line that was skipped while parsing.
type LineDiagnostic struct {
	Line   int // 1-based
	Text   string
	Reason string
}

func (d LineDiagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %q", d.Line, d.Reason, d.Text)
}

// MalformedIndexError carries every diagnostic from a strict load.
type MalformedIndexError struct {
	Path        string
	Diagnostics []LineDiagnostic
}

func (e *MalformedIndexError) Error() string {
	parts := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		parts = append(parts, d.String())
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, ErrMalformedIndex, strings.Join(parts, "; "))
}

func (e *MalformedIndexError) Is(target error) bool {
	return target == ErrMalformedIndex
}

// Index is the staging area: at most one hash per path.
type Index struct {
	entries map[string]object.Hash
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]object.Hash)}
}

// ParseIndex parses index text. Every line is "<hash> <path>", split on the
// first space. Lines that do not split into two non-empty parts, or whose
// hash is not a well-formed object hash, are skipped and reported; blank
// lines are ignored. A later line for the same path overrides an earlier
// one.
func ParseIndex(data []byte) (*Index, []LineDiagnostic) {
	idx := NewIndex()
	var diags []LineDiagnostic

	text := string(data)
	if text == "" {
		return idx, nil
	}
	for i, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		hash, path, ok := strings.Cut(line, " ")
		switch {
		case !ok:
			diags = append(diags, LineDiagnostic{Line: i + 1, Text: line, Reason: "missing separator"})
			continue
		case hash == "":
			diags = append(diags, LineDiagnostic{Line: i + 1, Text: line, Reason: "empty hash"})
			continue
		case path == "":
			diags = append(diags, LineDiagnostic{Line: i + 1, Text: line, Reason: "empty path"})
			continue
		case !object.Hash(hash).Valid():
			diags = append(diags, LineDiagnostic{Line: i + 1, Text: line, Reason: "bad hash"})
			continue
		}
		idx.entries[path] = object.Hash(hash)
	}
	return idx, diags
}

// Add inserts or overwrites the entry for path.
func (idx *Index) Add(path string, h object.Hash) {
	idx.entries[path] = h
}

// Get returns the staged hash for path.
func (idx *Index) Get(path string) (object.Hash, bool) {
	h, ok := idx.entries[path]
	return h, ok
}

// Len returns the number of staged paths.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns the staged entries sorted by path.
func (idx *Index) Entries() []IndexEntry {
	out := make([]IndexEntry, 0, len(idx.entries))
	for p, h := range idx.entries {
		out = append(out, IndexEntry{Path: p, Hash: h})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Marshal serializes the index with paths in sorted order, so two indexes
// holding the same entries always produce identical bytes.
func (idx *Index) Marshal() []byte {
	var buf bytes.Buffer
	for _, e := range idx.Entries() {
		fmt.Fprintf(&buf, "%s %s\n", e.Hash, e.Path)
	}
	return buf.Bytes()
}

// indexPath returns the filesystem path to the staging index file.
func (r *Repo) indexPath() string {
	return filepath.Join(r.RvcsDir, "index")
}

// LoadIndex reads .rvcs/index. A missing file is an empty index. Skipped
// lines are returned as diagnostics; when the repository is configured
// with index.strict they fail the load instead.
func (r *Repo) LoadIndex() (*Index, []LineDiagnostic, error) {
	path := r.indexPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewIndex(), nil, nil
		}
		return nil, nil, fmt.Errorf("load index: %w", &object.IOError{Op: "read", Path: path, Err: err})
	}

	idx, diags := ParseIndex(data)
	if len(diags) > 0 {
		if r.Config != nil && r.Config.Index.Strict {
			return nil, diags, fmt.Errorf("load index: %w", &MalformedIndexError{Path: path, Diagnostics: diags})
		}
		for _, d := range diags {
			r.log().Warn("skipping malformed index line",
				zap.Int("line", d.Line),
				zap.String("reason", d.Reason),
				zap.String("text", d.Text),
			)
		}
	}
	return idx, diags, nil
}

// SaveIndex atomically overwrites .rvcs/index.
func (r *Repo) SaveIndex(idx *Index) error {
	path := r.indexPath()
	if err := fsutil.WriteFile(path, idx.Marshal(), 0o644); err != nil {
		return fmt.Errorf("save index: %w", &object.IOError{Op: "write", Path: path, Err: err})
	}
	return nil
}

// Add stages the given files. Relative paths are taken relative to the
// repository root. For each file the raw content is written as a blob and
// the index entry for its normalized path is created or replaced. The
// index is written once, after every file has been stored.
func (r *Repo) Add(paths []string) ([]IndexEntry, error) {
	lock, err := acquireLock(r.indexPath())
	if err != nil {
		return nil, fmt.Errorf("add: lock index: %w", err)
	}
	defer lock.release()

	idx, _, err := r.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}

	added := make([]IndexEntry, 0, len(paths))
	for _, p := range paths {
		entry, err := r.stageFile(p)
		if err != nil {
			return nil, fmt.Errorf("add: %w", err)
		}
		idx.Add(entry.Path, entry.Hash)
		added = append(added, entry)
	}

	if err := r.SaveIndex(idx); err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	return added, nil
}

func (r *Repo) stageFile(p string) (IndexEntry, error) {
	relPath, err := r.repoRelPath(p)
	if err != nil {
		return IndexEntry{}, err
	}

	absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return IndexEntry{}, fmt.Errorf("%s: %w", p, ErrPathNotFound)
		}
		return IndexEntry{}, &object.IOError{Op: "stat", Path: absPath, Err: err}
	}
	if info.IsDir() {
		return IndexEntry{}, fmt.Errorf("%s: %w", p, ErrPathIsDirectory)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return IndexEntry{}, &object.IOError{Op: "read", Path: absPath, Err: err}
	}

	blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return IndexEntry{}, fmt.Errorf("write blob %q: %w", relPath, err)
	}

	r.log().Debug("staged file", zap.String("path", relPath), zap.String("hash", string(blobHash)))
	return IndexEntry{Path: relPath, Hash: blobHash}, nil
}

// repoRelPath converts a path (absolute, or relative to the repository
// root) into the normalized forward-slash form stored in the index.
func (r *Repo) repoRelPath(p string) (string, error) {
	if strings.ContainsAny(p, "\n\r") {
		return "", fmt.Errorf("%q: path contains a line break", p)
	}

	rel := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(rel) {
		var err error
		rel, err = filepath.Rel(r.RootDir, rel)
		if err != nil {
			return "", fmt.Errorf("%s: %w", p, ErrPathOutsideRepo)
		}
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%s: %w", p, ErrPathOutsideRepo)
	}

	norm := filepath.ToSlash(rel)
	if norm == DirName || strings.HasPrefix(norm, DirName+"/") {
		return "", fmt.Errorf("%s: inside %s: %w", p, DirName, ErrPathOutsideRepo)
	}
	return norm, nil
}
