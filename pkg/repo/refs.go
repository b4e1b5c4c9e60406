package repo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/rvcs/pkg/object"
)

const symbolicPrefix = "ref: "

var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
var ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf(
		"update ref %q: %s (old=%s new=%s): %v",
		e.Ref,
		ErrRefUpdatedButReflogAppendFailed,
		e.OldHash,
		e.NewHash,
		e.Err,
	)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}

// HeadKind tells an attached HEAD from a detached one.
type HeadKind int

const (
	// HeadSymbolic means HEAD names a branch ref ("ref: refs/heads/main").
	HeadSymbolic HeadKind = iota
	// HeadDetached means HEAD holds a raw commit hash.
	HeadDetached
)

func (k HeadKind) String() string {
	switch k {
	case HeadSymbolic:
		return "symbolic"
	case HeadDetached:
		return "detached"
	default:
		return fmt.Sprintf("HeadKind(%d)", int(k))
	}
}

// Head is the parsed content of .rvcs/HEAD. Exactly one of Ref and Hash is
// set, according to Kind.
type Head struct {
	Kind HeadKind
	Ref  string      // e.g. "refs/heads/main" when symbolic
	Hash object.Hash // commit hash when detached
}

// Branch returns the branch name for a symbolic HEAD under refs/heads/, or
// "" otherwise.
func (h Head) Branch() string {
	const prefix = "refs/heads/"
	if h.Kind == HeadSymbolic && strings.HasPrefix(h.Ref, prefix) {
		return strings.TrimPrefix(h.Ref, prefix)
	}
	return ""
}

func parseHead(data []byte) (Head, error) {
	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, symbolicPrefix) {
		ref := strings.TrimSpace(strings.TrimPrefix(content, symbolicPrefix))
		if !strings.HasPrefix(ref, "refs/") || path.Clean(ref) != ref || !filepath.IsLocal(filepath.FromSlash(ref)) {
			return Head{}, fmt.Errorf("HEAD points at invalid ref %q: %w", ref, ErrRepositoryCorrupted)
		}
		return Head{Kind: HeadSymbolic, Ref: ref}, nil
	}
	h := object.Hash(content)
	if !h.Valid() {
		return Head{}, fmt.Errorf("HEAD holds neither a ref nor a hash (%q): %w", content, ErrRepositoryCorrupted)
	}
	return Head{Kind: HeadDetached, Hash: h}, nil
}

// ReadHead reads and parses .rvcs/HEAD.
func (r *Repo) ReadHead() (Head, error) {
	path := filepath.Join(r.RvcsDir, "HEAD")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Head{}, fmt.Errorf("head: %s/HEAD missing: %w", DirName, ErrRepositoryCorrupted)
		}
		return Head{}, fmt.Errorf("head: %w", &object.IOError{Op: "read", Path: path, Err: err})
	}
	head, err := parseHead(data)
	if err != nil {
		return Head{}, fmt.Errorf("head: %w", err)
	}
	return head, nil
}

// CurrentCommit resolves HEAD to the commit the next commit will use as its
// parent. It returns "" when HEAD names a branch that has no commits yet.
func (r *Repo) CurrentCommit() (object.Hash, error) {
	head, err := r.ReadHead()
	if err != nil {
		return "", err
	}
	return r.resolveHead(head)
}

func (r *Repo) resolveHead(head Head) (object.Hash, error) {
	if head.Kind == HeadDetached {
		return head.Hash, nil
	}
	path, err := r.refPath(head.Ref)
	if err != nil {
		return "", err
	}
	h, err := readRefHash(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", head.Ref, err)
	}
	return h, nil
}

// UpdateHead moves the current position to newHash. An attached HEAD
// advances its branch file and HEAD itself is left alone. A detached HEAD
// is rewritten in place. In both cases the update only happens if the
// current commit still equals oldHash ("" meaning no commit yet).
func (r *Repo) UpdateHead(newHash, oldHash object.Hash, reason string) error {
	head, err := r.ReadHead()
	if err != nil {
		return err
	}
	switch head.Kind {
	case HeadSymbolic:
		return r.updateRef(head.Ref, newHash, reason, &oldHash)
	case HeadDetached:
		if oldHash == "" {
			return fmt.Errorf("update detached HEAD: %w (expected a current commit)", ErrRefCASMismatch)
		}
		return r.updateRef("HEAD", newHash, reason, &oldHash)
	default:
		return fmt.Errorf("update HEAD: unknown head kind %v", head.Kind)
	}
}

// DetachHead points HEAD directly at a commit.
func (r *Repo) DetachHead(h object.Hash) error {
	if !r.Store.Has(h) {
		return fmt.Errorf("detach HEAD: %s: %w", h, object.ErrObjectNotFound)
	}
	return r.updateRef("HEAD", h, "detach", nil)
}

// ResolveRef resolves a ref name to a commit hash.
//
// Resolution order:
//  1. "HEAD" resolves through HEAD (symbolic or detached).
//  2. A name starting with "refs/" is read from .rvcs/<name>.
//  3. Otherwise "refs/heads/<name>" is tried.
//
// A ref that does not exist resolves to an error wrapping os.ErrNotExist.
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		h, err := r.CurrentCommit()
		if err != nil {
			return "", err
		}
		if h == "" {
			return "", fmt.Errorf("resolve ref HEAD: no commits yet: %w", os.ErrNotExist)
		}
		return h, nil
	}

	refName := name
	if !strings.HasPrefix(name, "refs/") {
		refName = "refs/heads/" + name
	}
	path, err := r.refPath(refName)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	h, err := readRefHash(path)
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return h, nil
}

// UpdateRef writes a hash to the named ref file under .rvcs/. Parent
// directories are created as needed.
func (r *Repo) UpdateRef(name string, h object.Hash) error {
	return r.UpdateRefCAS(name, h)
}

// UpdateRefCAS writes a hash to the named ref file under .rvcs/ using
// lockfile + rename atomic semantics. If expectedOld is provided, the
// update only succeeds when the current ref hash matches it ("" meaning
// the ref must not exist yet).
//
// Reflog append happens after the ref rename; if reflog append fails, the ref
// update remains committed and a RefUpdateReflogError is returned.
func (r *Repo) UpdateRefCAS(name string, h object.Hash, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return fmt.Errorf("update ref %q: expected at most one old hash", name)
	}
	if name == "HEAD" {
		return fmt.Errorf("update ref %q: use UpdateHead or DetachHead", name)
	}
	var want *object.Hash
	if len(expectedOld) == 1 {
		want = &expectedOld[0]
	}
	return r.updateRef(name, h, "update", want)
}

func (r *Repo) updateRef(name string, h object.Hash, reason string, expectedOld *object.Hash) error {
	if !h.Valid() {
		return fmt.Errorf("update ref %q: invalid hash %q", name, h)
	}
	refPath, err := r.refPath(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: %w", name, &object.IOError{Op: "mkdir", Path: filepath.Dir(refPath), Err: err})
	}

	lock, err := acquireLock(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	defer lock.release()

	oldHash, err := r.readOldHash(name, refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if expectedOld != nil && oldHash != *expectedOld {
		return fmt.Errorf(
			"update ref %q: %w (expected %s, found %s)",
			name,
			ErrRefCASMismatch,
			displayHash(*expectedOld),
			displayHash(oldHash),
		)
	}

	if err := lock.commitTo(refPath, []byte(h)); err != nil {
		return fmt.Errorf("update ref %q: %w", name, &object.IOError{Op: "write", Path: refPath, Err: err})
	}

	r.log().Debug("ref updated",
		zap.String("ref", name),
		zap.String("old", string(oldHash)),
		zap.String("new", string(h)),
	)

	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return &RefUpdateReflogError{
			Ref:     name,
			OldHash: oldHash,
			NewHash: h,
			Err:     err,
		}
	}
	return nil
}

// readOldHash returns the commit a ref currently names. HEAD may still hold
// a symbolic ref while it is being detached, so it is resolved instead of
// read as a hash.
func (r *Repo) readOldHash(name, refPath string) (object.Hash, error) {
	if name != "HEAD" {
		return readRefHash(refPath)
	}
	head, err := r.ReadHead()
	if err != nil {
		return "", err
	}
	return r.resolveHead(head)
}

// ListRefs lists references under .rvcs/refs.
// Names are returned relative to refs root, e.g. "heads/main".
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.RvcsDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		h, err := readRefHash(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = h
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// refPath maps a ref name to its file, refusing names that would escape
// the .rvcs/ directory.
func (r *Repo) refPath(name string) (string, error) {
	rel := filepath.FromSlash(name)
	if name == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid ref name %q", name)
	}
	return filepath.Join(r.RvcsDir, rel), nil
}

// readRefHash returns the hash stored in a ref file, or "" if the file does
// not exist. Content that is not a hash means the ref is corrupted.
func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", &object.IOError{Op: "read", Path: refPath, Err: err}
	}
	h := object.Hash(strings.TrimSpace(string(data)))
	if !h.Valid() {
		return "", fmt.Errorf("%s holds %q, not a commit hash: %w", refPath, h, ErrRepositoryCorrupted)
	}
	return h, nil
}

func displayHash(h object.Hash) string {
	if h == "" {
		return "<none>"
	}
	return string(h)
}
