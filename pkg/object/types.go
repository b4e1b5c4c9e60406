package object

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one line of a tree manifest.
type TreeEntry struct {
	Path     string
	BlobHash Hash
}

// TreeObj is a flat manifest of tracked paths, sorted by Path.
type TreeObj struct {
	Entries []TreeEntry
}

// CommitObj represents a commit pointing to a tree with metadata. A commit
// has at most one parent.
type CommitObj struct {
	TreeHash  Hash
	Parent    Hash // empty for the root commit
	Author    string
	Timestamp uint64
	Signature string
	Message   string
}
