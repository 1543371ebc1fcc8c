// Package schemaset pins the .proto schema files a code-generation run uses.
//
// The schemas are maintained in a separate repository; a Lock records the
// exact bytes of each file as a CID (cidutil convention) so that generated
// bindings are traceable to exact schema content. Locks are canonical JSON:
// a lock decoded and re-encoded yields byte-identical output, and the lock's
// own CID is derived from its canonical bytes with signatures stripped.
package schemaset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/deepcare/ble-data-transfer-go/cidutil"
)

var (
	// ErrEmptySet reports a pin over zero schema files.
	ErrEmptySet = errors.New("schemaset: no schema files")

	// ErrPinMismatch reports bytes that do not match their pinned CID.
	ErrPinMismatch = errors.New("schemaset: pinned cid mismatch")

	// ErrMissingFile reports a pinned file absent from a directory or store.
	ErrMissingFile = errors.New("schemaset: pinned file missing")
)

// SourceFile is a schema file's path (relative, forward slashes) and bytes.
type SourceFile struct {
	Path  string
	Bytes []byte
}

// File is one lock entry: a pinned schema file.
type File struct {
	Path string
	CID  cid.Cid
	Size int
}

// Signature is a detached signature over the lock's SignedBytes.
type Signature struct {
	// Alg is keys.AlgEd25519 or keys.AlgDilithium3.
	Alg string
	// HashAlg is the digest the signature covers (ed25519 fixes sha256).
	HashAlg string
	// PublicKey is "<alg>:<base64>" per keys.FormatPublicKey.
	PublicKey string
	// Signature is the base64 signature value.
	Signature string
}

// Lock is a pinned schema set, optionally signed.
type Lock struct {
	// Files is sorted by Path; paths are unique.
	Files []File
	// Signatures cover SignedBytes (the lock without this field).
	Signatures []Signature
}

// validPath accepts clean, relative, forward-slash paths only. The lock
// format is shared across machines; nothing platform-specific may leak in.
func validPath(p string) error {
	if p == "" {
		return errors.New("schemaset: empty path")
	}
	if strings.Contains(p, "\\") {
		return fmt.Errorf("schemaset: path %q must use forward slashes", p)
	}
	if path := filepath.ToSlash(p); path != p {
		return fmt.Errorf("schemaset: path %q is not in canonical form", p)
	}
	if strings.HasPrefix(p, "/") || p != filepath.ToSlash(filepath.Clean(p)) || strings.HasPrefix(p, "..") {
		return fmt.Errorf("schemaset: path %q must be clean and relative", p)
	}
	return nil
}

// Pin builds a lock over the given files. Files are sorted by path;
// duplicate or invalid paths are rejected.
func Pin(files []SourceFile) (*Lock, error) {
	if len(files) == 0 {
		return nil, ErrEmptySet
	}

	sorted := append([]SourceFile(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	lock := &Lock{Files: make([]File, 0, len(sorted))}
	seen := map[string]struct{}{}
	for _, f := range sorted {
		if err := validPath(f.Path); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Path]; dup {
			return nil, fmt.Errorf("schemaset: duplicate path %q", f.Path)
		}
		seen[f.Path] = struct{}{}

		id, err := cidutil.Sum(f.Bytes)
		if err != nil {
			return nil, err
		}
		lock.Files = append(lock.Files, File{Path: f.Path, CID: id, Size: len(f.Bytes)})
	}
	return lock, nil
}

// File returns the lock entry for path.
func (l *Lock) File(path string) (File, bool) {
	for _, f := range l.Files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}

// CID returns the lock's own CID: cidutil.Sum over SignedBytes, so adding
// or removing signatures does not change a lock's identity.
func (l *Lock) CID() (cid.Cid, error) {
	b, err := l.SignedBytes()
	if err != nil {
		return cid.Undef, err
	}
	return cidutil.Sum(b)
}

// Scan collects the .proto files under dir, returning them with canonical
// relative paths in sorted order. Hidden directories are skipped.
func Scan(dir string) ([]SourceFile, error) {
	var out []SourceFile
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".proto") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out = append(out, SourceFile{Path: filepath.ToSlash(rel), Bytes: b})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// VerifyDir re-scans dir and checks it contains exactly the pinned bytes.
// Extra .proto files in the directory are an error: generating from a
// directory that drifted from its lock must fail closed.
func VerifyDir(l *Lock, dir string) error {
	files, err := Scan(dir)
	if err != nil {
		return err
	}

	byPath := make(map[string][]byte, len(files))
	for _, f := range files {
		byPath[f.Path] = f.Bytes
	}

	for _, pinned := range l.Files {
		b, ok := byPath[pinned.Path]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingFile, pinned.Path)
		}
		if !cidutil.Matches(b, pinned.CID) {
			return fmt.Errorf("%w: %s", ErrPinMismatch, pinned.Path)
		}
		delete(byPath, pinned.Path)
	}
	if len(byPath) > 0 {
		extra := make([]string, 0, len(byPath))
		for p := range byPath {
			extra = append(extra, p)
		}
		sort.Strings(extra)
		return fmt.Errorf("schemaset: unpinned files present: %s", strings.Join(extra, ", "))
	}
	return nil
}

// WriteDir materializes fetched schema files under dir.
func WriteDir(dir string, files []SourceFile) error {
	for _, f := range files {
		if err := validPath(f.Path); err != nil {
			return err
		}
		dst := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, f.Bytes, 0o644); err != nil {
			return err
		}
	}
	return nil
}
