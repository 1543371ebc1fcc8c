package schemaset

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/deepcare/ble-data-transfer-go/storage"
)

// Push stores every pinned file and the lock itself into the store,
// returning the lock's CID. The files are read from dir, which must match
// the lock exactly.
func Push(l *Lock, dir string, store storage.BlobStore) (cid.Cid, error) {
	if err := VerifyDir(l, dir); err != nil {
		return cid.Undef, err
	}
	files, err := Scan(dir)
	if err != nil {
		return cid.Undef, err
	}
	for _, f := range files {
		id, err := store.Put(f.Bytes)
		if err != nil {
			return cid.Undef, fmt.Errorf("schemaset: push %s: %w", f.Path, err)
		}
		pinned, _ := l.File(f.Path)
		if !id.Equals(pinned.CID) {
			return cid.Undef, fmt.Errorf("%w: %s stored as %s, pinned %s", ErrPinMismatch, f.Path, id, pinned.CID)
		}
	}

	enc, err := EncodeLock(l)
	if err != nil {
		return cid.Undef, err
	}
	if _, err := store.Put(enc); err != nil {
		return cid.Undef, fmt.Errorf("schemaset: push lock: %w", err)
	}
	// The lock's identity excludes signatures, so the same pin set resolves
	// to one CID regardless of who signed it.
	return l.CID()
}

// Fetch retrieves every pinned file from the store. Bytes are verified
// against their CID by the store contract; sizes are checked here.
func Fetch(l *Lock, store storage.BlobStore) ([]SourceFile, error) {
	out := make([]SourceFile, 0, len(l.Files))
	for _, f := range l.Files {
		b, err := store.Get(f.CID)
		if err != nil {
			if storage.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s (%s)", ErrMissingFile, f.Path, f.CID)
			}
			return nil, fmt.Errorf("schemaset: fetch %s: %w", f.Path, err)
		}
		if len(b) != f.Size {
			return nil, fmt.Errorf("%w: %s has %d bytes, pinned %d", ErrPinMismatch, f.Path, len(b), f.Size)
		}
		out = append(out, SourceFile{Path: f.Path, Bytes: b})
	}
	return out, nil
}

// VerifyStore checks that every pinned file is resolvable from the store
// with byte-identical content.
func VerifyStore(l *Lock, store storage.BlobStore) error {
	_, err := Fetch(l, store)
	return err
}

// FetchDir retrieves the pinned files and writes them under dir.
func FetchDir(l *Lock, store storage.BlobStore, dir string) error {
	files, err := Fetch(l, store)
	if err != nil {
		return err
	}
	return WriteDir(dir, files)
}
