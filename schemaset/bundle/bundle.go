// Package bundle moves pinned schema sets between machines as a single
// deterministic TAR file.
//
// A bundle holds one lock.json plus one blocks/<cid> entry per pinned
// schema file. The bytes are deterministic: entry order is lexicographic
// and TAR headers are normalized, so the same lock always exports to the
// same bundle bytes. Import is fail-closed and verifies every block against
// both its entry name and the lock.
package bundle

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"github.com/deepcare/ble-data-transfer-go/cidutil"
	"github.com/deepcare/ble-data-transfer-go/schemaset"
	"github.com/deepcare/ble-data-transfer-go/storage"
)

const lockEntry = "lock.json"

var epoch0 = time.Unix(0, 0).UTC()

// Export writes the lock's pinned blocks and the lock itself as a
// deterministic TAR bundle. All exported bytes are validated against their
// CIDs before they are written.
func Export(w io.Writer, lock *schemaset.Lock, store storage.BlobStore) error {
	if store == nil {
		return fmt.Errorf("bundle: nil store")
	}
	if lock == nil || len(lock.Files) == 0 {
		return schemaset.ErrEmptySet
	}

	uniq := make(map[string]cid.Cid, len(lock.Files))
	for _, f := range lock.Files {
		if !f.CID.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[f.CID.String()] = f.CID
	}
	cidStrings := make([]string, 0, len(uniq))
	for s := range uniq {
		cidStrings = append(cidStrings, s)
	}
	sort.Strings(cidStrings)

	tw := tar.NewWriter(w)

	for _, s := range cidStrings {
		id := uniq[s]
		b, err := store.Get(id)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if !cidutil.Matches(b, id) {
			_ = tw.Close()
			return storage.ErrCIDMismatch
		}
		if err := writeFile(tw, "blocks/"+s, b); err != nil {
			_ = tw.Close()
			return err
		}
	}

	enc, err := schemaset.EncodeLock(lock)
	if err != nil {
		_ = tw.Close()
		return err
	}
	if err := writeFile(tw, lockEntry, enc); err != nil {
		_ = tw.Close()
		return err
	}

	return tw.Close()
}

// Import reads a bundle, stores every block, and returns the decoded lock.
//
// Fail-closed: unknown entries, duplicate blocks, CID mismatches, a missing
// lock.json, or blocks the lock does not pin are all errors.
func Import(r io.Reader, store storage.BlobStore) (*schemaset.Lock, error) {
	if store == nil {
		return nil, fmt.Errorf("bundle: nil store")
	}

	tr := tar.NewReader(r)
	blocks := map[string]struct{}{}
	var lock *schemaset.Lock

	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return nil, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		if name == lockEntry {
			if lock != nil {
				return nil, fmt.Errorf("bundle: duplicate %s", lockEntry)
			}
			enc, err := io.ReadAll(tr)
			if err != nil {
				return nil, err
			}
			lock, err = schemaset.DecodeLock(enc)
			if err != nil {
				return nil, err
			}
			continue
		}

		if !strings.HasPrefix(name, "blocks/") {
			return nil, fmt.Errorf("bundle: unknown entry: %s", name)
		}
		cidStr := strings.TrimPrefix(name, "blocks/")
		id, derr := cid.Decode(cidStr)
		if derr != nil || !id.Defined() {
			return nil, storage.ErrInvalidCID
		}

		payload, rerr := io.ReadAll(tr)
		if rerr != nil {
			return nil, rerr
		}
		if !cidutil.Matches(payload, id) {
			return nil, storage.ErrCIDMismatch
		}

		key := id.String()
		if _, ok := blocks[key]; ok {
			return nil, fmt.Errorf("bundle: duplicate block entry: %s", key)
		}
		blocks[key] = struct{}{}

		putID, perr := store.Put(payload)
		if perr != nil {
			return nil, perr
		}
		if !putID.Equals(id) {
			return nil, storage.ErrCIDMismatch
		}
	}

	if lock == nil {
		return nil, fmt.Errorf("bundle: missing %s", lockEntry)
	}
	// Distinct paths can pin identical bytes, so compare by CID set.
	pinned := map[string]struct{}{}
	for _, f := range lock.Files {
		if _, ok := blocks[f.CID.String()]; !ok {
			return nil, fmt.Errorf("%w: %s (%s)", schemaset.ErrMissingFile, f.Path, f.CID)
		}
		pinned[f.CID.String()] = struct{}{}
	}
	for s := range blocks {
		if _, ok := pinned[s]; !ok {
			return nil, fmt.Errorf("bundle: block %s not pinned by lock", s)
		}
	}
	return lock, nil
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		Uid:      0,
		Gid:      0,
		Uname:    "",
		Gname:    "",
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
		out = append(out, part)
	}
	return strings.Join(out, "/")
}
