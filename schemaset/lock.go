package schemaset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ipfs/go-cid"
)

// Lock files are canonical JSON. EncodeLock always produces the same bytes
// for the same lock, so locks diff cleanly and their CID is stable.
const (
	lockVersion   = 1
	lockCodec     = "raw"
	lockMultihash = "sha2-256"
)

type lockJSON struct {
	Version    int             `json:"version"`
	CIDCodec   string          `json:"cidCodec"`
	Multihash  string          `json:"multihash"`
	Files      []lockFileJSON  `json:"files"`
	Signatures []signatureJSON `json:"signatures,omitempty"`
}

type lockFileJSON struct {
	Path string `json:"path"`
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

type signatureJSON struct {
	Alg       string `json:"alg"`
	HashAlg   string `json:"hashAlg"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

func encodeLock(l *Lock, withSignatures bool) ([]byte, error) {
	doc := lockJSON{
		Version:   lockVersion,
		CIDCodec:  lockCodec,
		Multihash: lockMultihash,
		Files:     make([]lockFileJSON, 0, len(l.Files)),
	}
	for _, f := range l.Files {
		if !f.CID.Defined() {
			return nil, fmt.Errorf("schemaset: undefined cid for %q", f.Path)
		}
		doc.Files = append(doc.Files, lockFileJSON{Path: f.Path, CID: f.CID.String(), Size: f.Size})
	}
	sort.Slice(doc.Files, func(i, j int) bool { return doc.Files[i].Path < doc.Files[j].Path })

	if withSignatures {
		for _, s := range l.Signatures {
			doc.Signatures = append(doc.Signatures, signatureJSON(s))
		}
		sort.Slice(doc.Signatures, func(i, j int) bool {
			if doc.Signatures[i].PublicKey != doc.Signatures[j].PublicKey {
				return doc.Signatures[i].PublicKey < doc.Signatures[j].PublicKey
			}
			return doc.Signatures[i].HashAlg < doc.Signatures[j].HashAlg
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeLock renders the lock as canonical JSON with a trailing newline.
func EncodeLock(l *Lock) ([]byte, error) {
	return encodeLock(l, true)
}

// SignedBytes is the canonical encoding with the signatures field stripped.
// This is what Sign and Verify operate on, and what CID() hashes.
func (l *Lock) SignedBytes() ([]byte, error) {
	return encodeLock(l, false)
}

// DecodeLock parses a lock file. Unknown versions and loose JSON are
// rejected; a decoded lock re-encodes to canonical bytes.
func DecodeLock(b []byte) (*Lock, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var doc lockJSON
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("schemaset: decode lock: %w", err)
	}
	if dec.More() {
		return nil, errors.New("schemaset: trailing data after lock")
	}
	if doc.Version != lockVersion {
		return nil, fmt.Errorf("schemaset: unsupported lock version %d", doc.Version)
	}
	if doc.CIDCodec != lockCodec || doc.Multihash != lockMultihash {
		return nil, fmt.Errorf("schemaset: unsupported cid profile %s/%s", doc.CIDCodec, doc.Multihash)
	}
	if len(doc.Files) == 0 {
		return nil, ErrEmptySet
	}

	lock := &Lock{Files: make([]File, 0, len(doc.Files))}
	seen := map[string]struct{}{}
	prev := ""
	for _, f := range doc.Files {
		if err := validPath(f.Path); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Path]; dup {
			return nil, fmt.Errorf("schemaset: duplicate path %q", f.Path)
		}
		seen[f.Path] = struct{}{}
		if f.Path < prev {
			return nil, fmt.Errorf("schemaset: files not sorted at %q", f.Path)
		}
		prev = f.Path
		if f.Size < 0 {
			return nil, fmt.Errorf("schemaset: negative size for %q", f.Path)
		}
		id, err := cid.Decode(f.CID)
		if err != nil {
			return nil, fmt.Errorf("schemaset: bad cid for %q: %w", f.Path, err)
		}
		lock.Files = append(lock.Files, File{Path: f.Path, CID: id, Size: f.Size})
	}
	for _, s := range doc.Signatures {
		if s.Alg == "" || s.PublicKey == "" || s.Signature == "" {
			return nil, errors.New("schemaset: incomplete signature entry")
		}
		lock.Signatures = append(lock.Signatures, Signature(s))
	}
	return lock, nil
}

// ReadLockFile loads and decodes a lock from disk.
func ReadLockFile(path string) (*Lock, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeLock(b)
}
