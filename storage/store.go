// Package storage defines content-addressed storage for schema bytes.
//
// The .proto schemas this project generates bindings from are maintained in
// a separate repository. Toolchain runs therefore pin the exact schema bytes
// by CID (see cidutil) and cache or distribute them through a BlobStore:
// a local cache under the workspace, a remote registry over gRPC, or an
// ordered combination of both.
package storage

import "github.com/ipfs/go-cid"

// BlobStore is a minimal content-addressable store for schema blobs.
//
// Contract:
// - Put MUST be idempotent.
// - Stored blobs MUST be immutable.
// - CIDs MUST be derived from the bytes written (cidutil.Sum).
// - Get MUST return ErrNotFound when the CID is absent, and MUST verify the
//   returned bytes against the requested CID.
type BlobStore interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
