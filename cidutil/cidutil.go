// Package cidutil fixes the content-addressing convention for schema bytes:
// CIDv1 with the "raw" multicodec and a sha2-256 multihash. Snapshot locks,
// blob stores and the registry service all pin schema files with these CIDs.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Sum returns the CIDv1 (raw + sha2-256) of data.
func Sum(data []byte) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// SumString returns the string form of Sum. It returns "" only on the
// unreachable multihash error path.
func SumString(data []byte) string {
	id, err := Sum(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// Matches reports whether data hashes to id under the repo convention.
func Matches(data []byte, id cid.Cid) bool {
	got, err := Sum(data)
	if err != nil {
		return false
	}
	return got.Equals(id)
}
