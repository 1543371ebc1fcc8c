package messages

import (
	"crypto/md5"
	"io"
)

// FileDigest returns the whole-file MD5 digest carried by
// StartTransferRequest.Hash. The protocol fixes the algorithm; both peers
// must agree on it.
func FileDigest(data []byte) []byte {
	sum := md5.Sum(data)
	return sum[:]
}

// FileDigestReader computes the file digest from a stream.
func FileDigestReader(r io.Reader) ([]byte, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
