// Package transferdata contains the hand-maintained Go binding for the
// deepcare.transfer_data protobuf schema (proto/deepcare/transfer_data.proto).
//
// The binding implements the standard protobuf contract (construction,
// field access, binary and JSON serialization with round-trip equality,
// deterministic encoding and unknown-field retention) without requiring a
// protoc toolchain to build this module. Bindings for other languages are
// produced from the same schema with the gen package or the bledt CLI.
package transferdata

import (
	"bytes"
	"crypto/md5"
	"fmt"
)

//go:generate protoc -I ../proto --go_out=. ../proto/deepcare/transfer_data.proto

const (
	// PayloadHeaderSize is the per-chunk overhead budget: ATT header plus
	// the encoded TransferData fields other than data. Payload sizing is
	// MTU - PayloadHeaderSize.
	PayloadHeaderSize = 22

	// DefaultMTU is the MTU negotiated by the deepcare devices.
	DefaultMTU = 185

	// DigestSize is the length of the hash field: the first two bytes of
	// the MD5 digest of data.
	DigestSize = 2
)

// TransferData is a single low-level chunk of a BLE data transfer.
// It mirrors message deepcare.transfer_data.TransferData.
type TransferData struct {
	// CurrentChunk is the zero-based index of this chunk.
	CurrentChunk uint32
	// OverallChunks is the total number of chunks in the transfer.
	OverallChunks uint32
	// Hash holds the first two bytes of md5(Data).
	Hash []byte
	// Data is the chunk payload.
	Data []byte

	unknown []byte
}

// ChunkDigest returns the truncated MD5 digest the hash field carries.
// The protocol fixes the algorithm and the two-byte truncation; both peers
// must agree on it byte for byte.
func ChunkDigest(data []byte) []byte {
	sum := md5.Sum(data)
	return sum[:DigestSize]
}

// VerifyData reports whether Hash matches the digest of Data.
func (t *TransferData) VerifyData() bool {
	return bytes.Equal(t.Hash, ChunkDigest(t.Data))
}

// Validate checks the schema-level invariants of a populated message.
func (t *TransferData) Validate() error {
	if n := len(t.Hash); n != 0 && n != DigestSize {
		return fmt.Errorf("transferdata: hash must be empty or %d bytes, got %d", DigestSize, n)
	}
	if t.OverallChunks > 0 && t.CurrentChunk >= t.OverallChunks {
		return fmt.Errorf("transferdata: current_chunk %d out of range for %d chunks",
			t.CurrentChunk, t.OverallChunks)
	}
	return nil
}

// Reset returns the message to its zero state, dropping unknown fields.
func (t *TransferData) Reset() {
	*t = TransferData{}
}

// Clone returns a deep copy, including retained unknown fields.
func (t *TransferData) Clone() *TransferData {
	if t == nil {
		return nil
	}
	out := &TransferData{
		CurrentChunk:  t.CurrentChunk,
		OverallChunks: t.OverallChunks,
	}
	out.Hash = append([]byte(nil), t.Hash...)
	out.Data = append([]byte(nil), t.Data...)
	out.unknown = append([]byte(nil), t.unknown...)
	return out
}

// Equal reports field-wise equality. Retained unknown fields participate:
// two messages that decode different unrecognized bytes are not equal.
func (t *TransferData) Equal(o *TransferData) bool {
	if t == nil || o == nil {
		return t == o
	}
	return t.CurrentChunk == o.CurrentChunk &&
		t.OverallChunks == o.OverallChunks &&
		bytes.Equal(t.Hash, o.Hash) &&
		bytes.Equal(t.Data, o.Data) &&
		bytes.Equal(t.unknown, o.unknown)
}

func (t *TransferData) String() string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("transfer_data(chunk %d/%d, hash %x, %d bytes)",
		t.CurrentChunk, t.OverallChunks, t.Hash, len(t.Data))
}
