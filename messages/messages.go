// Package messages contains the hand-maintained Go bindings for the
// deepcare.messages protobuf schema (proto/deepcare/messages.proto): the
// control messages that initiate a chunked BLE file transfer and report its
// progress.
//
// Like package transferdata, the bindings implement the protobuf contract
// (construction, field access, deterministic binary and JSON serialization,
// unknown-field retention) without a codegen toolchain. The schema file
// remains authoritative; conformance vectors freeze the field numbering.
package messages

import (
	"bytes"
	"fmt"
	"strconv"
)

//go:generate protoc -I ../proto --go_out=. ../proto/deepcare/messages.proto

// FileDigestSize is the length of StartTransferRequest.Hash: a full MD5
// digest of the file being transferred.
const FileDigestSize = 16

// StartTransferResponseStatus mirrors enum
// deepcare.messages.StartTransferResponseStatus.
type StartTransferResponseStatus int32

const (
	// StatusUnknown is the zero value: no transfer has been requested.
	StatusUnknown StartTransferResponseStatus = 0
	// StatusTransfer means a transfer is in progress.
	StatusTransfer StartTransferResponseStatus = 1
	// StatusFinished means all chunks arrived and the file hash matched.
	StatusFinished StartTransferResponseStatus = 2
	// StatusError means the transfer failed and must be restarted.
	StatusError StartTransferResponseStatus = 3
	// StatusFileNotFound means the requested file does not exist.
	StatusFileNotFound StartTransferResponseStatus = 4
)

var statusName = map[StartTransferResponseStatus]string{
	StatusUnknown:      "UNKNOWN",
	StatusTransfer:     "TRANSFER",
	StatusFinished:     "FINISHED",
	StatusError:        "ERROR",
	StatusFileNotFound: "FILE_NOT_FOUND",
}

var statusValue = map[string]int32{
	"UNKNOWN":        0,
	"TRANSFER":       1,
	"FINISHED":       2,
	"ERROR":          3,
	"FILE_NOT_FOUND": 4,
}

// String returns the proto enum value name, or the bare number for values
// this binding does not know.
func (s StartTransferResponseStatus) String() string {
	if n, ok := statusName[s]; ok {
		return n
	}
	return strconv.FormatInt(int64(s), 10)
}

// Known reports whether s is a value named by the schema.
func (s StartTransferResponseStatus) Known() bool {
	_, ok := statusName[s]
	return ok
}

// Target mirrors enum deepcare.messages.Target: where a received file is
// routed after a successful transfer.
type Target int32

const (
	TargetUnknown       Target = 0
	TargetFirmware      Target = 1
	TargetConfiguration Target = 2
	TargetApplication   Target = 3
)

var targetName = map[Target]string{
	TargetUnknown:       "TARGET_UNKNOWN",
	TargetFirmware:      "TARGET_FIRMWARE",
	TargetConfiguration: "TARGET_CONFIGURATION",
	TargetApplication:   "TARGET_APPLICATION",
}

var targetValue = map[string]int32{
	"TARGET_UNKNOWN":       0,
	"TARGET_FIRMWARE":      1,
	"TARGET_CONFIGURATION": 2,
	"TARGET_APPLICATION":   3,
}

func (t Target) String() string {
	if n, ok := targetName[t]; ok {
		return n
	}
	return strconv.FormatInt(int64(t), 10)
}

// Known reports whether t is a value named by the schema.
func (t Target) Known() bool {
	_, ok := targetName[t]
	return ok
}

// StartTransferRequest mirrors message
// deepcare.messages.StartTransferRequest.
type StartTransferRequest struct {
	// Filename of the file to transfer, relative to the peer's root.
	Filename string
	// Hash is the MD5 digest of the complete file. An empty hash asks the
	// peer to start a fresh transfer.
	Hash []byte
	// Chunks is the number of high-level chunks the file was split into.
	Chunks uint32
	// Target selects where the file is routed after reception.
	Target Target

	unknown []byte
}

// Validate checks the schema-level invariants of a populated request.
func (r *StartTransferRequest) Validate() error {
	if n := len(r.Hash); n != 0 && n != FileDigestSize {
		return fmt.Errorf("messages: request hash must be empty or %d bytes, got %d", FileDigestSize, n)
	}
	if r.Chunks > 0 && r.Filename == "" {
		return fmt.Errorf("messages: request with %d chunks needs a filename", r.Chunks)
	}
	return nil
}

// Reset returns the message to its zero state, dropping unknown fields.
func (r *StartTransferRequest) Reset() {
	*r = StartTransferRequest{}
}

// Clone returns a deep copy, including retained unknown fields.
func (r *StartTransferRequest) Clone() *StartTransferRequest {
	if r == nil {
		return nil
	}
	out := &StartTransferRequest{
		Filename: r.Filename,
		Chunks:   r.Chunks,
		Target:   r.Target,
	}
	out.Hash = append([]byte(nil), r.Hash...)
	out.unknown = append([]byte(nil), r.unknown...)
	return out
}

// Equal reports field-wise equality, unknown fields included.
func (r *StartTransferRequest) Equal(o *StartTransferRequest) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Filename == o.Filename &&
		bytes.Equal(r.Hash, o.Hash) &&
		r.Chunks == o.Chunks &&
		r.Target == o.Target &&
		bytes.Equal(r.unknown, o.unknown)
}

func (r *StartTransferRequest) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("start_transfer_request(%q, %d chunks, hash %x, %s)",
		r.Filename, r.Chunks, r.Hash, r.Target)
}

// StartTransferResponse mirrors message
// deepcare.messages.StartTransferResponse.
type StartTransferResponse struct {
	Status StartTransferResponseStatus
	// Filename echoes the requested filename.
	Filename string
	// Chunks is the number of chunks expected for the whole transfer.
	Chunks uint32
	// NextChunk is the index the receiver is waiting for.
	NextChunk uint32
	// Hash is the MD5 digest of the most recently received chunk.
	Hash []byte
	// Size is the number of bytes transferred so far.
	Size uint64
	// Duration is the transfer duration in seconds.
	Duration float64

	unknown []byte
}

// Validate checks the schema-level invariants of a populated response.
func (r *StartTransferResponse) Validate() error {
	switch n := len(r.Hash); n {
	case 0, 2, FileDigestSize:
		// Truncated chunk digests and full file digests both appear here,
		// depending on the transfer direction.
	default:
		return fmt.Errorf("messages: response hash length %d is not 0, 2 or %d", n, FileDigestSize)
	}
	if r.Chunks > 0 && r.NextChunk > r.Chunks {
		return fmt.Errorf("messages: next_chunk %d exceeds chunk count %d", r.NextChunk, r.Chunks)
	}
	if r.Duration < 0 {
		return fmt.Errorf("messages: negative duration %v", r.Duration)
	}
	return nil
}

// Reset returns the message to its zero state, dropping unknown fields.
func (r *StartTransferResponse) Reset() {
	*r = StartTransferResponse{}
}

// Clone returns a deep copy, including retained unknown fields.
func (r *StartTransferResponse) Clone() *StartTransferResponse {
	if r == nil {
		return nil
	}
	out := &StartTransferResponse{
		Status:    r.Status,
		Filename:  r.Filename,
		Chunks:    r.Chunks,
		NextChunk: r.NextChunk,
		Size:      r.Size,
		Duration:  r.Duration,
	}
	out.Hash = append([]byte(nil), r.Hash...)
	out.unknown = append([]byte(nil), r.unknown...)
	return out
}

// Equal reports field-wise equality, unknown fields included.
func (r *StartTransferResponse) Equal(o *StartTransferResponse) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Status == o.Status &&
		r.Filename == o.Filename &&
		r.Chunks == o.Chunks &&
		r.NextChunk == o.NextChunk &&
		bytes.Equal(r.Hash, o.Hash) &&
		r.Size == o.Size &&
		r.Duration == o.Duration &&
		bytes.Equal(r.unknown, o.unknown)
}

func (r *StartTransferResponse) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("start_transfer_response(%s, %q, chunk %d/%d, %d bytes, %.2fs)",
		r.Status, r.Filename, r.NextChunk, r.Chunks, r.Size, r.Duration)
}
