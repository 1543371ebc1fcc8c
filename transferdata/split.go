package transferdata

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongHash reports a chunk whose hash field does not match its data.
	ErrWrongHash = errors.New("transferdata: chunk hash mismatch")

	// ErrWrongSequence reports chunks that are out of order, missing, or
	// disagree about the overall chunk count.
	ErrWrongSequence = errors.New("transferdata: chunk sequence mismatch")

	// ErrMTUTooSmall reports an MTU that leaves no room for payload after
	// the per-chunk header budget.
	ErrMTUTooSmall = errors.New("transferdata: mtu too small for any payload")
)

// Split slices data into TransferData chunks sized for the given MTU.
// Each chunk carries at most mtu - PayloadHeaderSize payload bytes, its
// position in the sequence and its truncated digest. Split(nil) returns no
// chunks. The input is copied; chunks do not alias data.
func Split(data []byte, mtu int) ([]*TransferData, error) {
	payloadSize := mtu - PayloadHeaderSize
	if payloadSize <= 0 {
		return nil, fmt.Errorf("%w: mtu %d, header budget %d", ErrMTUTooSmall, mtu, PayloadHeaderSize)
	}
	if len(data) == 0 {
		return nil, nil
	}

	overall := (len(data) + payloadSize - 1) / payloadSize
	chunks := make([]*TransferData, 0, overall)
	for i := 0; i < overall; i++ {
		part := data[i*payloadSize:]
		if len(part) > payloadSize {
			part = part[:payloadSize]
		}
		part = append([]byte(nil), part...)
		chunks = append(chunks, &TransferData{
			CurrentChunk:  uint32(i),
			OverallChunks: uint32(overall),
			Hash:          ChunkDigest(part),
			Data:          part,
		})
	}
	return chunks, nil
}

// Assemble reverses Split: it verifies the sequence and every chunk digest,
// then concatenates the payloads. A complete, in-order sequence is required;
// reordering and retries are the caller's concern.
func Assemble(chunks []*TransferData) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	var size int
	for i, c := range chunks {
		if c == nil {
			return nil, fmt.Errorf("%w: chunk %d is nil", ErrWrongSequence, i)
		}
		if c.CurrentChunk != uint32(i) || c.OverallChunks != uint32(len(chunks)) {
			return nil, fmt.Errorf("%w: chunk %d reports %d/%d",
				ErrWrongSequence, i, c.CurrentChunk, c.OverallChunks)
		}
		if !c.VerifyData() {
			return nil, fmt.Errorf("%w: chunk %d", ErrWrongHash, i)
		}
		size += len(c.Data)
	}

	out := make([]byte, 0, size)
	for _, c := range chunks {
		out = append(out, c.Data...)
	}
	return out, nil
}
