package transferdata

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/deepcare/ble-data-transfer-go/internal/wire"
)

// Field numbers from proto/deepcare/transfer_data.proto. Frozen by the
// conformance vectors; changing one is a wire-format break.
const (
	fieldCurrentChunk  = protowire.Number(1)
	fieldOverallChunks = protowire.Number(2)
	fieldHash          = protowire.Number(3)
	fieldData          = protowire.Number(4)
)

// EncodedSize returns the encoded size of the message in bytes.
func (t *TransferData) EncodedSize() int {
	if t == nil {
		return 0
	}
	n := wire.SizeUint32(fieldCurrentChunk, t.CurrentChunk)
	n += wire.SizeUint32(fieldOverallChunks, t.OverallChunks)
	n += wire.SizeBytes(fieldHash, len(t.Hash))
	n += wire.SizeBytes(fieldData, len(t.Data))
	return n + len(t.unknown)
}

// Marshal encodes the message to the protobuf binary format.
// Encoding is deterministic: equal messages yield identical bytes.
func (t *TransferData) Marshal() ([]byte, error) {
	return t.MarshalAppend(make([]byte, 0, t.EncodedSize()))
}

// MarshalAppend appends the encoded message to b.
func (t *TransferData) MarshalAppend(b []byte) ([]byte, error) {
	if t == nil {
		return b, nil
	}
	b = wire.AppendUint32(b, fieldCurrentChunk, t.CurrentChunk)
	b = wire.AppendUint32(b, fieldOverallChunks, t.OverallChunks)
	b = wire.AppendBytes(b, fieldHash, t.Hash)
	b = wire.AppendBytes(b, fieldData, t.Data)
	return append(b, t.unknown...), nil
}

// Unmarshal decodes the protobuf binary format into t, resetting it first.
// Unrecognized fields are retained and re-emitted by Marshal, so messages
// from a newer schema revision survive a decode/encode cycle.
func (t *TransferData) Unmarshal(b []byte) error {
	t.Reset()

	off := 0
	for off < len(b) {
		num, typ, n, err := wire.Tag(b[off:], off)
		if err != nil {
			return err
		}
		start := off
		off += n

		switch num {
		case fieldCurrentChunk:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			t.CurrentChunk = uint32(v)
			off += m
		case fieldOverallChunks:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			t.OverallChunks = uint32(v)
			off += m
		case fieldHash:
			v, m, err := wire.Bytes(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			t.Hash = v
			off += m
		case fieldData:
			v, m, err := wire.Bytes(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			t.Data = v
			off += m
		default:
			m, err := wire.Skip(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			off += m
			t.unknown = append(t.unknown, b[start:off]...)
		}
	}
	return nil
}
