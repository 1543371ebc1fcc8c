package messages

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/deepcare/ble-data-transfer-go/internal/wire"
)

// Field numbers from proto/deepcare/messages.proto. Frozen by the
// conformance vectors; changing one is a wire-format break.
const (
	reqFilename = protowire.Number(1)
	reqHash     = protowire.Number(2)
	reqChunks   = protowire.Number(3)
	reqTarget   = protowire.Number(4)

	respStatus    = protowire.Number(1)
	respFilename  = protowire.Number(2)
	respChunks    = protowire.Number(3)
	respNextChunk = protowire.Number(4)
	respHash      = protowire.Number(5)
	respSize      = protowire.Number(6)
	respDuration  = protowire.Number(7)
)

// EncodedSize returns the encoded size of the request in bytes.
func (r *StartTransferRequest) EncodedSize() int {
	if r == nil {
		return 0
	}
	n := wire.SizeBytes(reqFilename, len(r.Filename))
	n += wire.SizeBytes(reqHash, len(r.Hash))
	n += wire.SizeUint32(reqChunks, r.Chunks)
	n += wire.SizeEnum(reqTarget, int32(r.Target))
	return n + len(r.unknown)
}

// Marshal encodes the request to the protobuf binary format.
func (r *StartTransferRequest) Marshal() ([]byte, error) {
	return r.MarshalAppend(make([]byte, 0, r.EncodedSize()))
}

// MarshalAppend appends the encoded request to b.
func (r *StartTransferRequest) MarshalAppend(b []byte) ([]byte, error) {
	if r == nil {
		return b, nil
	}
	b = wire.AppendString(b, reqFilename, r.Filename)
	b = wire.AppendBytes(b, reqHash, r.Hash)
	b = wire.AppendUint32(b, reqChunks, r.Chunks)
	b = wire.AppendEnum(b, reqTarget, int32(r.Target))
	return append(b, r.unknown...), nil
}

// Unmarshal decodes the protobuf binary format into r, resetting it first.
// Unrecognized fields are retained and re-emitted by Marshal.
func (r *StartTransferRequest) Unmarshal(b []byte) error {
	r.Reset()

	off := 0
	for off < len(b) {
		num, typ, n, err := wire.Tag(b[off:], off)
		if err != nil {
			return err
		}
		start := off
		off += n

		switch num {
		case reqFilename:
			v, m, err := wire.String(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Filename = v
			off += m
		case reqHash:
			v, m, err := wire.Bytes(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Hash = v
			off += m
		case reqChunks:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Chunks = uint32(v)
			off += m
		case reqTarget:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Target = Target(int32(v))
			off += m
		default:
			m, err := wire.Skip(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			off += m
			r.unknown = append(r.unknown, b[start:off]...)
		}
	}
	return nil
}

// EncodedSize returns the encoded size of the response in bytes. The name
// avoids colliding with the response's Size field.
func (r *StartTransferResponse) EncodedSize() int {
	if r == nil {
		return 0
	}
	n := wire.SizeEnum(respStatus, int32(r.Status))
	n += wire.SizeBytes(respFilename, len(r.Filename))
	n += wire.SizeUint32(respChunks, r.Chunks)
	n += wire.SizeUint32(respNextChunk, r.NextChunk)
	n += wire.SizeBytes(respHash, len(r.Hash))
	n += wire.SizeUint64(respSize, r.Size)
	n += wire.SizeDouble(respDuration, r.Duration)
	return n + len(r.unknown)
}

// Marshal encodes the response to the protobuf binary format.
func (r *StartTransferResponse) Marshal() ([]byte, error) {
	return r.MarshalAppend(make([]byte, 0, r.EncodedSize()))
}

// MarshalAppend appends the encoded response to b.
func (r *StartTransferResponse) MarshalAppend(b []byte) ([]byte, error) {
	if r == nil {
		return b, nil
	}
	b = wire.AppendEnum(b, respStatus, int32(r.Status))
	b = wire.AppendString(b, respFilename, r.Filename)
	b = wire.AppendUint32(b, respChunks, r.Chunks)
	b = wire.AppendUint32(b, respNextChunk, r.NextChunk)
	b = wire.AppendBytes(b, respHash, r.Hash)
	b = wire.AppendUint64(b, respSize, r.Size)
	b = wire.AppendDouble(b, respDuration, r.Duration)
	return append(b, r.unknown...), nil
}

// Unmarshal decodes the protobuf binary format into r, resetting it first.
// Unrecognized fields are retained and re-emitted by Marshal.
func (r *StartTransferResponse) Unmarshal(b []byte) error {
	r.Reset()

	off := 0
	for off < len(b) {
		num, typ, n, err := wire.Tag(b[off:], off)
		if err != nil {
			return err
		}
		start := off
		off += n

		switch num {
		case respStatus:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Status = StartTransferResponseStatus(int32(v))
			off += m
		case respFilename:
			v, m, err := wire.String(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Filename = v
			off += m
		case respChunks:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Chunks = uint32(v)
			off += m
		case respNextChunk:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.NextChunk = uint32(v)
			off += m
		case respHash:
			v, m, err := wire.Bytes(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Hash = v
			off += m
		case respSize:
			v, m, err := wire.Uvarint(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Size = v
			off += m
		case respDuration:
			v, m, err := wire.Double(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			r.Duration = v
			off += m
		default:
			m, err := wire.Skip(b[off:], off, num, typ)
			if err != nil {
				return err
			}
			off += m
			r.unknown = append(r.unknown, b[start:off]...)
		}
	}
	return nil
}
