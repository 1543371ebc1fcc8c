package messages

import (
	"github.com/deepcare/ble-data-transfer-go/internal/pjson"
)

// MarshalJSON implements the protojson mapping of the request.
func (r *StartTransferRequest) MarshalJSON() ([]byte, error) {
	var e pjson.Encoder
	e.AppendString("filename", r.Filename)
	e.AppendBytes("hash", r.Hash)
	e.AppendUint32("chunks", r.Chunks)
	e.AppendEnum("target", int32(r.Target), targetName[r.Target])
	return e.Finish(), nil
}

// UnmarshalJSON accepts protojson field names and enum values by name or
// number.
func (r *StartTransferRequest) UnmarshalJSON(data []byte) error {
	obj, err := pjson.Parse(data)
	if err != nil {
		return err
	}
	r.Reset()

	if raw, ok := obj.Raw("filename"); ok {
		if r.Filename, err = pjson.String(raw, "filename"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("hash"); ok {
		if r.Hash, err = pjson.Bytes(raw, "hash"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("chunks"); ok {
		if r.Chunks, err = pjson.Uint32(raw, "chunks"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("target"); ok {
		v, err := pjson.Enum(raw, "target", targetValue)
		if err != nil {
			return err
		}
		r.Target = Target(v)
	}
	return nil
}

// MarshalJSON implements the protojson mapping of the response.
func (r *StartTransferResponse) MarshalJSON() ([]byte, error) {
	var e pjson.Encoder
	e.AppendEnum("status", int32(r.Status), statusName[r.Status])
	e.AppendString("filename", r.Filename)
	e.AppendUint32("chunks", r.Chunks)
	e.AppendUint32("nextChunk", r.NextChunk)
	e.AppendBytes("hash", r.Hash)
	e.AppendUint64("size", r.Size)
	e.AppendDouble("duration", r.Duration)
	return e.Finish(), nil
}

// UnmarshalJSON accepts both lowerCamelCase and original proto field names.
func (r *StartTransferResponse) UnmarshalJSON(data []byte) error {
	obj, err := pjson.Parse(data)
	if err != nil {
		return err
	}
	r.Reset()

	if raw, ok := obj.Raw("status"); ok {
		v, err := pjson.Enum(raw, "status", statusValue)
		if err != nil {
			return err
		}
		r.Status = StartTransferResponseStatus(v)
	}
	if raw, ok := obj.Raw("filename"); ok {
		if r.Filename, err = pjson.String(raw, "filename"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("chunks"); ok {
		if r.Chunks, err = pjson.Uint32(raw, "chunks"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("nextChunk", "next_chunk"); ok {
		if r.NextChunk, err = pjson.Uint32(raw, "next_chunk"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("hash"); ok {
		if r.Hash, err = pjson.Bytes(raw, "hash"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("size"); ok {
		if r.Size, err = pjson.Uint64(raw, "size"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("duration"); ok {
		if r.Duration, err = pjson.Double(raw, "duration"); err != nil {
			return err
		}
	}
	return nil
}
