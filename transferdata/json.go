package transferdata

import (
	"github.com/deepcare/ble-data-transfer-go/internal/pjson"
)

// MarshalJSON implements the protojson mapping of the message. Unknown
// binary fields have no JSON form and are not emitted.
func (t *TransferData) MarshalJSON() ([]byte, error) {
	var e pjson.Encoder
	e.AppendUint32("currentChunk", t.CurrentChunk)
	e.AppendUint32("overallChunks", t.OverallChunks)
	e.AppendBytes("hash", t.Hash)
	e.AppendBytes("data", t.Data)
	return e.Finish(), nil
}

// UnmarshalJSON accepts both lowerCamelCase and original proto field names.
func (t *TransferData) UnmarshalJSON(data []byte) error {
	obj, err := pjson.Parse(data)
	if err != nil {
		return err
	}
	t.Reset()

	if raw, ok := obj.Raw("currentChunk", "current_chunk"); ok {
		if t.CurrentChunk, err = pjson.Uint32(raw, "current_chunk"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("overallChunks", "overall_chunks"); ok {
		if t.OverallChunks, err = pjson.Uint32(raw, "overall_chunks"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("hash"); ok {
		if t.Hash, err = pjson.Bytes(raw, "hash"); err != nil {
			return err
		}
	}
	if raw, ok := obj.Raw("data"); ok {
		if t.Data, err = pjson.Bytes(raw, "data"); err != nil {
			return err
		}
	}
	return nil
}
