// Package wire implements the small slice of the protobuf binary format the
// hand-maintained bindings in this repository need.
//
// The bindings are written against these helpers instead of generated code so
// that building this module never requires a protoc/codegen toolchain. The
// schemas in proto/ remain the authoritative definitions; conformance vector
// tests in the binding packages freeze the field numbering against them.
//
// Encoding contract:
//   - Fields are appended in ascending field-number order, followed by any
//     retained unknown fields in the order they were decoded. Marshaling the
//     same message twice yields identical bytes.
//   - Zero-valued scalar fields are omitted (proto3 implicit presence).
package wire

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWrongType reports a field encoded with an unexpected wire type.
var ErrWrongType = errors.New("wire: unexpected wire type")

// DecodeError describes a malformed or unexpected field in an encoded
// message. Offset is the byte offset of the field's tag within the buffer
// handed to Unmarshal.
type DecodeError struct {
	Offset int
	Num    protowire.Number
	Cause  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Num > 0 {
		return fmt.Sprintf("wire: field %d at offset %d: %v", e.Num, e.Offset, e.Cause)
	}
	return fmt.Sprintf("wire: offset %d: %v", e.Offset, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func errAt(offset int, num protowire.Number, cause error) error {
	return &DecodeError{Offset: offset, Num: num, Cause: cause}
}

// Tag consumes a field tag, returning a DecodeError on malformed input.
func Tag(b []byte, offset int) (protowire.Number, protowire.Type, int, error) {
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 {
		return 0, 0, 0, errAt(offset, 0, protowire.ParseError(n))
	}
	return num, typ, n, nil
}

// Uvarint consumes a varint-encoded scalar.
func Uvarint(b []byte, offset int, num protowire.Number, typ protowire.Type) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, errAt(offset, num, ErrWrongType)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, errAt(offset, num, protowire.ParseError(n))
	}
	return v, n, nil
}

// Double consumes a fixed64-encoded double.
func Double(b []byte, offset int, num protowire.Number, typ protowire.Type) (float64, int, error) {
	if typ != protowire.Fixed64Type {
		return 0, 0, errAt(offset, num, ErrWrongType)
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, errAt(offset, num, protowire.ParseError(n))
	}
	return math.Float64frombits(v), n, nil
}

// Bytes consumes a length-delimited field and returns a copy of its value.
func Bytes(b []byte, offset int, num protowire.Number, typ protowire.Type) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errAt(offset, num, ErrWrongType)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, errAt(offset, num, protowire.ParseError(n))
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, n, nil
}

// String consumes a length-delimited field as a string.
func String(b []byte, offset int, num protowire.Number, typ protowire.Type) (string, int, error) {
	v, n, err := Bytes(b, offset, num, typ)
	if err != nil {
		return "", 0, err
	}
	return string(v), n, nil
}

// Skip consumes a field of any type, returning the number of bytes skipped.
// Callers retain unknown fields by keeping the raw tag+value bytes.
func Skip(b []byte, offset int, num protowire.Number, typ protowire.Type) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, errAt(offset, num, protowire.ParseError(n))
	}
	return n, nil
}

// AppendUint32 appends a varint field, omitting the proto3 zero value.
func AppendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// AppendUint64 appends a varint field, omitting the proto3 zero value.
func AppendUint64(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// AppendEnum appends an enum field as a sign-extended varint, omitting the
// zero value.
func AppendEnum(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

// AppendDouble appends a fixed64 double field, omitting the zero value.
// Negative zero is not the zero value and is emitted.
func AppendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 && !math.Signbit(v) {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// AppendBytes appends a length-delimited field, omitting the empty value.
func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// AppendString appends a length-delimited field, omitting the empty value.
func AppendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// SizeUint32 returns the encoded size of a varint field, 0 if omitted.
func SizeUint32(num protowire.Number, v uint32) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(uint64(v))
}

// SizeUint64 returns the encoded size of a varint field, 0 if omitted.
func SizeUint64(num protowire.Number, v uint64) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(v)
}

// SizeEnum returns the encoded size of an enum field, 0 if omitted.
func SizeEnum(num protowire.Number, v int32) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeVarint(uint64(int64(v)))
}

// SizeDouble returns the encoded size of a double field, 0 if omitted.
func SizeDouble(num protowire.Number, v float64) int {
	if v == 0 && !math.Signbit(v) {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeFixed64()
}

// SizeBytes returns the encoded size of a length-delimited field, 0 if omitted.
func SizeBytes(num protowire.Number, n int) int {
	if n == 0 {
		return 0
	}
	return protowire.SizeTag(num) + protowire.SizeBytes(n)
}
