// Package pjson implements the protojson conventions the hand-maintained
// bindings use for their JSON codec: lowerCamelCase field names, defaults
// omitted, bytes as base64, 64-bit integers as decimal strings, enums as
// value names. Emission order is fixed by the caller, so JSON output is
// deterministic like the binary format.
package pjson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Encoder builds a single JSON object. Fields appear in the order the
// Append* methods are called; zero values are skipped by the callers.
type Encoder struct {
	buf    bytes.Buffer
	fields int
}

func (e *Encoder) key(name string) {
	if e.fields == 0 {
		e.buf.WriteByte('{')
	} else {
		e.buf.WriteByte(',')
	}
	e.fields++
	e.buf.WriteByte('"')
	e.buf.WriteString(name)
	e.buf.WriteString(`":`)
}

// AppendUint32 emits a JSON number.
func (e *Encoder) AppendUint32(name string, v uint32) {
	if v == 0 {
		return
	}
	e.key(name)
	e.buf.WriteString(strconv.FormatUint(uint64(v), 10))
}

// AppendUint64 emits a decimal string (64-bit integers lose precision as
// JSON numbers).
func (e *Encoder) AppendUint64(name string, v uint64) {
	if v == 0 {
		return
	}
	e.key(name)
	e.buf.WriteByte('"')
	e.buf.WriteString(strconv.FormatUint(v, 10))
	e.buf.WriteByte('"')
}

// AppendDouble emits a JSON number. Non-finite values use the protojson
// string spellings, and negative zero is emitted to keep its sign.
func (e *Encoder) AppendDouble(name string, v float64) {
	if v == 0 && !math.Signbit(v) {
		return
	}
	e.key(name)
	switch {
	case math.IsNaN(v):
		e.buf.WriteString(`"NaN"`)
	case math.IsInf(v, 1):
		e.buf.WriteString(`"Infinity"`)
	case math.IsInf(v, -1):
		e.buf.WriteString(`"-Infinity"`)
	default:
		e.buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
}

// AppendString emits a JSON string.
func (e *Encoder) AppendString(name, v string) {
	if v == "" {
		return
	}
	e.key(name)
	b, _ := json.Marshal(v)
	e.buf.Write(b)
}

// AppendBytes emits standard base64.
func (e *Encoder) AppendBytes(name string, v []byte) {
	if len(v) == 0 {
		return
	}
	e.key(name)
	e.buf.WriteByte('"')
	e.buf.WriteString(base64.StdEncoding.EncodeToString(v))
	e.buf.WriteByte('"')
}

// AppendEnum emits the enum value name, or the bare number for values the
// binding does not know a name for.
func (e *Encoder) AppendEnum(name string, v int32, valueName string) {
	if v == 0 {
		return
	}
	e.key(name)
	if valueName == "" {
		e.buf.WriteString(strconv.FormatInt(int64(v), 10))
		return
	}
	e.buf.WriteByte('"')
	e.buf.WriteString(valueName)
	e.buf.WriteByte('"')
}

// Finish returns the completed object.
func (e *Encoder) Finish() []byte {
	if e.fields == 0 {
		return []byte("{}")
	}
	e.buf.WriteByte('}')
	return e.buf.Bytes()
}

// Object parses data as a JSON object keyed by field name. Per protojson,
// decoders accept both the lowerCamelCase and the original proto field name;
// callers look keys up with Raw.
type Object map[string]json.RawMessage

// Parse returns the object form of data.
func Parse(data []byte) (Object, error) {
	var obj Object
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("pjson: %w", err)
	}
	return obj, nil
}

// Raw returns the value for the first present name.
func (o Object) Raw(names ...string) (json.RawMessage, bool) {
	for _, n := range names {
		if v, ok := o[n]; ok {
			return v, true
		}
	}
	return nil, false
}

// Uint32 parses a JSON number or decimal string.
func Uint32(raw json.RawMessage, name string) (uint32, error) {
	v, err := Uint64(raw, name)
	if err != nil {
		return 0, err
	}
	if v > 1<<32-1 {
		return 0, fmt.Errorf("pjson: %s: value %d overflows uint32", name, v)
	}
	return uint32(v), nil
}

// Uint64 parses a JSON number or decimal string.
func Uint64(raw json.RawMessage, name string) (uint64, error) {
	s := unquote(raw)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pjson: %s: %w", name, err)
	}
	return v, nil
}

// Double parses a JSON number or numeric string.
func Double(raw json.RawMessage, name string) (float64, error) {
	s := unquote(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("pjson: %s: %w", name, err)
	}
	return v, nil
}

// String parses a JSON string.
func String(raw json.RawMessage, name string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("pjson: %s: %w", name, err)
	}
	return s, nil
}

// Bytes parses base64, accepting both standard and URL alphabets with or
// without padding, as protojson does.
func Bytes(raw json.RawMessage, name string) ([]byte, error) {
	s, err := String(raw, name)
	if err != nil {
		return nil, err
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.URLEncoding,
		base64.RawStdEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("pjson: %s: invalid base64", name)
}

// Enum parses an enum as its value name or as a bare number. Unknown names
// are an error; unknown numbers are accepted for forward compatibility.
func Enum(raw json.RawMessage, name string, byName map[string]int32) (int32, error) {
	if len(raw) > 0 && raw[0] == '"' {
		s, err := String(raw, name)
		if err != nil {
			return 0, err
		}
		v, ok := byName[s]
		if !ok {
			return 0, fmt.Errorf("pjson: %s: unknown enum value %q", name, s)
		}
		return v, nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("pjson: %s: %w", name, err)
	}
	return int32(v), nil
}

func unquote(raw json.RawMessage) string {
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
