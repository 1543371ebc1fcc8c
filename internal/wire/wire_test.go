package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestAppendOmitsZeroValues(t *testing.T) {
	var b []byte
	b = AppendUint32(b, 1, 0)
	b = AppendUint64(b, 2, 0)
	b = AppendEnum(b, 3, 0)
	b = AppendDouble(b, 4, 0)
	b = AppendBytes(b, 5, nil)
	b = AppendString(b, 6, "")
	if len(b) != 0 {
		t.Fatalf("zero values must be omitted, got %d bytes", len(b))
	}
}

func TestAppendNegativeZeroDouble(t *testing.T) {
	b := AppendDouble(nil, 1, math.Copysign(0, -1))
	if len(b) == 0 {
		t.Fatalf("-0.0 is not the proto3 zero value and must be emitted")
	}
}

func TestUvarintRoundTrip(t *testing.T) {
	for _, v := range []uint64{1, 127, 128, 1<<32 - 1, 1<<64 - 1} {
		b := AppendUint64(nil, 7, v)

		num, typ, n, err := Tag(b, 0)
		if err != nil {
			t.Fatalf("Tag: %v", err)
		}
		if num != 7 || typ != protowire.VarintType {
			t.Fatalf("Tag: got field %d type %v", num, typ)
		}
		got, m, err := Uvarint(b[n:], n, num, typ)
		if err != nil {
			t.Fatalf("Uvarint: %v", err)
		}
		if got != v {
			t.Fatalf("round trip: got %d want %d", got, v)
		}
		if n+m != len(b) {
			t.Fatalf("consumed %d of %d bytes", n+m, len(b))
		}
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	want := 12.5
	b := AppendDouble(nil, 7, want)
	num, typ, n, err := Tag(b, 0)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	got, _, err := Double(b[n:], n, num, typ)
	if err != nil {
		t.Fatalf("Double: %v", err)
	}
	if got != want {
		t.Fatalf("round trip: got %v want %v", got, want)
	}
}

func TestBytesReturnsCopy(t *testing.T) {
	src := AppendBytes(nil, 1, []byte{1, 2, 3})
	num, typ, n, err := Tag(src, 0)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	v, _, err := Bytes(src[n:], n, num, typ)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	src[n+1] = 0xFF
	if !bytes.Equal(v, []byte{1, 2, 3}) {
		t.Fatalf("Bytes must copy out of the input buffer, got %v", v)
	}
}

func TestWrongType(t *testing.T) {
	b := AppendString(nil, 3, "x")
	num, typ, n, err := Tag(b, 0)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	_, _, err = Uvarint(b[n:], n, num, typ)
	if !errors.Is(err, ErrWrongType) {
		t.Fatalf("got %v want ErrWrongType", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Num != 3 {
		t.Fatalf("DecodeError.Num: got %d want 3", de.Num)
	}
}

func TestTruncatedInput(t *testing.T) {
	b := AppendBytes(nil, 1, []byte("hello"))
	num, typ, n, err := Tag(b, 0)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	_, _, err = Bytes(b[n:len(b)-1], n, num, typ)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("truncated input: got %v want *DecodeError", err)
	}
}

func TestSizeMatchesAppend(t *testing.T) {
	if got, want := SizeUint32(1, 300), len(AppendUint32(nil, 1, 300)); got != want {
		t.Fatalf("SizeUint32: got %d want %d", got, want)
	}
	if got, want := SizeUint64(2, 1<<40), len(AppendUint64(nil, 2, 1<<40)); got != want {
		t.Fatalf("SizeUint64: got %d want %d", got, want)
	}
	if got, want := SizeEnum(3, 4), len(AppendEnum(nil, 3, 4)); got != want {
		t.Fatalf("SizeEnum: got %d want %d", got, want)
	}
	if got, want := SizeDouble(7, 1.5), len(AppendDouble(nil, 7, 1.5)); got != want {
		t.Fatalf("SizeDouble: got %d want %d", got, want)
	}
	if got, want := SizeBytes(4, 5), len(AppendBytes(nil, 4, []byte("hello"))); got != want {
		t.Fatalf("SizeBytes: got %d want %d", got, want)
	}
}

func TestSkip(t *testing.T) {
	b := AppendString(nil, 9, "skipped")
	b = AppendUint32(b, 1, 7)

	num, typ, n, err := Tag(b, 0)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	m, err := Skip(b[n:], n, num, typ)
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	num, typ, _, err = Tag(b[n+m:], n+m)
	if err != nil {
		t.Fatalf("Tag after skip: %v", err)
	}
	if num != 1 || typ != protowire.VarintType {
		t.Fatalf("after skip: got field %d type %v", num, typ)
	}
}
