package transferdata

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

var lorem = []byte(strings.Repeat(
	"Lorem ipsum dolor sit amet, consetetur sadipscing elitr, sed diam nonumy "+
		"eirmod tempor invidunt ut labore et dolore magna aliquyam erat. ", 8))

func TestSplitAssembleRoundTrip(t *testing.T) {
	for _, mtu := range []int{DefaultMTU, 50, PayloadHeaderSize + 1} {
		chunks, err := Split(lorem, mtu)
		if err != nil {
			t.Fatalf("Split(mtu=%d): %v", mtu, err)
		}

		payloadSize := mtu - PayloadHeaderSize
		wantChunks := (len(lorem) + payloadSize - 1) / payloadSize
		if len(chunks) != wantChunks {
			t.Fatalf("Split(mtu=%d): got %d chunks want %d", mtu, len(chunks), wantChunks)
		}
		for i, c := range chunks {
			if len(c.Data) > payloadSize {
				t.Fatalf("chunk %d exceeds payload size: %d > %d", i, len(c.Data), payloadSize)
			}
			if c.OverallChunks != uint32(wantChunks) || c.CurrentChunk != uint32(i) {
				t.Fatalf("chunk %d mislabeled: %d/%d", i, c.CurrentChunk, c.OverallChunks)
			}
			if err := c.Validate(); err != nil {
				t.Fatalf("chunk %d invalid: %v", i, err)
			}
		}

		got, err := Assemble(chunks)
		if err != nil {
			t.Fatalf("Assemble(mtu=%d): %v", mtu, err)
		}
		if !bytes.Equal(got, lorem) {
			t.Fatalf("Assemble(mtu=%d): payload mismatch", mtu)
		}
	}
}

func TestSplitEmpty(t *testing.T) {
	chunks, err := Split(nil, DefaultMTU)
	if err != nil {
		t.Fatalf("Split(nil): %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("Split(nil): got %d chunks want 0", len(chunks))
	}
	got, err := Assemble(nil)
	if err != nil {
		t.Fatalf("Assemble(nil): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Assemble(nil): got %d bytes want 0", len(got))
	}
}

func TestSplitMTUTooSmall(t *testing.T) {
	if _, err := Split([]byte("x"), PayloadHeaderSize); !errors.Is(err, ErrMTUTooSmall) {
		t.Fatalf("got %v want ErrMTUTooSmall", err)
	}
}

func TestSplitDoesNotAliasInput(t *testing.T) {
	data := []byte("aliasing check")
	chunks, err := Split(data, DefaultMTU)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	data[0] = 'X'
	if chunks[0].Data[0] == 'X' {
		t.Fatalf("chunk data aliases the input slice")
	}
}

func TestAssembleWrongHash(t *testing.T) {
	chunks, err := Split(lorem, 50)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	chunks[1].Data[0] ^= 0xFF
	if _, err := Assemble(chunks); !errors.Is(err, ErrWrongHash) {
		t.Fatalf("got %v want ErrWrongHash", err)
	}
}

func TestAssembleWrongSequence(t *testing.T) {
	chunks, err := Split(lorem, 50)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	swapped := append([]*TransferData(nil), chunks...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	if _, err := Assemble(swapped); !errors.Is(err, ErrWrongSequence) {
		t.Fatalf("reordered: got %v want ErrWrongSequence", err)
	}

	if _, err := Assemble(chunks[:len(chunks)-1]); !errors.Is(err, ErrWrongSequence) {
		t.Fatalf("truncated: got %v want ErrWrongSequence", err)
	}
}

// Every chunk encoded for the default MTU must fit a single GATT write.
func TestSplitChunksFitMTU(t *testing.T) {
	chunks, err := Split(lorem, DefaultMTU)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for i, c := range chunks {
		b, err := c.Marshal()
		if err != nil {
			t.Fatalf("Marshal chunk %d: %v", i, err)
		}
		if len(b) > DefaultMTU {
			t.Fatalf("chunk %d encodes to %d bytes, exceeds mtu %d", i, len(b), DefaultMTU)
		}
	}
}
