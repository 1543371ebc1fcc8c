package messages

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"math"
	"testing"
)

func sampleRequest() *StartTransferRequest {
	return &StartTransferRequest{
		Filename: "fw.bin",
		Hash:     FileDigest([]byte("hello")),
		Chunks:   3,
		Target:   TargetFirmware,
	}
}

func sampleResponse() *StartTransferResponse {
	return &StartTransferResponse{
		Status:    StatusTransfer,
		Filename:  "fw.bin",
		Chunks:    3,
		NextChunk: 2,
		Hash:      []byte{0x5d, 0x41},
		Size:      2048,
		Duration:  1.5,
	}
}

func TestRequestBinaryRoundTrip(t *testing.T) {
	in := sampleRequest()
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out StartTransferRequest
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !in.Equal(&out) {
		t.Fatalf("round trip mismatch: got %v want %v", &out, in)
	}
}

func TestResponseBinaryRoundTrip(t *testing.T) {
	in := sampleResponse()
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out StartTransferResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !in.Equal(&out) {
		t.Fatalf("round trip mismatch: got %v want %v", &out, in)
	}
}

// The wire vectors freeze the field numbering of messages.proto.
func TestRequestWireVectors(t *testing.T) {
	tests := []struct {
		name string
		msg  *StartTransferRequest
		hex  string
	}{
		{"empty", &StartTransferRequest{}, ""},
		{"populated", sampleRequest(),
			"0a0666772e62696e12105d41402abc4b2a76b9719d911017c59218032001"},
		{"fresh_poll", &StartTransferRequest{Filename: "fw.bin"}, "0a0666772e62696e"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.msg.Marshal()
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if hex.EncodeToString(got) != tc.hex {
				t.Fatalf("wire bytes: got %x want %s", got, tc.hex)
			}
			var back StartTransferRequest
			want, _ := hex.DecodeString(tc.hex)
			if err := back.Unmarshal(want); err != nil {
				t.Fatalf("Unmarshal(vector): %v", err)
			}
			if !back.Equal(tc.msg) {
				t.Fatalf("decoded vector mismatch: got %v want %v", &back, tc.msg)
			}
		})
	}
}

func TestResponseWireVector(t *testing.T) {
	want := "0801120666772e62696e180320022a025d4130801039000000000000f83f"
	got, err := sampleResponse().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if hex.EncodeToString(got) != want {
		t.Fatalf("wire bytes: got %x want %s", got, want)
	}
	var back StartTransferResponse
	raw, _ := hex.DecodeString(want)
	if err := back.Unmarshal(raw); err != nil {
		t.Fatalf("Unmarshal(vector): %v", err)
	}
	if !back.Equal(sampleResponse()) {
		t.Fatalf("decoded vector mismatch: got %v", &back)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	a, _ := sampleResponse().Marshal()
	b, _ := sampleResponse().Marshal()
	if !bytes.Equal(a, b) {
		t.Fatalf("equal messages must marshal identically")
	}
}

func TestEncodedSizeMatchesMarshal(t *testing.T) {
	req, _ := sampleRequest().Marshal()
	if sampleRequest().EncodedSize() != len(req) {
		t.Fatalf("request EncodedSize: got %d want %d", sampleRequest().EncodedSize(), len(req))
	}
	resp, _ := sampleResponse().Marshal()
	if sampleResponse().EncodedSize() != len(resp) {
		t.Fatalf("response EncodedSize: got %d want %d", sampleResponse().EncodedSize(), len(resp))
	}
}

func TestUnknownFieldRetention(t *testing.T) {
	b, err := sampleRequest().Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// Field 15, length-delimited "xx" (tag 0x7a).
	future := append(append([]byte(nil), b...), 0x7a, 0x02, 'x', 'x')

	var m StartTransferRequest
	if err := m.Unmarshal(future); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(out, future) {
		t.Fatalf("unknown field lost: got %x want %x", out, future)
	}
}

func TestUnknownEnumValuesSurvive(t *testing.T) {
	in := &StartTransferResponse{Status: 77}
	b, err := in.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out StartTransferResponse
	if err := out.Unmarshal(b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Status != 77 {
		t.Fatalf("unknown enum value: got %d want 77", out.Status)
	}
	if out.Status.Known() {
		t.Fatalf("Known() must be false for 77")
	}
	if out.Status.String() != "77" {
		t.Fatalf("String(): got %q want \"77\"", out.Status.String())
	}
}

func TestRequestJSONRoundTrip(t *testing.T) {
	in := sampleRequest()
	b, err := in.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"filename":"fw.bin","hash":"XUFAKrxLKna5cZ2REBfFkg==","chunks":3,"target":"TARGET_FIRMWARE"}`
	if string(b) != want {
		t.Fatalf("JSON form: got %s want %s", b, want)
	}
	var out StartTransferRequest
	if err := out.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !in.Equal(&out) {
		t.Fatalf("JSON round trip mismatch: got %v want %v", &out, in)
	}
}

func TestResponseJSONRoundTrip(t *testing.T) {
	in := sampleResponse()
	b, err := in.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"status":"TRANSFER","filename":"fw.bin","chunks":3,"nextChunk":2,` +
		`"hash":"XUE=","size":"2048","duration":1.5}`
	if string(b) != want {
		t.Fatalf("JSON form: got %s want %s", b, want)
	}
	var out StartTransferResponse
	if err := out.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !in.Equal(&out) {
		t.Fatalf("JSON round trip mismatch: got %v want %v", &out, in)
	}
}

func TestDurationJSONEdgeValues(t *testing.T) {
	cases := []struct {
		dur  float64
		want string
	}{
		{math.NaN(), `{"duration":"NaN"}`},
		{math.Inf(1), `{"duration":"Infinity"}`},
		{math.Inf(-1), `{"duration":"-Infinity"}`},
		{math.Copysign(0, -1), `{"duration":-0}`},
	}
	for _, c := range cases {
		in := &StartTransferResponse{Duration: c.dur}
		b, err := in.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%v): %v", c.dur, err)
		}
		if string(b) != c.want {
			t.Fatalf("JSON form: got %s want %s", b, c.want)
		}
		if !json.Valid(b) {
			t.Fatalf("invalid JSON for %v: %s", c.dur, b)
		}
		var out StartTransferResponse
		if err := out.UnmarshalJSON(b); err != nil {
			t.Fatalf("UnmarshalJSON(%s): %v", b, err)
		}
		if math.IsNaN(c.dur) {
			if !math.IsNaN(out.Duration) {
				t.Fatalf("NaN duration: got %v", out.Duration)
			}
			continue
		}
		if out.Duration != c.dur || math.Signbit(out.Duration) != math.Signbit(c.dur) {
			t.Fatalf("duration round trip: got %v want %v", out.Duration, c.dur)
		}
	}
}

func TestJSONEnumByNumber(t *testing.T) {
	var r StartTransferResponse
	if err := r.UnmarshalJSON([]byte(`{"status":2,"size":2048}`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if r.Status != StatusFinished {
		t.Fatalf("status: got %v want FINISHED", r.Status)
	}
	if r.Size != 2048 {
		t.Fatalf("size: got %d want 2048 (bare number must be accepted)", r.Size)
	}
}

func TestJSONUnknownEnumName(t *testing.T) {
	var r StartTransferResponse
	if err := r.UnmarshalJSON([]byte(`{"status":"BOGUS"}`)); err == nil {
		t.Fatalf("unknown enum name must be rejected")
	}
}

func TestValidate(t *testing.T) {
	if err := sampleRequest().Validate(); err != nil {
		t.Fatalf("Validate(request): %v", err)
	}
	if err := sampleResponse().Validate(); err != nil {
		t.Fatalf("Validate(response): %v", err)
	}
	if err := (&StartTransferRequest{Hash: []byte{1}}).Validate(); err == nil {
		t.Fatalf("short request hash must be rejected")
	}
	if err := (&StartTransferRequest{Chunks: 2}).Validate(); err == nil {
		t.Fatalf("chunks without filename must be rejected")
	}
	if err := (&StartTransferResponse{Chunks: 2, NextChunk: 3}).Validate(); err == nil {
		t.Fatalf("next_chunk beyond chunks must be rejected")
	}
}

func TestFileDigest(t *testing.T) {
	got := hex.EncodeToString(FileDigest([]byte("hello")))
	if got != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("FileDigest: got %s", got)
	}
	fromReader, err := FileDigestReader(bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatalf("FileDigestReader: %v", err)
	}
	if !bytes.Equal(fromReader, FileDigest([]byte("hello"))) {
		t.Fatalf("FileDigestReader disagrees with FileDigest")
	}
}
