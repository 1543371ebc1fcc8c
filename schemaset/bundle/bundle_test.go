package bundle_test

import (
	"archive/tar"
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/deepcare/ble-data-transfer-go/cidutil"
	"github.com/deepcare/ble-data-transfer-go/schemaset"
	"github.com/deepcare/ble-data-transfer-go/schemaset/bundle"
	"github.com/deepcare/ble-data-transfer-go/storage"
	"github.com/deepcare/ble-data-transfer-go/storage/localfs"
)

func pinAndStore(t *testing.T, files []schemaset.SourceFile) (*schemaset.Lock, *localfs.Store) {
	t.Helper()
	store, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if _, err := store.Put(f.Bytes); err != nil {
			t.Fatal(err)
		}
	}
	lock, err := schemaset.Pin(files)
	if err != nil {
		t.Fatal(err)
	}
	return lock, store
}

func TestBundle_ExportIsDeterministic(t *testing.T) {
	files := []schemaset.SourceFile{
		{Path: "b.proto", Bytes: []byte("world")},
		{Path: "a.proto", Bytes: []byte("hello")},
	}
	lock, store := pinAndStore(t, files)

	var outA, outB bytes.Buffer
	if err := bundle.Export(&outA, lock, store); err != nil {
		t.Fatal(err)
	}
	if err := bundle.Export(&outB, lock, store); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(outA.Bytes(), outB.Bytes()) {
		t.Fatalf("expected deterministic bundle bytes")
	}
}

func TestBundle_ImportRoundTrip(t *testing.T) {
	files := []schemaset.SourceFile{
		{Path: "deepcare/messages.proto", Bytes: []byte("syntax = \"proto3\";\n")},
		{Path: "deepcare/transfer_data.proto", Bytes: []byte("package deepcare;\n")},
	}
	lock, src := pinAndStore(t, files)

	var buf bytes.Buffer
	if err := bundle.Export(&buf, lock, src); err != nil {
		t.Fatal(err)
	}

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got, err := bundle.Import(bytes.NewReader(buf.Bytes()), dst)
	if err != nil {
		t.Fatal(err)
	}

	wantCID, err := lock.CID()
	if err != nil {
		t.Fatal(err)
	}
	gotCID, err := got.CID()
	if err != nil {
		t.Fatal(err)
	}
	if !gotCID.Equals(wantCID) {
		t.Fatalf("lock cid: got %s want %s", gotCID, wantCID)
	}

	fetched, err := schemaset.Fetch(got, dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(fetched) != 2 || !bytes.Equal(fetched[0].Bytes, []byte("syntax = \"proto3\";\n")) {
		t.Fatalf("fetched files mismatch: %v", fetched)
	}
}

func TestBundle_SharedBytesAcrossPaths(t *testing.T) {
	// Two pinned paths with identical bytes share a single block entry.
	files := []schemaset.SourceFile{
		{Path: "a.proto", Bytes: []byte("same")},
		{Path: "b.proto", Bytes: []byte("same")},
	}
	lock, src := pinAndStore(t, files)

	var buf bytes.Buffer
	if err := bundle.Export(&buf, lock, src); err != nil {
		t.Fatal(err)
	}

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got, err := bundle.Import(bytes.NewReader(buf.Bytes()), dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Files) != 2 {
		t.Fatalf("files: got %d want 2", len(got.Files))
	}
}

func TestBundle_ImportRejectsCIDMismatch(t *testing.T) {
	otherCID, err := cidutil.Sum([]byte("other"))
	if err != nil {
		t.Fatal(err)
	}

	// Name says "otherCID" but bytes differ => computed CID mismatch.
	bundleBytes := makeDeterministicTar(t, "blocks/"+otherCID.String(), []byte("good"))

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bundle.Import(bytes.NewReader(bundleBytes), dst); !errors.Is(err, storage.ErrCIDMismatch) {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
}

func TestBundle_ImportRejectsMissingLock(t *testing.T) {
	payload := []byte("payload")
	id, err := cidutil.Sum(payload)
	if err != nil {
		t.Fatal(err)
	}
	bundleBytes := makeDeterministicTar(t, "blocks/"+id.String(), payload)

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bundle.Import(bytes.NewReader(bundleBytes), dst); err == nil {
		t.Fatalf("expected error for bundle without lock.json")
	}
}

func TestBundle_ImportRejectsUnknownEntry(t *testing.T) {
	bundleBytes := makeDeterministicTar(t, "extras/readme.txt", []byte("x"))

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bundle.Import(bytes.NewReader(bundleBytes), dst); err == nil {
		t.Fatalf("expected error for unknown entry")
	}
}

func TestBundle_ImportRejectsUnpinnedBlock(t *testing.T) {
	files := []schemaset.SourceFile{{Path: "a.proto", Bytes: []byte("pinned")}}
	lock, src := pinAndStore(t, files)

	stray, err := src.Put([]byte("stray"))
	if err != nil {
		t.Fatal(err)
	}

	// Rebuild the export by hand with an extra block the lock does not pin.
	enc, err := schemaset.EncodeLock(lock)
	if err != nil {
		t.Fatal(err)
	}
	pinnedBytes, err := src.Get(lock.Files[0].CID)
	if err != nil {
		t.Fatal(err)
	}
	strayBytes, err := src.Get(stray)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range []struct {
		name string
		b    []byte
	}{
		{"blocks/" + lock.Files[0].CID.String(), pinnedBytes},
		{"blocks/" + stray.String(), strayBytes},
		{"lock.json", enc},
	} {
		writeTarEntry(t, tw, e.name, e.b)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	dst, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err == nil {
		t.Fatalf("expected error for unpinned block")
	}
}

func makeDeterministicTar(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	writeTarEntry(t, tw, name, content)
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeTarEntry(t *testing.T, tw *tar.Writer, name string, content []byte) {
	t.Helper()
	h := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  time.Unix(0, 0).UTC(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(h); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
}
