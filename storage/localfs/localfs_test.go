package localfs

import (
	"os"
	"testing"

	"github.com/deepcare/ble-data-transfer-go/cidutil"
	"github.com/deepcare/ble-data-transfer-go/storage"
	"github.com/deepcare/ble-data-transfer-go/storage/testkit"
)

func TestLocalFS_Conformance(t *testing.T) {
	testkit.RunConformance(t, func(t *testing.T) storage.BlobStore {
		t.Helper()
		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return s
	})
}

func TestLocalFS_EmptyRootRejected(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("New(\"\") must fail")
	}
}

func TestLocalFS_RejectMutationByOverwrite(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	orig := []byte("message TransferData {}")
	id, err := s.Put(orig)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Corrupt the stored blob out-of-band.
	path := s.pathFor(id)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// Get must detect the hash mismatch.
	if _, err := s.Get(id); err != storage.ErrCIDMismatch {
		t.Fatalf("Get corrupted: got %v want ErrCIDMismatch", err)
	}

	// Put must not repair or overwrite the corrupted blob.
	if _, err := s.Put(orig); err != storage.ErrImmutable {
		t.Fatalf("Put after corruption: got %v want ErrImmutable", err)
	}

	// Sanity: the CID is still derived from the original bytes.
	wantID, err := cidutil.Sum(orig)
	if err != nil {
		t.Fatalf("cidutil.Sum: %v", err)
	}
	if !id.Equals(wantID) {
		t.Fatalf("unexpected CID: got %s want %s", id, wantID)
	}
}
