// Package testkit holds the conformance suite every BlobStore backend must
// pass. Backend tests call RunConformance with a constructor for a fresh,
// isolated store.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/deepcare/ble-data-transfer-go/cidutil"
	"github.com/deepcare/ble-data-transfer-go/storage"
)

// NewStore constructs a fresh, empty store for a test. The returned store
// MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.BlobStore

func RunConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := []byte("syntax = \"proto3\";\npackage deepcare.transfer_data;\n")

		id, err := s.Put(want)
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		wantID, err := cidutil.Sum(want)
		if err != nil {
			t.Fatalf("cidutil.Sum: %v", err)
		}
		if !id.Equals(wantID) {
			t.Fatalf("Put CID: got %s want %s", id, wantID)
		}

		got, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		b := []byte("same bytes")

		id1, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put(1): %v", err)
		}
		id2, err := s.Put(b)
		if err != nil {
			t.Fatalf("Put(2): %v", err)
		}
		if !id1.Equals(id2) {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		b := []byte("missing blob")
		id, err := cidutil.Sum(b)
		if err != nil {
			t.Fatalf("cidutil.Sum: %v", err)
		}

		if s.Has(id) {
			t.Fatalf("Has returned true for a missing CID")
		}
		if _, err := s.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing: got %v want ErrNotFound", err)
		}

		if _, err := s.Put(b); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if !s.Has(id) {
			t.Fatalf("Has returned false after Put")
		}
	})

	t.Run("UndefinedCID", func(t *testing.T) {
		s := newStore(t)
		if s.Has(cid.Undef) {
			t.Fatalf("Has(cid.Undef) must be false")
		}
		if _, err := s.Get(cid.Undef); err == nil {
			t.Fatalf("Get(cid.Undef) must fail")
		}
	})

	t.Run("DistinctBlobsDistinctCIDs", func(t *testing.T) {
		s := newStore(t)
		id1, err := s.Put([]byte("blob one"))
		if err != nil {
			t.Fatalf("Put(1): %v", err)
		}
		id2, err := s.Put([]byte("blob two"))
		if err != nil {
			t.Fatalf("Put(2): %v", err)
		}
		if id1.Equals(id2) {
			t.Fatalf("distinct blobs produced the same CID")
		}
	})
}
