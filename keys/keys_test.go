package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"testing"
)

func testKeypair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

func TestEd25519SignVerify(t *testing.T) {
	pub, priv := testKeypair(t)
	msg := []byte("lock bytes")

	sig := SignEd25519SHA256(msg, priv)
	if err := VerifyEd25519SHA256(msg, pub, sig); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := VerifyEd25519SHA256([]byte("other bytes"), pub, sig); err == nil {
		t.Fatalf("Verify must fail for a different message")
	}
	if err := VerifyEd25519SHA256(msg, pub, "not base64!"); err == nil {
		t.Fatalf("Verify must fail for malformed base64")
	}
}

func TestDilithium3SignVerify(t *testing.T) {
	pub, priv, err := GenerateDilithium3Keypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}
	msg := []byte("lock bytes")

	for _, hashAlg := range []string{"sha256", "sha512", "sha3-256"} {
		sig, err := SignDilithium3(msg, hashAlg, priv)
		if err != nil {
			t.Fatalf("Sign(%s): %v", hashAlg, err)
		}
		if err := VerifyDilithium3(msg, hashAlg, pub, sig); err != nil {
			t.Fatalf("Verify(%s): %v", hashAlg, err)
		}
		if err := VerifyDilithium3([]byte("tampered"), hashAlg, pub, sig); err == nil {
			t.Fatalf("Verify(%s) must fail for a different message", hashAlg)
		}
	}

	if _, err := SignDilithium3(msg, "md5", priv); err == nil {
		t.Fatalf("Sign must reject an unsupported hash algorithm")
	}
}

func TestPublicKeyFormatRoundTrip(t *testing.T) {
	pub, _ := testKeypair(t)
	s := FormatPublicKey(AlgEd25519, pub)

	alg, raw, err := ParsePublicKey(s)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if alg != AlgEd25519 {
		t.Fatalf("alg: got %q want %q", alg, AlgEd25519)
	}
	if !bytes.Equal(raw, pub) {
		t.Fatalf("key bytes mismatch")
	}

	if _, _, err := ParsePublicKey("nocolon"); err == nil {
		t.Fatalf("ParsePublicKey must reject a string without separator")
	}
}

func TestKeyStore(t *testing.T) {
	ks, err := OpenKeyStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}

	pub, err := ks.Generate("release")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := ks.Generate("release"); err == nil {
		t.Fatalf("Generate must refuse to overwrite an existing key")
	}

	priv, err := ks.Load("release")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(priv.Public().(ed25519.PublicKey), pub) {
		t.Fatalf("loaded key does not match generated public key")
	}

	// Signature made with the loaded key verifies against the stored public.
	sig := SignEd25519SHA256([]byte("msg"), priv)
	if err := VerifyEd25519SHA256([]byte("msg"), pub, sig); err != nil {
		t.Fatalf("Verify with stored key: %v", err)
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "release" {
		t.Fatalf("List: got %v want [release]", names)
	}

	info, err := os.Stat(ks.seedPath("release"))
	if err != nil {
		t.Fatalf("Stat seed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("seed file mode: got %v want 0600", info.Mode().Perm())
	}

	if _, err := ks.Load("missing"); err == nil {
		t.Fatalf("Load must fail for an unknown key")
	}
	if _, err := ks.Generate("../evil"); err == nil {
		t.Fatalf("Generate must reject path-escaping names")
	}
}
