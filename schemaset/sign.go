package schemaset

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"github.com/deepcare/ble-data-transfer-go/keys"
)

// ErrUnsigned reports a lock carrying no ed25519 signature.
var ErrUnsigned = errors.New("schemaset: lock has no ed25519 signature")

// SignEd25519 appends an ed25519-over-sha256 signature to the lock. This is
// the required signature scheme; every published lock carries at least one.
func SignEd25519(l *Lock, privateKey ed25519.PrivateKey) error {
	msg, err := l.SignedBytes()
	if err != nil {
		return err
	}
	pub, ok := privateKey.Public().(ed25519.PublicKey)
	if !ok {
		return errors.New("schemaset: bad ed25519 private key")
	}
	l.Signatures = append(l.Signatures, Signature{
		Alg:       keys.AlgEd25519,
		HashAlg:   "sha256",
		PublicKey: keys.FormatPublicKey(keys.AlgEd25519, pub),
		Signature: keys.SignEd25519SHA256(msg, privateKey),
	})
	return nil
}

// SignDilithium3 appends a dilithium3 signature over the chosen digest
// (sha256, sha512 or sha3-256).
func SignDilithium3(l *Lock, hashAlg string, privateKey *mode3.PrivateKey) error {
	msg, err := l.SignedBytes()
	if err != nil {
		return err
	}
	sig, err := keys.SignDilithium3(msg, hashAlg, privateKey)
	if err != nil {
		return err
	}
	l.Signatures = append(l.Signatures, Signature{
		Alg:       keys.AlgDilithium3,
		HashAlg:   hashAlg,
		PublicKey: keys.FormatPublicKey(keys.AlgDilithium3, privateKey.Public().(*mode3.PublicKey).Bytes()),
		Signature: sig,
	})
	return nil
}

func verifyOne(msg []byte, s Signature) error {
	alg, raw, err := keys.ParsePublicKey(s.PublicKey)
	if err != nil {
		return err
	}
	if alg != s.Alg {
		return fmt.Errorf("schemaset: signature alg %q does not match key alg %q", s.Alg, alg)
	}
	switch s.Alg {
	case keys.AlgEd25519:
		if s.HashAlg != "sha256" {
			return fmt.Errorf("schemaset: ed25519 signatures use sha256, got %q", s.HashAlg)
		}
		return keys.VerifyEd25519SHA256(msg, ed25519.PublicKey(raw), s.Signature)
	case keys.AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(raw); err != nil {
			return fmt.Errorf("schemaset: invalid dilithium3 public key: %w", err)
		}
		return keys.VerifyDilithium3(msg, s.HashAlg, &pk, s.Signature)
	default:
		return fmt.Errorf("schemaset: unsupported signature algorithm %q", s.Alg)
	}
}

// VerifySignatures checks every signature on the lock and requires at least
// one valid ed25519 signature. A lock whose signatures partly verify is
// rejected outright.
func VerifySignatures(l *Lock) error {
	msg, err := l.SignedBytes()
	if err != nil {
		return err
	}
	haveEd := false
	for i, s := range l.Signatures {
		if err := verifyOne(msg, s); err != nil {
			return fmt.Errorf("schemaset: signature %d: %w", i, err)
		}
		if s.Alg == keys.AlgEd25519 {
			haveEd = true
		}
	}
	if !haveEd {
		return ErrUnsigned
	}
	return nil
}
