// Package keys provides the signing primitives for schema snapshot locks.
//
// Locks pin the exact schema bytes a code-generation run used; signing one
// states that a named key holder produced or reviewed that pin. Ed25519 over
// sha256 is the required algorithm; Dilithium3 over a selectable digest is
// available where a post-quantum signature is wanted alongside.
package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Algorithm names as they appear in lock signature blocks.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("keys: unsupported hash algorithm: %q", hashAlg)
	}
}

// SignEd25519SHA256 returns a base64 signature over sha256(message).
func SignEd25519SHA256(message []byte, privateKey ed25519.PrivateKey) string {
	digest := sha256.Sum256(message)
	sig := ed25519.Sign(privateKey, digest[:])
	return base64.StdEncoding.EncodeToString(sig)
}

// VerifyEd25519SHA256 checks a base64 signature over sha256(message).
func VerifyEd25519SHA256(message []byte, publicKey ed25519.PublicKey, sigB64 string) error {
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("keys: malformed signature: %w", err)
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("keys: bad ed25519 public key length %d", len(publicKey))
	}
	digest := sha256.Sum256(message)
	if !ed25519.Verify(publicKey, digest[:], sig) {
		return fmt.Errorf("keys: ed25519 signature verification failed")
	}
	return nil
}

// SignDilithium3 returns a base64 dilithium3 signature over hash(message).
// hashAlg must be one of: sha256, sha512, sha3-256.
func SignDilithium3(message []byte, hashAlg string, privateKey *mode3.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("keys: missing private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return "", err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest, sig)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifyDilithium3 checks a base64 dilithium3 signature over hash(message).
func VerifyDilithium3(message []byte, hashAlg string, publicKey *mode3.PublicKey, sigB64 string) error {
	if publicKey == nil {
		return fmt.Errorf("keys: missing public key")
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("keys: malformed signature: %w", err)
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return err
	}
	if !mode3.Verify(publicKey, digest, sig) {
		return fmt.Errorf("keys: dilithium3 signature verification failed")
	}
	return nil
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}

// FormatPublicKey renders a public key as "<alg>:<base64>", the form lock
// signature blocks carry.
func FormatPublicKey(alg string, raw []byte) string {
	return alg + ":" + base64.StdEncoding.EncodeToString(raw)
}

// ParsePublicKey splits a "<alg>:<base64>" key string.
func ParsePublicKey(s string) (alg string, raw []byte, err error) {
	alg, b64, ok := strings.Cut(s, ":")
	if !ok || alg == "" {
		return "", nil, fmt.Errorf("keys: malformed public key %q", s)
	}
	raw, err = base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, fmt.Errorf("keys: malformed public key %q: %w", s, err)
	}
	return alg, raw, nil
}
