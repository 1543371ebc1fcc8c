package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore is a minimal local-first store for ed25519 signing keys.
//
// Private keys are stored as 0600 hex seed files under Directory; the
// matching public key is kept beside them for convenience. This is a local
// utility surface, not part of the lock format contract.
type KeyStore struct {
	Directory string
}

// DefaultDirectory returns ~/.deepcare/keys.
func DefaultDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".deepcare", "keys"), nil
}

// OpenKeyStore opens (creating if needed) a keystore at directory, or the
// default directory when directory is empty.
func OpenKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, err
	}
	return &KeyStore{Directory: directory}, nil
}

func validName(name string) error {
	if name == "" {
		return errors.New("keys: key name is required")
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("keys: invalid key name %q", name)
	}
	return nil
}

func (ks *KeyStore) seedPath(name string) string {
	return filepath.Join(ks.Directory, name+".seed")
}

func (ks *KeyStore) pubPath(name string) string {
	return filepath.Join(ks.Directory, name+".pub")
}

// Generate creates and stores a new ed25519 key under name.
// The seed file is written with 0600 permissions.
func (ks *KeyStore) Generate(name string) (ed25519.PublicKey, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(ks.seedPath(name)); err == nil {
		return nil, fmt.Errorf("keys: key %q already exists", name)
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	if err := os.WriteFile(ks.seedPath(name), []byte(hex.EncodeToString(seed)+"\n"), 0o600); err != nil {
		return nil, err
	}
	pubLine := FormatPublicKey(AlgEd25519, pub) + "\n"
	if err := os.WriteFile(ks.pubPath(name), []byte(pubLine), 0o644); err != nil {
		return nil, err
	}
	return pub, nil
}

// Load returns the private key stored under name.
func (ks *KeyStore) Load(name string) (ed25519.PrivateKey, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(ks.seedPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("keys: unknown key %q", name)
		}
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(b)))
	if err != nil {
		return nil, fmt.Errorf("keys: corrupt seed file for %q: %w", name, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("keys: seed for %q has length %d, want %d", name, len(seed), ed25519.SeedSize)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// List returns the names of stored keys, sorted.
func (ks *KeyStore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := strings.CutSuffix(e.Name(), ".seed"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}
