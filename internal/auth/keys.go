// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileName is the token key file inside the data directory.
const KeyFileName = "token.key"

// PASETO v4.local needs a 256-bit key.
const keySize = 32

// LoadOrGenerateKey reads the hex-encoded token key from dataDir, creating
// one with 0600 permissions on first start.
func LoadOrGenerateKey(dataDir string) ([]byte, error) {
	keyPath := filepath.Join(dataDir, KeyFileName)

	//#nosec G304 -- path is built from the configured data dir
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		key, decodeErr := hex.DecodeString(strings.TrimSpace(string(raw)))
		if decodeErr != nil {
			return nil, fmt.Errorf("token key %s is not hex: %w", keyPath, decodeErr)
		}
		if len(key) != keySize {
			return nil, fmt.Errorf("token key %s: want %d bytes, got %d", keyPath, keySize, len(key))
		}
		return key, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read token key: %w", err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate token key: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("write token key: %w", err)
	}

	return key, nil
}
