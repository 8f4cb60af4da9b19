package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/adam-gaia/checklints/internal/types"
)

// HashReader streams r through SHA-256 in fixed-size chunks and returns the
// lower-case hex digest.
func HashReader(r io.Reader) (string, error) {
	hash := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := r.Read(buf)
		hash.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// HashFile computes the SHA-256 digest of a file's contents.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	sum, err := HashReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to compute checksum for %s: %w", path, err)
	}
	return sum, nil
}

// HashBytes computes the SHA-256 digest of an in-memory buffer.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fingerprintDoc is the canonical form hashed into a check fingerprint.
type fingerprintDoc struct {
	Type   types.CheckKind `json:"type"`
	Fields types.CheckType `json:"fields"`
}

// Fingerprint hashes a check variant's type tag and fields. Identical
// variants fingerprint identically regardless of which checklist declared them.
func Fingerprint(ct types.CheckType) (string, error) {
	data, err := json.Marshal(fingerprintDoc{Type: ct.Kind(), Fields: ct})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint %s check: %w", ct.Kind(), err)
	}
	return HashBytes(data), nil
}
