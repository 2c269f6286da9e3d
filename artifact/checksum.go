package artifact

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// ErrChecksumMismatch reports that an artifact no longer matches the
// checksum recorded in its run manifest.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Checksum returns the hex-encoded BLAKE2b-256 digest of data.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
