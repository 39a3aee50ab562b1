package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
)

// Fingerprint identifies one version of a session file. Any change to the
// file's path, modification time or size yields a different key.
type Fingerprint struct {
	Path      string
	ModTimeNs int64
	Size      int64
}

// FingerprintFor stats path and returns its fingerprint.
func FingerprintFor(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{
		Path:      path,
		ModTimeNs: info.ModTime().UnixNano(),
		Size:      info.Size(),
	}, nil
}

// Key returns the hex SHA-256 of the length-prefixed path followed by the
// fixed-width mtime and size, so no path content can alias another entry.
func (f Fingerprint) Key() string {
	h := sha256.New()
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], uint64(len(f.Path)))
	h.Write(buf[:])
	h.Write([]byte(f.Path))
	binary.BigEndian.PutUint64(buf[:], uint64(f.ModTimeNs)) //nolint:gosec // bit pattern only
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(f.Size)) //nolint:gosec // bit pattern only
	h.Write(buf[:])

	return hex.EncodeToString(h.Sum(nil))
}
