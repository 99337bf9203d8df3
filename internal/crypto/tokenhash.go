package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

const tokenSaltLen = 16

// HashToken returns a salted BLAKE3 digest of a high-entropy token, encoded
// as <salt hex>$<digest hex>.
func HashToken(token string) (string, error) {
	salt, err := RandBytes(tokenSaltLen)
	if err != nil {
		return "", err
	}
	sum := tokenDigest(salt, token)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(sum[:]), nil
}

// VerifyToken reports whether token hashes to stored.
func VerifyToken(token, stored string) bool {
	saltHex, sumHex, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) != tokenSaltLen {
		return false
	}
	want, err := hex.DecodeString(sumHex)
	if err != nil {
		return false
	}
	got := tokenDigest(salt, token)
	return subtle.ConstantTimeCompare(got[:], want) == 1
}

func tokenDigest(salt []byte, token string) [32]byte {
	buf := make([]byte, 0, len(salt)+len(token))
	buf = append(buf, salt...)
	buf = append(buf, token...)
	return blake3.Sum256(buf)
}
