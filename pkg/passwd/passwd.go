package passwd

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/GehirnInc/crypt/apr1_crypt"
	"golang.org/x/crypto/bcrypt"
)

// ErrEncodeUnsupported reports an attempt to encode with an import-only
// scheme.
var ErrEncodeUnsupported = errors.New("passwd: scheme is verify-only")

// Encode encodes a plaintext password under the given scheme and returns the
// persisted (tag, encoded) pair.
func Encode(plaintext string, scheme Scheme) (tag, encoded string, err error) {
	switch scheme.Kind {
	case KindPlaintext:
		return scheme.Tag(), plaintext, nil
	case KindBcrypt:
		hash, err := bcrypt.GenerateFromPassword(digest(plaintext), scheme.Difficulty)
		if err != nil {
			return "", "", err
		}
		return scheme.Tag(), string(hash), nil
	default:
		return "", "", ErrEncodeUnsupported
	}
}

// Verify checks a plaintext password against a stored (tag, encoded) pair.
// It fails closed: unknown or malformed tags and undecodable stored values
// all report false.
func Verify(plaintext, tag, encoded string) bool {
	scheme, err := ParseTag(tag)
	if err != nil {
		return false
	}

	switch scheme.Kind {
	case KindPlaintext:
		return subtle.ConstantTimeCompare([]byte(plaintext), []byte(encoded)) == 1
	case KindBcrypt:
		// The stored hash carries its own cost; any recorded difficulty
		// verifies regardless of the currently configured one.
		return bcrypt.CompareHashAndPassword([]byte(encoded), digest(plaintext)) == nil
	case KindApacheMD5:
		return apr1_crypt.New().Verify(encoded, []byte(plaintext)) == nil
	default:
		return false
	}
}

// digest pre-hashes the password so bcrypt never sees more than its 72-byte
// input ceiling. Base64 of a SHA-256 sum is 44 bytes and never contains a
// NUL, which raw digest bytes can. Stored bcrypt values must have been
// produced from this same base64 form; hashes fed the raw 32 digest bytes
// will not verify. Databases imported from elsewhere carry over cleanly
// only for plaintext and apache_md5 rows.
func digest(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
