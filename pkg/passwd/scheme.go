// Package passwd encodes and verifies member passwords under a pluggable
// scheme. The persisted representation is a string tag ("plaintext",
// "bcrypt_12", "apache_md5") so historical records keep verifying after the
// configured scheme changes; in code the scheme is a tagged variant for
// exhaustive dispatch.
package passwd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Kind int

const (
	// KindPlaintext stores the password as-is. Test/bootstrap only.
	KindPlaintext Kind = iota
	// KindBcrypt is SHA-256-then-bcrypt at a recorded cost factor.
	KindBcrypt
	// KindApacheMD5 is the legacy $apr1$ crypt format. Import-only: existing
	// values verify, new passwords are never encoded with it.
	KindApacheMD5
)

const (
	tagPlaintext  = "plaintext"
	tagApacheMD5  = "apache_md5"
	tagBcryptStem = "bcrypt_"
)

var ErrUnknownScheme = errors.New("passwd: unknown scheme tag")

// Scheme identifies a credential encoding and its parameters.
type Scheme struct {
	Kind       Kind
	Difficulty int // bcrypt cost factor; meaningful only for KindBcrypt
}

// Tag returns the persisted string form of the scheme.
func (s Scheme) Tag() string {
	switch s.Kind {
	case KindBcrypt:
		return tagBcryptStem + strconv.Itoa(s.Difficulty)
	case KindApacheMD5:
		return tagApacheMD5
	default:
		return tagPlaintext
	}
}

// kindRank orders scheme kinds by protective strength. Bcrypt outranks
// the legacy schemes; plaintext ranks last.
func kindRank(k Kind) int {
	switch k {
	case KindBcrypt:
		return 2
	case KindApacheMD5:
		return 1
	default:
		return 0
	}
}

// WeakerThan reports whether s offers strictly less protection than
// other. Between two bcrypt schemes the cost factor decides. Credential
// re-encoding must only ever move to a scheme that is not weaker than
// the stored one.
func (s Scheme) WeakerThan(other Scheme) bool {
	if s.Kind != other.Kind {
		return kindRank(s.Kind) < kindRank(other.Kind)
	}
	if s.Kind == KindBcrypt {
		return s.Difficulty < other.Difficulty
	}
	return false
}

// ParseTag parses a persisted scheme tag. Unknown or malformed tags return
// ErrUnknownScheme; callers verifying credentials must treat that as a
// non-match, never as a crash.
func ParseTag(tag string) (Scheme, error) {
	switch {
	case tag == tagPlaintext:
		return Scheme{Kind: KindPlaintext}, nil
	case tag == tagApacheMD5:
		return Scheme{Kind: KindApacheMD5}, nil
	case strings.HasPrefix(tag, tagBcryptStem):
		difficulty, err := strconv.Atoi(strings.TrimPrefix(tag, tagBcryptStem))
		if err != nil || difficulty < bcrypt.MinCost || difficulty > bcrypt.MaxCost {
			return Scheme{}, fmt.Errorf("%w: %q", ErrUnknownScheme, tag)
		}
		return Scheme{Kind: KindBcrypt, Difficulty: difficulty}, nil
	default:
		return Scheme{}, fmt.Errorf("%w: %q", ErrUnknownScheme, tag)
	}
}
