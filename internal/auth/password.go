package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost 12 puts one hash at roughly 100-300ms on current
// hardware: slow enough to make offline brute force expensive, fast
// enough that login latency stays tolerable.
const bcryptCost = 12

// passwordSymbols is the fixed punctuation set the policy accepts.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// HashPassword produces a salted bcrypt hash of the plaintext.
// bcrypt generates a fresh salt per call, so two users with the same
// password never share a hash. A non-nil error means no usable hash
// was produced — callers must treat it as fatal to the operation.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether plaintext matches the stored hash.
// bcrypt's comparison is constant-time with respect to the plaintext,
// so mismatch position doesn't leak through timing.
func ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword applies the acceptance policy and returns one
// message per violated rule. An empty slice means the password is
// acceptable. This runs BEFORE hashing; the hasher itself accepts
// anything.
func ValidatePassword(password string) []string {
	var errs []string

	// Characters, not bytes: a multi-byte rune counts once.
	if utf8.RuneCountInString(password) < 8 {
		errs = append(errs, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain at least one digit")
	}
	if !hasSymbol {
		errs = append(errs, `password must contain at least one special character (!@#$%^&*(),.?":{}|<>)`)
	}

	return errs
}
