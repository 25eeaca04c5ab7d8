// internal/auth/auth.go
package auth

import (
	"atm-backend/internal/domain"
	"atm-backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// ATM PINs are 4 to 6 digits.
const (
	minPINLength = 4
	maxPINLength = 6
)

// ValidatePIN checks the PIN format before hashing. The raw PIN is never
// stored or logged.
func ValidatePIN(pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return util.ErrAuth
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return util.ErrAuth
		}
	}
	return nil
}

// HashPIN hashes a PIN with bcrypt for storage.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyUser compares the supplied PIN against a user's stored hash. bcrypt's
// comparison is constant-time. A mismatch surfaces as util.ErrAuth, the same
// error returned for an unknown account, so callers cannot distinguish the
// two failure modes.
func VerifyUser(user *domain.User, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		return util.ErrAuth
	}
	return nil
}
