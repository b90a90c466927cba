package security

import "golang.org/x/crypto/bcrypt"

// PasswordHasher derives and checks bcrypt digests for user credentials.
// Costs outside bcrypt's valid range fall back to the library default, so
// NewPasswordHasher(0) gives the production setting and tests can pass
// bcrypt.MinCost to keep hashing cheap.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify returns nil when plain matches the stored digest.
func (h *PasswordHasher) Verify(plain, digest string) error {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
}
