package helpers

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords with bcrypt. The cost is fixed at
// construction time from configuration; callers cannot lower it per request.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash hashes the plain text password. The salt is generated internally and
// embedded in the returned hash.
func (h *Hasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash with a plain password. A mismatch is a
// normal false result, never an error.
func (h *Hasher) Verify(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
