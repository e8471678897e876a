package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash from a plaintext password. Costs
// outside bcrypt's supported range fall back to the library default so
// a misconfigured BCRYPT_COST cannot make registration fail.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
