package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a bcrypt hash suitable for storing in the server
// config as the admin credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether candidate matches the stored bcrypt hash.
func CheckPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
