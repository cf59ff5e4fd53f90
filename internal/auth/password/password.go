// Package password hashes and checks the admin password.
package password

import "golang.org/x/crypto/bcrypt"

const cost = 12

// Hash returns a bcrypt hash suitable for APP_ADMIN_PASSWORD_HASH.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare returns nil when plain matches hash.
func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
