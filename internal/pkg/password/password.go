package password

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the minimum accepted password length
	MinLength = 8
)

// cost is a variable so tests can lower it
var cost = DefaultCost

// Hash hashes a password using bcrypt (salted)
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// dummy is a hash of a fixed password at the current cost, built on first use
var dummy struct {
	sync.Mutex
	cost int
	hash []byte
}

func dummyHash() []byte {
	dummy.Lock()
	defer dummy.Unlock()
	if dummy.hash == nil || dummy.cost != cost {
		dummy.hash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), cost)
		dummy.cost = cost
	}
	return dummy.hash
}

// VerifyMissing does the bcrypt work of Verify for an account that does not
// exist, so login timing does not reveal which emails are registered.
func VerifyMissing(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}

// HashToken hashes a token using SHA256 (for password reset tokens)
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidatePassword checks if password meets requirements
func ValidatePassword(password string) bool {
	// bcrypt ignores everything past 72 bytes
	return len(password) >= MinLength && len(password) <= 72
}

// UseMinCost switches hashing to bcrypt.MinCost; intended for tests.
func UseMinCost() {
	cost = bcrypt.MinCost
}
