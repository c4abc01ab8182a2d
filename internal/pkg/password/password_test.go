package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	UseMinCost()

	hash, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals the plain password")
	}
	if !Verify("correct horse", hash) {
		t.Error("Verify() = false for the right password")
	}
	if Verify("wrong horse", hash) {
		t.Error("Verify() = true for a wrong password")
	}

	again, _ := Hash("correct horse")
	if again == hash {
		t.Error("two hashes of the same password are equal")
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("token")
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
	if a != HashToken("token") {
		t.Error("HashToken is not deterministic")
	}
	if a == HashToken("token2") {
		t.Error("different tokens share a hash")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"", false},
		{"1234567", false},
		{"12345678", true},
		{strings.Repeat("a", 72), true},
		{strings.Repeat("a", 73), false},
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.password); got != tt.want {
			t.Errorf("ValidatePassword(len %d) = %v, want %v", len(tt.password), got, tt.want)
		}
	}
}

func TestVerifyMissingUsesCurrentCost(t *testing.T) {
	UseMinCost()
	t.Cleanup(UseMinCost)

	VerifyMissing("password123")
	if c, err := bcrypt.Cost(dummyHash()); err != nil || c != bcrypt.MinCost {
		t.Fatalf("dummy cost = %d, %v; want %d", c, err, bcrypt.MinCost)
	}

	cost = bcrypt.MinCost + 1
	VerifyMissing("password123")
	if c, _ := bcrypt.Cost(dummyHash()); c != bcrypt.MinCost+1 {
		t.Errorf("dummy cost = %d after cost change, want %d", c, bcrypt.MinCost+1)
	}
}
