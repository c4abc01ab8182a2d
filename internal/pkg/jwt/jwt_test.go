package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret-unit-test-secret"

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken(42, "doc@example.com", "replacement", testSecret, 7)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != 42 || claims.Email != "doc@example.com" || claims.Role != "replacement" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Subject != "42" {
		t.Errorf("subject = %q, want 42", claims.Subject)
	}
	if d := time.Until(claims.ExpiresAt.Time); d < 6*24*time.Hour || d > 7*24*time.Hour {
		t.Errorf("expires in %v, want ~7 days", d)
	}
}

func TestValidateRejects(t *testing.T) {
	valid, _ := GenerateToken(1, "a@example.com", "employer", testSecret, 1)

	expired := signed(t, Claims{
		UserID: 1,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, gojwt.SigningMethodHS256)

	foreign := signed(t, Claims{
		UserID: 1,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, gojwt.SigningMethodHS256)

	noUser := signed(t, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, gojwt.SigningMethodHS256)

	unsigned := signed(t, Claims{
		UserID: 1,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, gojwt.SigningMethodNone)

	tests := []struct {
		name   string
		token  string
		secret string
		want   error
	}{
		{"wrong secret", valid, "another-secret", ErrTokenInvalid},
		{"expired", expired, testSecret, ErrTokenExpired},
		{"foreign issuer", foreign, testSecret, ErrTokenInvalid},
		{"missing user id", noUser, testSecret, ErrTokenInvalid},
		{"alg none", unsigned, testSecret, ErrTokenInvalid},
		{"garbage", "not.a.token", testSecret, ErrTokenInvalid},
		{"empty", "", testSecret, ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.secret)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateToken() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func signed(t *testing.T, claims Claims, method gojwt.SigningMethod) string {
	t.Helper()
	var key interface{} = []byte(testSecret)
	if method == gojwt.SigningMethodNone {
		key = gojwt.UnsafeAllowNoneSignatureType
	}
	s, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}
