package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuthModule(t *testing.T) *AuthModule {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return NewAuthModule("test-secret", "admin", string(hash))
}

func TestLoginAndValidateRoundTrip(t *testing.T) {
	a := newTestAuthModule(t)

	token, err := a.LoginWithJWT("admin", "hunter2")
	if err != nil {
		t.Fatalf("expected login to succeed: %v", err)
	}

	sub, err := a.ValidateTokenJWT("Bearer " + token)
	if err != nil {
		t.Fatalf("expected token to validate: %v", err)
	}
	if sub != "admin" {
		t.Errorf("expected subject admin, got %q", sub)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAuthModule(t)

	if _, err := a.LoginWithJWT("admin", "wrong"); err == nil {
		t.Error("expected wrong password to be rejected")
	}
	if _, err := a.LoginWithJWT("root", "hunter2"); err == nil {
		t.Error("expected unknown user to be rejected")
	}
}

func TestValidateRejectsForeignToken(t *testing.T) {
	a := newTestAuthModule(t)
	other := newTestAuthModule(t)
	other.JWTSecret = "other-secret"

	token, err := other.LoginWithJWT("admin", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.ValidateTokenJWT("Bearer " + token); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestValidateRejectsMissingToken(t *testing.T) {
	a := newTestAuthModule(t)
	if _, err := a.ValidateTokenJWT(""); err == nil {
		t.Error("expected empty header to be rejected")
	}
}
