package auth

import (
	"strings"
	"testing"

	"nexium-server/internal/shared/config"
)

func init() {
	config.GlobalConfig = &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret-test-secret-test-secret!"},
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(42, "nova")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateSessionToken(token)
	if err != nil {
		t.Fatal(err)
	}

	if claims.PlayerID != 42 {
		t.Errorf("player id = %d, want 42", claims.PlayerID)
	}
	if claims.Username != "nova" {
		t.Errorf("username = %q, want nova", claims.Username)
	}
}

func TestValidateSessionTokenRejectsTampering(t *testing.T) {
	token, err := GenerateSessionToken(42, "nova")
	if err != nil {
		t.Fatal(err)
	}

	// Corrupt the signature segment.
	parts := strings.Split(token, ".")
	replacement := byte('x')
	if parts[2][0] == 'x' {
		replacement = 'y'
	}
	parts[2] = string(replacement) + parts[2][1:]

	if _, err := ValidateSessionToken(strings.Join(parts, ".")); err == nil {
		t.Error("tampered token validated")
	}
}

func TestValidateSessionTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateSessionToken("not-a-token"); err == nil {
		t.Error("garbage token validated")
	}
}
