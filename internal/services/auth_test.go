package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestAuthService(t *testing.T) *authService {
	t.Helper()
	return &authService{
		log:          testLogger(t),
		jwtSecretKey: "test-secret",
		accessTTL:    time.Hour,
		refreshTTL:   24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	as := newTestAuthService(t)
	userID := uuid.New()

	token, err := as.generateAccessToken(userID)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}
	got, err := as.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if got != userID {
		t.Fatalf("user id: got %s want %s", got, userID)
	}
}

func TestParseAccessTokenRejectsWrongKey(t *testing.T) {
	as := newTestAuthService(t)
	token, err := as.generateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}

	other := newTestAuthService(t)
	other.jwtSecretKey = "different-secret"
	if _, err := other.ParseAccessToken(token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	as := newTestAuthService(t)
	if _, err := as.ParseAccessToken("not.a.jwt"); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestSplitRefreshToken(t *testing.T) {
	id := uuid.New()
	tokenID, secret, err := splitRefreshToken(id.String() + ".s3cret")
	if err != nil {
		t.Fatalf("splitRefreshToken: %v", err)
	}
	if tokenID != id {
		t.Fatalf("token id: got %s want %s", tokenID, id)
	}
	if secret != "s3cret" {
		t.Fatalf("secret: got %q", secret)
	}

	for _, raw := range []string{"", "noseparator", id.String() + ".", "notauuid.secret"} {
		if _, _, err := splitRefreshToken(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestRandomSecretIsUniqueAndHex(t *testing.T) {
	a, err := randomSecret()
	if err != nil {
		t.Fatalf("randomSecret: %v", err)
	}
	b, err := randomSecret()
	if err != nil {
		t.Fatalf("randomSecret: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct secrets")
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Fatalf("unexpected secret format: %q", a)
	}
	if hashSecret(a) == hashSecret(b) {
		t.Fatal("hash collision between distinct secrets")
	}
}
