package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestSplitToken verifies that only well-formed "id.secret" tokens pass and
// everything else short-circuits before any store lookup.
func TestSplitToken(t *testing.T) {
	cases := []struct {
		name  string
		token string
		ok    bool
	}{
		{"valid", "abc123.def456", true},
		{"empty", "", false},
		{"no separator", "abc123def456", false},
		{"empty secret", "abc123.", false},
		{"empty id", ".def456", false},
		{"extra separator", "abc.def.ghi", false},
		{"only separator", ".", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, secret, ok := splitToken(tc.token)
			if ok != tc.ok {
				t.Fatalf("splitToken(%q) ok = %v, want %v", tc.token, ok, tc.ok)
			}
			if ok && (id == "" || secret == "") {
				t.Errorf("splitToken(%q) returned empty part: id=%q secret=%q", tc.token, id, secret)
			}
		})
	}
}

// TestValidateSessionMalformedToken verifies that a malformed token resolves
// to no session without touching the database (db.DB is nil here; a lookup
// would panic).
func TestValidateSessionMalformedToken(t *testing.T) {
	for _, token := range []string{"", "nodot", ".secret", "id.", "a.b.c"} {
		session, err := ValidateSession(token)
		if err != nil {
			t.Errorf("ValidateSession(%q) error = %v, want nil", token, err)
		}
		if session != nil {
			t.Errorf("ValidateSession(%q) = %+v, want nil", token, session)
		}
	}
}

// TestHashSecretRoundTrip verifies that a secret matches its own digest and
// nothing else.
func TestHashSecretRoundTrip(t *testing.T) {
	hash := HashSecret("some-secret")

	if !secretHashEqual(HashSecret("some-secret"), hash) {
		t.Error("digest of the same secret should match")
	}
	if secretHashEqual(HashSecret("other-secret"), hash) {
		t.Error("digest of a different secret should not match")
	}
	if secretHashEqual("not base64!!!", hash) {
		t.Error("undecodable digest should never match")
	}
}

// insertSessionRow writes a session row with an explicit CreatedAt and returns
// the matching token. The database connection comes from the package TestMain.
func insertSessionRow(t *testing.T, createdAt time.Time) (sessionID, token string) {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	sessionID = uuid.NewString()
	secret := uuid.NewString()
	session := Session{
		SessionID:  sessionID,
		UserID:     uuid.NewString(),
		SecretHash: HashSecret(secret),
		CreatedAt:  createdAt,
	}
	if err := db.DB.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("session_id = ?", sessionID).Delete(&Session{})
	})

	return sessionID, sessionID + tokenSeparator + secret
}

// sessionRowExists reports whether the session row is still present.
func sessionRowExists(t *testing.T, sessionID string) bool {
	t.Helper()
	var row Session
	err := db.DB.First(&row, "session_id = ?", sessionID).Error
	if err == gorm.ErrRecordNotFound {
		return false
	}
	if err != nil {
		t.Fatalf("lookup session: %v", err)
	}
	return true
}

// TestValidateSessionExpiredDeletesRow verifies that a session past its TTL
// resolves to nil and its row is deleted on the spot.
func TestValidateSessionExpiredDeletesRow(t *testing.T) {
	sessionID, token := insertSessionRow(t, time.Now().Add(-SessionTTL-24*time.Hour))

	session, err := ValidateSession(token)
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if session != nil {
		t.Errorf("expired session validated: %+v", session)
	}
	if sessionRowExists(t, sessionID) {
		t.Error("expired session row should have been deleted")
	}
}

// TestValidateSessionWrongSecretKeepsRow verifies that a token with the right
// session id but the wrong secret resolves to nil while the row survives, so a
// guesser cannot knock out a legitimate session.
func TestValidateSessionWrongSecretKeepsRow(t *testing.T) {
	sessionID, token := insertSessionRow(t, time.Now())

	session, err := ValidateSession(sessionID + tokenSeparator + "notthesecret")
	if err != nil {
		t.Fatalf("ValidateSession: %v", err)
	}
	if session != nil {
		t.Errorf("wrong secret validated: %+v", session)
	}
	if !sessionRowExists(t, sessionID) {
		t.Fatal("wrong secret must not delete the session row")
	}

	// The legitimate token still works afterwards.
	session, err = ValidateSession(token)
	if err != nil {
		t.Fatalf("ValidateSession with real token: %v", err)
	}
	if session == nil || session.SessionID != sessionID {
		t.Errorf("legitimate token failed after a wrong-secret attempt: %+v", session)
	}
}

// TestGenerateSecureRandomString verifies length, alphabet membership, and
// that two draws differ.
func TestGenerateSecureRandomString(t *testing.T) {
	first, err := generateSecureRandomString()
	if err != nil {
		t.Fatalf("generateSecureRandomString: %v", err)
	}
	second, err := generateSecureRandomString()
	if err != nil {
		t.Fatalf("generateSecureRandomString: %v", err)
	}

	if len(first) != 24 {
		t.Errorf("expected 24 characters, got %d", len(first))
	}
	for _, r := range first {
		if !strings.ContainsRune(tokenAlphabet, r) {
			t.Errorf("character %q is outside the token alphabet", r)
		}
	}
	if strings.Contains(first, tokenSeparator) {
		t.Errorf("token parts must never contain the separator: %q", first)
	}
	if first == second {
		t.Error("two random strings should not collide")
	}
}
