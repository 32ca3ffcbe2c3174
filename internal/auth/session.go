package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"gorm.io/gorm"
)

// SessionTTL bounds session age; validation deletes anything older.
const SessionTTL = 7 * 24 * time.Hour

const tokenSeparator = "."

// Lowercase alphanumerics minus lookalikes (l/1, o/0). 32 symbols so one
// random byte maps onto one symbol with a plain shift.
const tokenAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// generateSecureRandomString returns a 24-character string carrying 120 bits
// of entropy, safe for use in cookies and URLs.
func generateSecureRandomString() (string, error) {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, by := range bytes {
		b.WriteByte(tokenAlphabet[by>>3])
	}
	return b.String(), nil
}

// HashSecret is a one-way digest of a session secret. Session secrets are
// high-entropy random strings, so an unsalted fast hash is sufficient; bcrypt
// is reserved for user-chosen passwords.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// secretHashEqual compares two digests without leaking position-of-mismatch
// timing.
func secretHashEqual(a, b string) bool {
	ab, err := base64.StdEncoding.DecodeString(a)
	if err != nil {
		return false
	}
	bb, err := base64.StdEncoding.DecodeString(b)
	if err != nil {
		return false
	}
	if len(ab) != len(bb) {
		return false
	}
	return subtle.ConstantTimeCompare(ab, bb) == 1
}

// splitToken breaks an auth token into its session id and secret. Tokens are
// "id.secret"; anything else is malformed and must short-circuit before any
// store lookup.
func splitToken(token string) (sessionID, secret string, ok bool) {
	parts := strings.Split(token, tokenSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// CreateSession persists a new session for the user and returns the session id
// plus the bearer token handed to the client. The secret half of the token is
// never stored.
func CreateSession(userID string) (sessionID, token string, err error) {
	id, err := generateSecureRandomString()
	if err != nil {
		return "", "", err
	}
	secret, err := generateSecureRandomString()
	if err != nil {
		return "", "", err
	}

	session := Session{
		SessionID:  id,
		UserID:     userID,
		SecretHash: HashSecret(secret),
		CreatedAt:  time.Now(),
	}
	if err := db.DB.Create(&session).Error; err != nil {
		return "", "", err
	}

	return id, id + tokenSeparator + secret, nil
}

// ValidateSession resolves a token to its session row, or nil when the token
// is malformed, unknown, expired, or carries the wrong secret. Expired rows
// are deleted on the spot; a wrong secret leaves the row alone so a guesser
// cannot knock out a legitimate session.
func ValidateSession(token string) (*Session, error) {
	sessionID, secret, ok := splitToken(token)
	if !ok {
		return nil, nil
	}

	var session Session
	err := db.DB.First(&session, "session_id = ?", sessionID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Since(session.CreatedAt) >= SessionTTL {
		if err := DeleteSession(session.SessionID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !secretHashEqual(HashSecret(secret), session.SecretHash) {
		return nil, nil
	}

	return &session, nil
}

// DeleteSession removes a session row; deleting an absent row is a no-op.
func DeleteSession(sessionID string) error {
	return db.DB.Where("session_id = ?", sessionID).Delete(&Session{}).Error
}
