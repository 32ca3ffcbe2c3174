package auth

import (
	"errors"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
)

var ErrNoSession = errors.New("no valid session")

type SessionInfo struct{}

// FindIdentityByToken validates a bearer token and hydrates the full identity
// (profile + admin flag) from it. A session pointing at a deleted user or
// profile is treated as dead and removed.
func (si SessionInfo) FindIdentityByToken(token string) (utils.Identity, error) {
	session, err := ValidateSession(token)
	if err != nil {
		return utils.Identity{}, err
	}
	if session == nil {
		return utils.Identity{}, ErrNoSession
	}

	var user User
	if err := db.DB.First(&user, "user_id = ?", session.UserID).Error; err != nil {
		_ = DeleteSession(session.SessionID)
		return utils.Identity{}, ErrNoSession
	}

	var profile Profile
	if err := db.DB.First(&profile, "profile_id = ?", user.ProfileID).Error; err != nil {
		_ = DeleteSession(session.SessionID)
		return utils.Identity{}, ErrNoSession
	}

	return utils.Identity{
		UserID:      profile.ProfileID,
		AuthID:      user.UserID,
		DisplayName: profile.DisplayName,
		IsAdmin:     profile.IsAdmin,
	}, nil
}
