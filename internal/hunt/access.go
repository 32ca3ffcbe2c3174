package hunt

import (
	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"gorm.io/gorm"
)

// EnsureGroupAccess is the single authorization chokepoint for group-scoped
// reads and writes. Admins pass without a store lookup; anonymous identities
// fail without one; everyone else needs a membership row.
func EnsureGroupAccess(identity utils.Identity, groupID string) (bool, error) {
	if identity.IsAdmin {
		return true, nil
	}
	if identity.UserID == "" {
		return false, nil
	}

	var membership UserGroup
	err := db.DB.
		Where("user_id = ? AND group_id = ?", identity.UserID, groupID).
		First(&membership).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
