package seeds

import (
	"fmt"
	"log"

	"github.com/SnapQuest/SQ-Backend/internal/auth"
	"github.com/SnapQuest/SQ-Backend/internal/db"
	"gorm.io/gorm"
)

// SeedAdmins promotes the listed display names. This is a one-time grant:
// the persisted flag is the runtime authority afterwards, and removing a
// name from the seed file does not demote anyone.
func SeedAdmins(displayNames []string) error {
	promoted := 0
	for _, name := range displayNames {
		var profile auth.Profile
		err := db.DB.First(&profile, "display_name = ?", name).Error

		if err == gorm.ErrRecordNotFound {
			log.Printf("⚠️ No profile named %s yet, skipping admin grant", name)
			continue
		} else if err != nil {
			return fmt.Errorf("DB error on admin %s: %w", name, err)
		}

		if profile.IsAdmin {
			continue
		}

		err = db.DB.Model(&profile).Update("is_admin", true).Error
		if err != nil {
			return fmt.Errorf("failed to promote %s: %w", name, err)
		}
		promoted++
	}

	log.Printf("✅ Promoted %d admins", promoted)
	return nil
}
