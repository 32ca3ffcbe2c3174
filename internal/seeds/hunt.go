package seeds

import (
	"fmt"
	"log"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/hunt"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedGroups creates the listed groups, skipping names that already exist.
func SeedGroups(groups []seedGroup) error {
	created := 0
	for _, g := range groups {
		var existing hunt.Group
		err := db.DB.First(&existing, "name = ?", g.Name).Error

		if err == nil {
			log.Printf("⚠️ Group exists, skipping: %s", g.Name)
			continue
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on group %s: %w", g.Name, err)
		}

		group := hunt.Group{
			GroupID:     uuid.NewString(),
			Name:        g.Name,
			Description: g.Description,
			CreatedAt:   time.Now(),
		}
		if err := db.DB.Create(&group).Error; err != nil {
			return fmt.Errorf("failed to create group %s: %w", g.Name, err)
		}
		created++
	}

	log.Printf("✅ Seeded %d groups", created)
	return nil
}

// SeedTasks creates tasks keyed by description and assigns them to their
// groups by name. Existing tasks keep their rows; missing assignments are
// filled in.
func SeedTasks(tasks []seedTask) error {
	created := 0
	for _, t := range tasks {
		var task hunt.Task
		err := db.DB.First(&task, "description = ?", t.Description).Error

		if err == gorm.ErrRecordNotFound {
			unlock := t.UnlockDate
			if unlock.IsZero() {
				unlock = time.Now()
			}
			task = hunt.Task{
				TaskID:      uuid.NewString(),
				Description: t.Description,
				AIPrompt:    t.AIPrompt,
				UnlockDate:  unlock,
				CreatedAt:   time.Now(),
			}
			if err := db.DB.Create(&task).Error; err != nil {
				return fmt.Errorf("failed to create task %q: %w", t.Description, err)
			}
			created++
		} else if err != nil {
			return fmt.Errorf("DB error on task %q: %w", t.Description, err)
		}

		for _, groupName := range t.Groups {
			var group hunt.Group
			if err := db.DB.First(&group, "name = ?", groupName).Error; err != nil {
				return fmt.Errorf("task %q references unknown group %s: %w", t.Description, groupName, err)
			}

			var assignment hunt.TaskGroup
			err := db.DB.
				Where("task_id = ? AND group_id = ?", task.TaskID, group.GroupID).
				First(&assignment).Error
			if err == nil {
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("DB error on assignment %q -> %s: %w", t.Description, groupName, err)
			}

			assignment = hunt.TaskGroup{
				ID:        uuid.NewString(),
				TaskID:    task.TaskID,
				GroupID:   group.GroupID,
				CreatedAt: time.Now(),
			}
			if err := db.DB.Create(&assignment).Error; err != nil {
				return fmt.Errorf("failed to assign task %q to %s: %w", t.Description, groupName, err)
			}
		}
	}

	log.Printf("✅ Seeded %d tasks", created)
	return nil
}
