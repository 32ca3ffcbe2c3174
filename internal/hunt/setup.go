package hunt

import (
	"log"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/live"
	"github.com/SnapQuest/SQ-Backend/internal/storage"
)

var (
	submissions *SubmissionService
	hub         *live.Hub
)

func Init(store storage.ObjectStore, judge Judge, liveHub *live.Hub) {
	hub = liveHub
	submissions = NewSubmissionService(store, judge, liveHub)

	if err := db.EnsureSchema(db.DB, "hunt"); err != nil {
		log.Fatal("Failed to ensure schema hunt: ", err)
	}

	err := db.DB.AutoMigrate(
		&Group{},
		&UserGroup{},
		&Task{},
		&TaskGroup{},
		&Submission{},
		&SubmissionReaction{},
		&SubmissionReactionEvent{},
	)
	if err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
