package library

import (
	"log"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/storage"
)

var store storage.ObjectStore

func Init(objStore storage.ObjectStore) {
	store = objStore

	if err := db.EnsureSchema(db.DB, "hunt"); err != nil {
		log.Fatal("Failed to ensure schema hunt: ", err)
	}

	if err := db.DB.AutoMigrate(&Photo{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
