package main

import (
	"log"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
