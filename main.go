package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/SnapQuest/SQ-Backend/internal/auth"
	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/hunt"
	"github.com/SnapQuest/SQ-Backend/internal/library"
	"github.com/SnapQuest/SQ-Backend/internal/live"
	"github.com/SnapQuest/SQ-Backend/internal/middleware"
	"github.com/SnapQuest/SQ-Backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	store, err := storage.NewDiskStore(uploadDir, "/uploads")
	if err != nil {
		log.Fatal("Failed to init object store: ", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("[main] GEMINI_API_KEY is not set; submissions will be safely rejected")
	}
	judge := hunt.NewGeminiJudge(apiKey)

	hub := live.NewHub()
	go hub.Run()

	auth.Init()
	library.Init(store)
	hunt.Init(store, judge, hub)

	fetcher := auth.SessionInfo{}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/library", library.SetupRoutes(fetcher))
	r.Mount("/hunt", hunt.SetupRoutes(fetcher))

	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
