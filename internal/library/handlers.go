package library

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUploadBytes = 10 * 1024 * 1024

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ListHandler returns the authenticated user's photos, newest first.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var photos []Photo
	err := db.DB.
		Where("user_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&photos).Error
	if err != nil {
		writeError(w, "Failed to fetch library", http.StatusInternalServerError)
		return
	}

	writeJSON(w, photos)
}

// UploadHandler accepts a multipart image, downscales it, stores the bytes,
// and records the photo row.
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1024)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, "Image file is too large. Please choose a file smaller than 10MB.", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, "No image provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, "Failed to read upload", http.StatusInternalServerError)
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, "Image file is too large. Please choose a file smaller than 10MB.", http.StatusRequestEntityTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, "Please select a valid image file (JPG, PNG, GIF, etc.)", http.StatusBadRequest)
		return
	}

	resized, newType, err := downscaleImage(data)
	if err != nil {
		// Store the original rather than failing the upload.
		log.Printf("[library] image resize failed: %v", err)
		resized = data
	} else if newType != "" {
		contentType = newType
	}

	ext := "jpg"
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	key := fmt.Sprintf("library/%d-%s.%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	filePath, err := store.Put(key, resized, contentType)
	if err != nil {
		log.Printf("[library] object store put failed: %v", err)
		writeError(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	photo := Photo{
		PhotoID:          uuid.NewString(),
		UserID:           identity.UserID,
		FilePath:         filePath,
		OriginalFilename: header.Filename,
		FileSize:         len(resized),
		ContentType:      contentType,
	}
	if err := db.DB.Create(&photo).Error; err != nil {
		writeError(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"success": true, "photo": photo})
}

// DeleteHandler removes a photo the user owns. The blob delete is best-effort;
// the row delete is what matters.
func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	photoID := chi.URLParam(r, "id")

	var photo Photo
	err := db.DB.
		Where("photo_id = ? AND user_id = ?", photoID, identity.UserID).
		First(&photo).Error
	if err == gorm.ErrRecordNotFound {
		writeError(w, "Photo not found or unauthorized", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "Delete failed", http.StatusInternalServerError)
		return
	}

	if err := store.Delete(store.KeyFromURL(photo.FilePath)); err != nil {
		log.Printf("[library] file delete warning: %v", err)
	}

	if err := db.DB.Delete(&photo).Error; err != nil {
		writeError(w, "Delete failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"success": true})
}
