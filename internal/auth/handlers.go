package auth

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/SnapQuest/SQ-Backend/internal/db"
	"github.com/SnapQuest/SQ-Backend/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	usernameMin = 2
	usernameMax = 30
	passwordMin = 9 // must be > 8
)

const sessionCookieName = "auth_token"

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   os.Getenv("APP_ENV") == "production",
	}
}

type loginRequest struct {
	Name            string `json:"name"`
	Password        string `json:"password"`
	IsReturningUser bool   `json:"is_returning_user"`
}

type loginResponse struct {
	UserID          string `json:"user_id"`
	UserName        string `json:"user_name"`
	IsReturningUser bool   `json:"is_returning_user"`
	IsAdmin         bool   `json:"is_admin"`
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// LoginHandler serves both registration and returning-user login: the client
// sends is_returning_user to pick the flow. Success sets the session cookie.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !allowLogin(r) {
		writeError(w, "Too many login attempts, slow down", http.StatusTooManyRequests)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < usernameMin || len(name) > usernameMax {
		writeError(w, "Name must be between 2 and 30 characters", http.StatusBadRequest)
		return
	}
	if len(req.Password) < passwordMin {
		writeError(w, "Password must be more than 8 characters", http.StatusBadRequest)
		return
	}

	if req.IsReturningUser {
		loginReturningUser(w, name, req.Password)
		return
	}
	registerNewUser(w, name, req.Password)
}

func loginReturningUser(w http.ResponseWriter, name, password string) {
	var user User
	err := db.DB.First(&user, "username = ?", strings.ToLower(name)).Error
	if err == gorm.ErrRecordNotFound {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		writeError(w, "Incorrect password", http.StatusBadRequest)
		return
	}

	var profile Profile
	if err := db.DB.First(&profile, "profile_id = ?", user.ProfileID).Error; err != nil {
		writeError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	issueSession(w, user.UserID, loginResponse{
		UserID:          profile.ProfileID,
		UserName:        profile.DisplayName,
		IsReturningUser: true,
		IsAdmin:         profile.IsAdmin,
	})
}

func registerNewUser(w http.ResponseWriter, name, password string) {
	var existing User
	if err := db.DB.First(&existing, "username = ?", strings.ToLower(name)).Error; err == nil {
		writeError(w, "Name already taken", http.StatusConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	profile := Profile{
		ProfileID:   uuid.NewString(),
		DisplayName: name,
		IsAdmin:     false,
	}
	user := User{
		UserID:         uuid.NewString(),
		Username:       strings.ToLower(name),
		HashedPassword: string(hashed),
		ProfileID:      profile.ProfileID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		writeError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	issueSession(w, user.UserID, loginResponse{
		UserID:          profile.ProfileID,
		UserName:        profile.DisplayName,
		IsReturningUser: false,
		IsAdmin:         false,
	})
}

func issueSession(w http.ResponseWriter, userID string, resp loginResponse) {
	_, token, err := CreateSession(userID)
	if err != nil {
		writeError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(token, int(SessionTTL/time.Second)))
	writeJSON(w, resp)
}

// LogoutHandler deletes the server-side session and expires the cookie. It is
// intentionally forgiving: a missing or garbage cookie still clears state.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if sessionID, _, ok := splitToken(cookie.Value); ok {
			_ = DeleteSession(sessionID)
		}
	}

	http.SetCookie(w, sessionCookie("", -1))
	writeJSON(w, map[string]bool{"success": true})
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := utils.GetIdentityFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, map[string]any{
		"user_id":      identity.UserID,
		"display_name": identity.DisplayName,
		"is_admin":     identity.IsAdmin,
	})
}
