package auth

import "time"

// Session rows hold the hash of the token secret, never the secret itself.
// Expiry is derived from CreatedAt at validation time; there is no sweeper.
type Session struct {
	SessionID  string    `gorm:"primaryKey" json:"-"`
	UserID     string    `gorm:"not null;index" json:"-"`
	SecretHash string    `gorm:"not null" json:"-"`
	CreatedAt  time.Time `gorm:"not null" json:"-"`
}

// User is the credential record. The player-facing identity lives on Profile.
type User struct {
	UserID         string `gorm:"primaryKey" json:"user_id"`
	Username       string `gorm:"not null;unique" json:"username"`
	Password       string `json:"password" gorm:"-"`
	HashedPassword string `json:"-"`
	ProfileID      string `gorm:"not null" json:"profile_id"`
}

type Profile struct {
	ProfileID   string    `gorm:"primaryKey" json:"user_id"`
	DisplayName string    `gorm:"not null;unique" json:"display_name"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Session) TableName() string { return "app_auth.sessions" }
func (User) TableName() string    { return "app_auth.users" }
func (Profile) TableName() string { return "app_auth.profiles" }
