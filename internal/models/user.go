package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID  `json:"id" db:"id"`                     // Primary key
	Username     string     `json:"username" db:"username"`         // Unique username
	PasswordHash string     `json:"-" db:"password_hash"`           // Bcrypt hash, never serialized
	FirstName    string     `json:"first_name" db:"first_name"`     // Capitalized first name
	LastName     string     `json:"last_name" db:"last_name"`       // Capitalized last name
	Email        string     `json:"email" db:"email"`               // Lowercased email
	PicturePath  string     `json:"picture_path" db:"picture_path"` // Blob storage path of the profile picture
	Biography    string     `json:"biography" db:"biography"`
	PostCount    int        `json:"post_count" db:"post_count"` // Number of places the user created
	Verified     bool       `json:"verified" db:"verified"`
	Admin        bool       `json:"admin" db:"admin"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastSeen     *time.Time `json:"last_seen" db:"last_seen"` // Set when the realtime connection closes
}

// UserUpdate holds the profile fields a user may change. Nil fields are left untouched.
type UserUpdate struct {
	Username     *string `json:"username,omitempty"`
	Password     *string `json:"password,omitempty"`
	PasswordHash *string `json:"-"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Biography    *string `json:"biography,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.PasswordHash == nil && u.FirstName == nil &&
		u.LastName == nil && u.Email == nil && u.Biography == nil
}
