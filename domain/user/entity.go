package user

import (
	"time"
)

// User represents a registered account. Email is stored trimmed and
// lowercased so uniqueness checks are case-insensitive. The credential is
// only ever held as a bcrypt hash.
type User struct {
	ID           string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         string    `gorm:"size:50" json:"role"`
	Department   string    `gorm:"size:100" json:"department"`

	// Extended profile attributes, mutable via profile update only.
	Bio       string `gorm:"size:500" json:"bio,omitempty"`
	AvatarURL string `gorm:"size:255" json:"avatar_url,omitempty"`
	Phone     string `gorm:"size:30" json:"phone,omitempty"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Claims is the identity extracted from a validated session token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
