package models

import "time"

// VerificationToken links a single-use email confirmation secret to a user.
// Consuming a token deletes the row; deletion is the only terminal state.
type VerificationToken struct {
	BaseModel

	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
