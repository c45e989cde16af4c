package model

import (
	"time"
)

// User is the login identity. It points at exactly one customer or supplier profile.
// @Description Account credentials and profile pointer
type User struct {
	ID                  uint       `json:"id" gorm:"primaryKey" example:"1"`
	Email               string     `json:"email" gorm:"type:varchar(254);uniqueIndex;not null" example:"owner@example.com"`
	Password            string     `json:"-" gorm:"type:varchar(255);not null"`
	PasswordSalt        string     `json:"-" gorm:"type:varchar(64)"`
	EmailConfirmed      bool       `json:"email_confirmed" gorm:"default:false"`
	ProfileType         string     `json:"profile_type" gorm:"type:varchar(16);index:idx_user_profile" example:"customer"`
	ProfileID           uint       `json:"profile_id" gorm:"index:idx_user_profile" example:"1"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsLocked reports whether the account is still inside its lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Session backs one access/refresh token pair. Its ID travels as the sid claim.
type Session struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientIP  string    `json:"client_ip" gorm:"type:varchar(45)"`
	Browser   string    `json:"browser" gorm:"type:varchar(512)"`
	Revoked   bool      `json:"revoked" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the session can still authenticate requests.
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
