package model

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"gorm.io/gorm"
)

var (
	ErrCodeExpired   = errors.New("code is expired")
	ErrCodeIncorrect = errors.New("incorrect code")
	ErrCodeExhausted = errors.New("too many incorrect attempts")
)

// EmailCode is the one-time code mailed for email verification or account
// recovery. A row exists per email and purpose and is regenerated in place.
type EmailCode struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"type:varchar(254);uniqueIndex:idx_email_code_purpose;not null"`
	Purpose        string    `json:"purpose" gorm:"type:varchar(20);uniqueIndex:idx_email_code_purpose;not null"`
	Code           string    `json:"-" gorm:"type:varchar(5);not null"`
	FailedAttempts int       `json:"-" gorm:"not null;default:0"`
	Confirmed      bool      `json:"confirmed" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewEmailCode returns a random numeric code of EmailCodeLength digits.
func NewEmailCode() string {
	digits := make([]byte, EmailCodeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			panic(err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}

// IsValid reports whether the code is younger than EmailCodeLifetime.
func (e *EmailCode) IsValid(now time.Time) bool {
	return now.Before(e.UpdatedAt.Add(EmailCodeLifetime))
}

// GetOrCreateEmailCode returns the code row for email and purpose, creating it when missing.
func GetOrCreateEmailCode(db *gorm.DB, email, purpose string) (*EmailCode, error) {
	var code EmailCode
	err := db.Where(EmailCode{Email: email, Purpose: purpose}).
		Attrs(EmailCode{Code: NewEmailCode()}).
		FirstOrCreate(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// FindEmailCode loads the code row for email and purpose.
func FindEmailCode(db *gorm.DB, email, purpose string) (*EmailCode, error) {
	var code EmailCode
	if err := db.Where("email = ? AND purpose = ?", email, purpose).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// Refresh issues a new code and clears confirmation and failed attempts.
func (e *EmailCode) Refresh(db *gorm.DB) error {
	e.Code = NewEmailCode()
	e.Confirmed = false
	e.FailedAttempts = 0
	return db.Save(e).Error
}

// Confirm marks the code as used: it is confirmed and can't be replayed.
func (e *EmailCode) Confirm(db *gorm.DB) error {
	e.Confirmed = true
	e.Code = NewEmailCode()
	e.FailedAttempts = 0
	return db.Save(e).Error
}

// recordFailure counts a wrong guess in the database and reloads the counter.
func (e *EmailCode) recordFailure(db *gorm.DB) error {
	if err := db.Model(&EmailCode{}).Where("id = ?", e.ID).
		UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + ?", 1)).Error; err != nil {
		return err
	}
	return db.Model(&EmailCode{}).Select("failed_attempts").Where("id = ?", e.ID).
		Scan(&e.FailedAttempts).Error
}

// Check compares a submitted code. An expired code is regenerated and
// ErrCodeExpired returned. A mismatch returns ErrCodeIncorrect until
// MaxCodeAttempts wrong guesses, after which the code is regenerated and
// ErrCodeExhausted returned. A match confirms it.
func (e *EmailCode) Check(db *gorm.DB, submitted string, now time.Time) error {
	if !e.IsValid(now) {
		if err := e.Refresh(db); err != nil {
			return err
		}
		return ErrCodeExpired
	}
	if submitted != e.Code {
		if err := e.recordFailure(db); err != nil {
			return err
		}
		if e.FailedAttempts < MaxCodeAttempts {
			return ErrCodeIncorrect
		}
		if err := e.Refresh(db); err != nil {
			return err
		}
		return ErrCodeExhausted
	}
	return e.Confirm(db)
}
