package model

import (
	"strings"
	"time"
)

// Review is a customer's rating of a price they booked and used.
// @Description Customer review
type Review struct {
	ID         uint             `json:"id" gorm:"primaryKey" example:"1"`
	CustomerID uint             `json:"customer_id" gorm:"not null;uniqueIndex:idx_review_customer_price"`
	Customer   *CustomerProfile `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	ServiceID  uint             `json:"service_id" gorm:"index;not null"`
	PriceID    uint             `json:"price_id" gorm:"not null;uniqueIndex:idx_review_customer_price"`
	Text       string           `json:"text" gorm:"type:text" example:"Great groomer"`
	Rating     int              `json:"rating" example:"5"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Validate checks the text length and rating range.
func (r *Review) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return invalid("text", "is required")
	}
	if err := validateMaxLen("text", r.Text, MaxLenReviewText); err != nil {
		return err
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return invalid("rating", "must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}
