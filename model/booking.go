package model

import "time"

// Booking reserves one price of a service for a customer's pet at ToDate.
// @Description Customer booking
type Booking struct {
	ID          uint             `json:"id" gorm:"primaryKey" example:"1"`
	CustomerID  uint             `json:"customer_id" gorm:"index;not null"`
	Customer    *CustomerProfile `json:"customer,omitempty" gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	PriceID     uint             `json:"price_id" gorm:"index;not null"`
	Price       *Price           `json:"price,omitempty" gorm:"foreignKey:PriceID;constraint:OnDelete:CASCADE"`
	PetID       *uint            `json:"pet_id" gorm:"index"`
	Pet         *Pet             `json:"pet,omitempty" gorm:"foreignKey:PetID;constraint:OnDelete:SET NULL"`
	Date        time.Time        `json:"date"`
	ToDate      time.Time        `json:"to_date"`
	Description string           `json:"description,omitempty" gorm:"type:varchar(500)"`
	IsActive    bool             `json:"is_active"`
	IsDone      bool             `json:"is_done"`
	IsCancelled bool             `json:"is_cancelled"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ValidateBookingDate requires a future date in the current or next calendar month.
func ValidateBookingDate(toDate, now time.Time) error {
	if !toDate.After(now) {
		return invalid("to_date", "must be in the future")
	}
	toDate = toDate.In(now.Location())
	diff := (toDate.Year()*12 + int(toDate.Month())) - (now.Year()*12 + int(now.Month()))
	if diff < 0 || diff > 1 {
		return invalid("to_date", "date must be in the current or next month")
	}
	return nil
}

// Overlaps reports whether [start, start+visit) intersects this booking's visit.
func (b *Booking) Overlaps(start time.Time, visit time.Duration) bool {
	end := start.Add(visit)
	return b.ToDate.Before(end) && b.ToDate.Add(visit).After(start)
}
