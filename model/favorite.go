package model

import "time"

// Favorite marks a service in a customer's favorites.
type Favorite struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CustomerID uint      `json:"customer_id" gorm:"not null;uniqueIndex:idx_favorite_customer_service"`
	ServiceID  uint      `json:"service_id" gorm:"not null;uniqueIndex:idx_favorite_customer_service"`
	Service    *Service  `json:"service,omitempty" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}
