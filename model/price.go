package model

import "strings"

// Price is a named cost range of a service.
// @Description Named cost range of a service
type Price struct {
	ID          uint   `json:"id" gorm:"primaryKey" example:"1"`
	ServiceID   uint   `json:"service_id" gorm:"not null;uniqueIndex:idx_price_service_name"`
	ServiceName string `json:"service_name" gorm:"type:varchar(100);not null;uniqueIndex:idx_price_service_name" example:"haircut"`
	CostFrom    int    `json:"cost_from" example:"1000"`
	CostTo      int    `json:"cost_to" example:"2500"`
}

// Validate checks the name and the cost range.
func (p *Price) Validate() error {
	if strings.TrimSpace(p.ServiceName) == "" {
		return invalid("service_name", "is required")
	}
	if err := validateMaxLen("service_name", p.ServiceName, MaxLenServiceName); err != nil {
		return err
	}
	if p.CostFrom < MinPrice || p.CostFrom > MaxPrice || p.CostTo < MinPrice || p.CostTo > MaxPrice {
		return invalid("cost_from", "cost must be between %d and %d", MinPrice, MaxPrice)
	}
	if p.CostFrom > p.CostTo {
		return invalid("cost_from", "cost_from cannot be greater than cost_to")
	}
	return nil
}
