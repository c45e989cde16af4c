package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityLog is a persisted security or endpoint event.
type SecurityLog struct {
	gorm.Model
	EventType string `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	UserID    string `json:"user_id" gorm:"column:user_id;type:varchar(64);index"`
	Email     string `json:"email" gorm:"column:email;type:varchar(254);index"`
	IP        string `json:"ip" gorm:"column:ip;type:varchar(45)"`
	// Location is "City/Country" when the IP could be resolved.
	Location  string         `json:"location" gorm:"column:location;type:varchar(255)"`
	UserAgent string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	Message   string         `json:"message" gorm:"column:message;type:text"`
	Details   datatypes.JSON `json:"details" gorm:"column:details"`
}
