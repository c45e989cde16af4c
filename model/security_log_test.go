package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestSecurityLogModel_CreateAndRead(t *testing.T) {
	db := setupTestDB(t, "security_log", &SecurityLog{})

	entry := SecurityLog{
		EventType: "LOGIN_FAILURE",
		UserID:    "12",
		Email:     "owner@example.com",
		IP:        "10.0.0.1",
		UserAgent: "Mozilla/5.0",
		Location:  "Moscow/Russia",
		Message:   "Login failed: invalid password",
		Details:   datatypes.JSON(`{"attempt":3}`),
	}
	assert.NoError(t, db.Create(&entry).Error)
	assert.NotZero(t, entry.ID)

	var found SecurityLog
	assert.NoError(t, db.First(&found, entry.ID).Error)
	assert.Equal(t, "LOGIN_FAILURE", found.EventType)
	assert.Equal(t, "Moscow/Russia", found.Location)
	assert.JSONEq(t, `{"attempt":3}`, string(found.Details))
}

func TestSecurityLogModel_QueryByEventType(t *testing.T) {
	db := setupTestDB(t, "security_log_query", &SecurityLog{})

	db.Create(&SecurityLog{EventType: "LOGIN_SUCCESS", Email: "a@example.com"})
	db.Create(&SecurityLog{EventType: "LOGIN_FAILURE", Email: "a@example.com"})
	db.Create(&SecurityLog{EventType: "LOGIN_FAILURE", Email: "b@example.com"})

	var failures []SecurityLog
	assert.NoError(t, db.Where("event_type = ?", "LOGIN_FAILURE").Find(&failures).Error)
	assert.Len(t, failures, 2)
}
