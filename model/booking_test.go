package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateBookingDate(t *testing.T) {
	now := time.Date(2030, 5, 20, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateBookingDate(now.Add(time.Hour), now))
	assert.NoError(t, ValidateBookingDate(time.Date(2030, 6, 30, 10, 0, 0, 0, time.UTC), now))
	assert.Error(t, ValidateBookingDate(now.Add(-time.Hour), now), "past")
	assert.Error(t, ValidateBookingDate(time.Date(2030, 7, 1, 10, 0, 0, 0, time.UTC), now), "two months ahead")
}

func TestValidateBookingDate_DecemberRollsIntoJanuary(t *testing.T) {
	now := time.Date(2030, 12, 28, 12, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateBookingDate(time.Date(2031, 1, 15, 10, 0, 0, 0, time.UTC), now))
	assert.Error(t, ValidateBookingDate(time.Date(2031, 2, 1, 10, 0, 0, 0, time.UTC), now))
}

func TestBooking_Overlaps(t *testing.T) {
	base := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	b := Booking{ToDate: base}

	assert.True(t, b.Overlaps(base, time.Hour))
	assert.True(t, b.Overlaps(base.Add(30*time.Minute), time.Hour))
	assert.False(t, b.Overlaps(base.Add(time.Hour), time.Hour))
	assert.False(t, b.Overlaps(base.Add(-time.Hour), time.Hour))
}

func TestPrice_Validate(t *testing.T) {
	assert.NoError(t, (&Price{ServiceName: "haircut", CostFrom: 100, CostTo: 100}).Validate())
	assert.Error(t, (&Price{ServiceName: "haircut", CostFrom: 200, CostTo: 100}).Validate())
	assert.Error(t, (&Price{ServiceName: "haircut", CostFrom: 0, CostTo: 100}).Validate())
	assert.Error(t, (&Price{ServiceName: "haircut", CostFrom: 1, CostTo: MaxPrice + 1}).Validate())
	assert.Error(t, (&Price{ServiceName: " ", CostFrom: 1, CostTo: 2}).Validate())
}

func TestReview_Validate(t *testing.T) {
	assert.NoError(t, (&Review{Text: "good", Rating: 5}).Validate())
	assert.Error(t, (&Review{Text: "good", Rating: 0}).Validate())
	assert.Error(t, (&Review{Text: "good", Rating: 6}).Validate())
	assert.Error(t, (&Review{Text: "", Rating: 3}).Validate())
}
