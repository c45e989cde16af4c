package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePersonName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"latin", "Anna", false},
		{"cyrillic", "Анна", false},
		{"too short", "A", true},
		{"too long", "Abcdefghijklmnop", true},
		{"digits", "Anna1", true},
		{"space", "Anna Maria", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePersonName("first_name", tt.value)
			if tt.wantErr {
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve))
				assert.Equal(t, "first_name", ve.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("89991234567"))
	assert.NoError(t, ValidatePhone("+79991234567"))
	assert.Error(t, ValidatePhone("8999123"))
	assert.Error(t, ValidatePhone("phone"))
	assert.Error(t, ValidatePhone(""))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("email", "a@b.co"))
	assert.Error(t, ValidateEmail("email", "no-at-sign"))
	assert.Error(t, ValidateEmail("email", "a@b"))
}

func TestValidateAlphanumeric(t *testing.T) {
	assert.NoError(t, ValidateAlphanumeric("about", "Опыт 5 лет (собаки, кошки)!", 100))
	assert.Error(t, ValidateAlphanumeric("about", "<script>", 100))
	assert.Error(t, ValidateAlphanumeric("about", "long text", 3))
}

func TestClockMinutes(t *testing.T) {
	m, err := ClockMinutes("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = ClockMinutes("9.30")
	assert.Error(t, err)

	assert.Equal(t, "14:05", FormatClock(14*60+5))
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "rating: too big", (&ValidationError{Field: "rating", Message: "too big"}).Error())
	assert.Equal(t, "plain", (&ValidationError{Message: "plain"}).Error())
}
