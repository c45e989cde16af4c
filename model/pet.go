package model

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Age is a shared (year, month) row referenced by pets.
type Age struct {
	ID    uint `json:"-" gorm:"primaryKey"`
	Year  int  `json:"year" gorm:"uniqueIndex:idx_age_year_month;not null"`
	Month int  `json:"month" gorm:"uniqueIndex:idx_age_year_month;not null"`
}

// Validate enforces the year/month ranges; a zero age is rejected.
func (a Age) Validate() error {
	if a.Year < MinAgeYear || a.Year > MaxAgeYear {
		return invalid("year", "pet age must be between %d and %d years", MinAgeYear, MaxAgeYear)
	}
	if a.Month < 0 || a.Month > MaxAgeMonth {
		return invalid("month", "month must be between 0 and %d", MaxAgeMonth)
	}
	if a.Year == 0 && a.Month == 0 {
		return invalid("age", "year or month must be greater than zero")
	}
	return nil
}

// GetOrCreateAge returns the stored row for (year, month).
func GetOrCreateAge(db *gorm.DB, year, month int) (Age, error) {
	age := Age{Year: year, Month: month}
	if err := age.Validate(); err != nil {
		return Age{}, err
	}
	// map conditions keep zero years in the WHERE clause
	err := db.Where(map[string]interface{}{"year": year, "month": month}).FirstOrCreate(&age).Error
	return age, err
}

// Pet belongs to a customer.
// @Description Customer's pet
type Pet struct {
	ID           uint      `json:"id" gorm:"primaryKey" example:"1"`
	OwnerID      uint      `json:"owner" gorm:"not null;uniqueIndex:idx_pet_identity" example:"1"`
	Type         string    `json:"type" gorm:"type:varchar(30);not null;uniqueIndex:idx_pet_identity" example:"dog"`
	Breed        string    `json:"breed" gorm:"type:varchar(30);not null;default:'';uniqueIndex:idx_pet_identity" example:"corgi"`
	Name         string    `json:"name" gorm:"type:varchar(50);not null;uniqueIndex:idx_pet_identity" example:"Bublik"`
	AgeID        uint      `json:"-" gorm:"uniqueIndex:idx_pet_identity"`
	Age          Age       `json:"-" gorm:"foreignKey:AgeID"`
	Weight       float64   `json:"weight" example:"11.5"`
	IsSterilized bool      `json:"is_sterilized"`
	IsVaccinated bool      `json:"is_vaccinated"`
	Image        string    `json:"image,omitempty" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks everything except uniqueness.
func (p *Pet) Validate() error {
	if !IsPetType(p.Type) {
		return invalid("type", "must be one of %v", PetTypes)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return invalid("name", "is required")
	}
	if err := validateMaxLen("name", name, MaxLenPetName); err != nil {
		return err
	}
	if err := validateMaxLen("breed", p.Breed, MaxLenBreed); err != nil {
		return err
	}
	if p.Weight < 0 || p.Weight > MaxPetWeight {
		return invalid("weight", "must be between 0 and %d", MaxPetWeight)
	}
	return nil
}

// MarshalJSON flattens the age into year and month.
func (p Pet) MarshalJSON() ([]byte, error) {
	type plain Pet
	return json.Marshal(struct {
		plain
		Year  int `json:"year"`
		Month int `json:"month"`
	}{plain: plain(p), Year: p.Age.Year, Month: p.Age.Month})
}
