package model

import "time"

// CustomerProfile is a pet owner.
// @Description Pet owner profile
type CustomerProfile struct {
	ID           uint      `json:"id" gorm:"primaryKey" example:"1"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(15);not null" example:"Anna"`
	LastName     string    `json:"last_name" gorm:"type:varchar(15);not null" example:"Petrova"`
	PhoneNumber  string    `json:"phone_number" gorm:"type:varchar(16)" example:"89991234567"`
	Address      string    `json:"address,omitempty" gorm:"type:varchar(255)"`
	ContactEmail string    `json:"contact_email,omitempty" gorm:"type:varchar(254)"`
	Image        string    `json:"image,omitempty" gorm:"type:varchar(255)"`
	Pets         []Pet     `json:"pets,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SupplierProfile is a groomer, veterinarian, dog trainer or shelter.
// @Description Service provider profile
type SupplierProfile struct {
	ID             uint      `json:"id" gorm:"primaryKey" example:"1"`
	FirstName      string    `json:"first_name" gorm:"type:varchar(15);not null" example:"Ivan"`
	LastName       string    `json:"last_name" gorm:"type:varchar(15);not null" example:"Sidorov"`
	PhoneNumber    string    `json:"phone_number" gorm:"type:varchar(16)" example:"89991234567"`
	Address        string    `json:"address,omitempty" gorm:"type:varchar(255)"`
	ContactEmail   string    `json:"contact_email,omitempty" gorm:"type:varchar(254)"`
	Image          string    `json:"image,omitempty" gorm:"type:varchar(255)"`
	SpecialistType string    `json:"specialist_type" gorm:"type:varchar(30);index;not null" example:"grooming"`
	PetType        string    `json:"pet_type" gorm:"type:varchar(30)" example:"dog"`
	About          string    `json:"about,omitempty" gorm:"type:text"`
	Services       []Service `json:"-" gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func validateContactFields(phone, address, contactEmail string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	if err := validateMaxLen("address", address, MaxLenAddress); err != nil {
		return err
	}
	if contactEmail != "" {
		if err := ValidateEmail("contact_email", contactEmail); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the customer fields.
func (p *CustomerProfile) Validate() error {
	if err := ValidatePersonName("first_name", p.FirstName); err != nil {
		return err
	}
	if err := ValidatePersonName("last_name", p.LastName); err != nil {
		return err
	}
	return validateContactFields(p.PhoneNumber, p.Address, p.ContactEmail)
}

// Validate checks the supplier fields, including the dog-trainer rule.
func (p *SupplierProfile) Validate() error {
	if err := ValidatePersonName("first_name", p.FirstName); err != nil {
		return err
	}
	if err := ValidatePersonName("last_name", p.LastName); err != nil {
		return err
	}
	if err := validateContactFields(p.PhoneNumber, p.Address, p.ContactEmail); err != nil {
		return err
	}
	if !IsCategory(p.SpecialistType) {
		return invalid("specialist_type", "must be one of %v", Categories)
	}
	if p.PetType != "" && !IsPetType(p.PetType) {
		return invalid("pet_type", "must be one of %v", PetTypes)
	}
	if p.SpecialistType == CategoryCynology && p.PetType != PetDog {
		return invalid("pet_type", "a dog trainer works only with dogs")
	}
	if p.About != "" {
		if err := ValidateAlphanumeric("about", p.About, MaxLenAbout); err != nil {
			return err
		}
	}
	return nil
}
