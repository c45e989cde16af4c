package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Service is a supplier's advertisement: category specific fields plus
// weekly schedules and named prices.
// @Description Supplier service advertisement
type Service struct {
	ID            uint              `json:"id" gorm:"primaryKey" example:"1"`
	SupplierID    uint              `json:"supplier_id" gorm:"index;not null" example:"1"`
	Supplier      *SupplierProfile  `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Category      string            `json:"category" gorm:"type:varchar(30);index;not null" example:"grooming"`
	AdTitle       string            `json:"ad_title" gorm:"type:varchar(100)" example:"Grooming at home"`
	Description   string            `json:"description" gorm:"type:varchar(300)"`
	Image         string            `json:"image,omitempty" gorm:"type:varchar(255)"`
	ExtraFields   datatypes.JSONMap `json:"extra_fields" swaggertype:"object"`
	CustomerPlace bool              `json:"customer_place"`
	SupplierPlace bool              `json:"supplier_place"`
	Schedules     []Schedule        `json:"schedules" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Prices        []Price           `json:"price" gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Validate checks the scalar fields and the category specific extra fields.
func (s *Service) Validate() error {
	if !IsCategory(s.Category) {
		return invalid("category", "must be one of %v", Categories)
	}
	if err := validateMaxLen("ad_title", s.AdTitle, MaxLenAdTitle); err != nil {
		return err
	}
	if s.Description != "" {
		if err := ValidateAlphanumeric("description", s.Description, MaxLenDescription); err != nil {
			return err
		}
	}
	return ValidateExtraFields(s.Category, s.ExtraFields)
}

// ValidateExtraFields applies the per-category field rules.
func ValidateExtraFields(category string, fields map[string]interface{}) error {
	serviceNames := StringList(fields["service_name"])
	petTypes := StringList(fields["pet_type"])

	for _, pt := range petTypes {
		if !IsPetType(pt) {
			return invalid("extra_fields", "unknown pet_type %q", pt)
		}
	}

	switch category {
	case CategoryCynology:
		if len(serviceNames) == 0 || len(StringList(fields["study_format"])) == 0 || len(petTypes) == 0 {
			return invalid("extra_fields", "dog training requires service_name, study_format and pet_type")
		}
		if petTypes[0] != PetDog {
			return invalid("extra_fields", "a dog trainer works only with dogs")
		}
		if len(petTypes) > 1 {
			return invalid("extra_fields", "pet_type of a dog trainer must contain only dog")
		}
		if len(fields) != 3 {
			return invalid("extra_fields", "dog training takes exactly 3 fields")
		}
	case CategoryVeterinary:
		if len(serviceNames) == 0 || len(petTypes) == 0 {
			return invalid("extra_fields", "veterinary requires service_name and pet_type")
		}
		if len(fields) != 2 {
			return invalid("extra_fields", "veterinary takes exactly 2 fields")
		}
	case CategoryGrooming:
		if len(fields) > 2 || len(serviceNames) == 0 || len(petTypes) == 0 {
			return invalid("extra_fields", "grooming takes service_name and pet_type only")
		}
		for _, name := range serviceNames {
			if !contains(GroomingTypes, name) {
				return invalid("extra_fields", "grooming service %q is not one of %v", name, GroomingTypes)
			}
		}
	case CategoryShelter:
		if len(fields) != 1 {
			return invalid("extra_fields", "shelter takes exactly 1 field")
		}
		if len(petTypes) == 0 {
			return invalid("extra_fields", "shelter requires pet_type")
		}
	default:
		return invalid("category", "must be one of %v", Categories)
	}
	return nil
}

// StringList normalises a JSON value that may be a string or a list of strings.
func StringList(v interface{}) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	default:
		return []string{fmt.Sprint(val)}
	}
}

// HasServiceName reports whether extra_fields.service_name contains name.
func (s *Service) HasServiceName(name string) bool {
	for _, n := range StringList(s.ExtraFields["service_name"]) {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// HasPetType reports whether extra_fields.pet_type contains petType.
func (s *Service) HasPetType(petType string) bool {
	return contains(StringList(s.ExtraFields["pet_type"]), petType)
}

// ScheduleFor returns the schedule of the given weekday, if any.
func (s *Service) ScheduleFor(day time.Weekday) (*Schedule, bool) {
	code := WeekdayCode(day)
	for i := range s.Schedules {
		if s.Schedules[i].Weekday == code {
			return &s.Schedules[i], true
		}
	}
	return nil, false
}
