package model

import "time"

// Profile types a User can point at.
const (
	ProfileCustomer = "customer"
	ProfileSupplier = "supplier"
)

// Service categories, also used as the supplier's specialist type.
const (
	CategoryCynology   = "cynology"
	CategoryVeterinary = "veterinary"
	CategoryGrooming   = "grooming"
	CategoryShelter    = "shelter"
)

// Pet types.
const (
	PetCat     = "cat"
	PetDog     = "dog"
	PetPig     = "pig"
	PetHamster = "hom"
	PetHorse   = "hor"
	PetRabbit  = "rab"
	PetAnother = "ano"
)

var (
	Categories    = []string{CategoryCynology, CategoryVeterinary, CategoryGrooming, CategoryShelter}
	PetTypes      = []string{PetCat, PetDog, PetPig, PetHamster, PetHorse, PetRabbit, PetAnother}
	GroomingTypes = []string{"haircut", "hygienic", "bathing", "trimming", "claw_clipping", "ear_cleaning", "teeth_cleaning"}
	ProfileTypes  = []string{ProfileCustomer, ProfileSupplier}

	// VisitDurations lists the allowed schedule slot lengths in minutes.
	VisitDurations = []int{30, 60, 90, 120}
)

// Field limits.
const (
	MaxLenEmail        = 254
	MinLenName         = 2
	MaxLenName         = 15
	MaxLenAddress      = 255
	MaxLenAbout        = 500
	MaxLenPetName      = 50
	MaxLenBreed        = 30
	MaxLenAdTitle      = 100
	MaxLenDescription  = 300
	MaxLenServiceName  = 100
	MaxLenBookingNote  = 500
	MaxLenReviewText   = 1000
	MinAgeYear         = 0
	MaxAgeYear         = 50
	MaxAgeMonth        = 11
	MaxPetWeight       = 200
	MinPrice           = 1
	MaxPrice           = 100000
	MinRating          = 1
	MaxRating          = 5
	EmailCodeLength    = 5
	MaxCodeAttempts    = 5
	MaxFailedLogins    = 5
	DefaultVisitMinute = 60
)

// Email code purposes.
const (
	CodeVerification = "verification"
	CodeRecovery     = "recovery"
)

// Lifetimes.
const (
	AccessTokenLifetime   = 7 * 24 * time.Hour
	RefreshTokenLifetime  = 14 * 24 * time.Hour
	RecoveryTokenLifetime = 10 * time.Minute
	EmailCodeLifetime     = 10 * time.Minute
	AccountLockDuration   = 15 * time.Minute
)

// Schedule defaults.
const (
	DefaultStartWorkTime  = "09:00"
	DefaultEndWorkTime    = "19:00"
	DefaultBreakStartTime = "14:00"
	DefaultBreakEndTime   = "15:00"
)

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// IsCategory reports whether v is a known service category.
func IsCategory(v string) bool { return contains(Categories, v) }

// IsPetType reports whether v is a known pet type.
func IsPetType(v string) bool { return contains(PetTypes, v) }

// IsProfileType reports whether v is customer or supplier.
func IsProfileType(v string) bool { return contains(ProfileTypes, v) }
