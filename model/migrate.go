package model

import "gorm.io/gorm"

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&EmailCode{},
		&CustomerProfile{},
		&SupplierProfile{},
		&Age{},
		&Pet{},
		&Service{},
		&Schedule{},
		&Price{},
		&Booking{},
		&Review{},
		&Favorite{},
		&SecurityLog{},
	}
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
