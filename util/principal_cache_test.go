package util

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veterinary-salons/backend/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_principal_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))
	return db
}

func TestLoadPrincipal_FromDBThenCache(t *testing.T) {
	InitPrincipalCache(time.Minute)
	db := setupUserDB(t)

	user := model.User{Email: "vet@example.com", Password: "x", ProfileType: model.ProfileSupplier, ProfileID: 4}
	require.NoError(t, db.Create(&user).Error)

	p, err := LoadPrincipal(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "vet@example.com", p.Email)
	assert.True(t, p.IsSupplier(4))
	assert.False(t, p.IsCustomer(4))

	// served from cache even after the row changes
	require.NoError(t, db.Model(&user).Update("email", "changed@example.com").Error)
	p, err = LoadPrincipal(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "vet@example.com", p.Email)

	ForgetPrincipal(user.ID)
	p, err = LoadPrincipal(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed@example.com", p.Email)
}

func TestLoadPrincipal_Missing(t *testing.T) {
	InitPrincipalCache(0)
	db := setupUserDB(t)

	_, err := LoadPrincipal(db, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = LoadPrincipal(nil, 999)
	assert.Error(t, err)
}

func TestInitPrincipalCacheFromEnv(t *testing.T) {
	t.Setenv("PRINCIPAL_CACHE_TTL", "not-a-number")
	InitPrincipalCacheFromEnv()
	assert.NotNil(t, principals())

	t.Setenv("PRINCIPAL_CACHE_TTL", "30")
	InitPrincipalCacheFromEnv()
	assert.NotNil(t, principals())
}
