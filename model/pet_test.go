package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAge_Validate(t *testing.T) {
	assert.NoError(t, Age{Year: 0, Month: 3}.Validate())
	assert.NoError(t, Age{Year: 50, Month: 0}.Validate())
	assert.Error(t, Age{Year: 0, Month: 0}.Validate())
	assert.Error(t, Age{Year: 51, Month: 0}.Validate())
	assert.Error(t, Age{Year: 1, Month: 12}.Validate())
	assert.Error(t, Age{Year: -1, Month: 1}.Validate())
}

func TestGetOrCreateAge_ReusesRows(t *testing.T) {
	db := setupTestDB(t, "age", &Age{})

	first, err := GetOrCreateAge(db, 0, 5)
	require.NoError(t, err)
	// a different year with the same month must not match
	other, err := GetOrCreateAge(db, 3, 5)
	require.NoError(t, err)
	again, err := GetOrCreateAge(db, 0, 5)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.NotEqual(t, first.ID, other.ID)

	var count int64
	db.Model(&Age{}).Count(&count)
	assert.Equal(t, int64(2), count)

	_, err = GetOrCreateAge(db, 0, 0)
	assert.Error(t, err)
}

func TestPet_Validate(t *testing.T) {
	valid := Pet{Type: PetDog, Name: "Bublik", Breed: "corgi", Weight: 11}
	assert.NoError(t, valid.Validate())

	badType := valid
	badType.Type = "dragon"
	assert.Error(t, badType.Validate())

	noName := valid
	noName.Name = "  "
	assert.Error(t, noName.Validate())

	heavy := valid
	heavy.Weight = 250
	assert.Error(t, heavy.Validate())
}

func TestPet_UniqueIdentityPerOwner(t *testing.T) {
	db := setupTestDB(t, "pet", &Age{}, &Pet{})
	age, err := GetOrCreateAge(db, 2, 0)
	require.NoError(t, err)

	pet := Pet{OwnerID: 1, Type: PetCat, Name: "Murka", AgeID: age.ID}
	require.NoError(t, db.Create(&pet).Error)

	dup := Pet{OwnerID: 1, Type: PetCat, Name: "Murka", AgeID: age.ID}
	assert.Error(t, db.Create(&dup).Error)

	otherOwner := Pet{OwnerID: 2, Type: PetCat, Name: "Murka", AgeID: age.ID}
	assert.NoError(t, db.Create(&otherOwner).Error)
}

func TestPet_MarshalJSONFlattensAge(t *testing.T) {
	pet := Pet{ID: 7, OwnerID: 1, Type: PetDog, Name: "Rex", Age: Age{Year: 3, Month: 4}}
	b, err := json.Marshal(pet)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, float64(3), out["year"])
	assert.Equal(t, float64(4), out["month"])
	assert.Equal(t, "Rex", out["name"])
	assert.Equal(t, float64(1), out["owner"])
	_, hasAge := out["age"]
	assert.False(t, hasAge)
}
