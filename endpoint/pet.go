package endpoint

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

var errPetExists = errors.New("pet already exists")

type PetRequest struct {
	Type         string  `json:"type" binding:"required" example:"dog"`
	Breed        string  `json:"breed,omitempty" example:"corgi"`
	Name         string  `json:"name" binding:"required" example:"Bublik"`
	Year         int     `json:"year" example:"2"`
	Month        int     `json:"month" example:"4"`
	Weight       float64 `json:"weight" example:"11.5"`
	IsSterilized bool    `json:"is_sterilized"`
	IsVaccinated bool    `json:"is_vaccinated"`
	Image        string  `json:"image,omitempty" example:"data:image/png;base64,iVBORw0..."`
}

type UpdatePetRequest struct {
	Type         *string  `json:"type,omitempty" example:"dog"`
	Breed        *string  `json:"breed,omitempty" example:"corgi"`
	Name         *string  `json:"name,omitempty" example:"Bublik"`
	Year         *int     `json:"year,omitempty" example:"2"`
	Month        *int     `json:"month,omitempty" example:"4"`
	Weight       *float64 `json:"weight,omitempty" example:"11.5"`
	IsSterilized *bool    `json:"is_sterilized,omitempty"`
	IsVaccinated *bool    `json:"is_vaccinated,omitempty"`
	Image        *string  `json:"image,omitempty"`
}

func (r PetRequest) pet(ownerID uint) model.Pet {
	return model.Pet{
		OwnerID:      ownerID,
		Type:         r.Type,
		Breed:        strings.TrimSpace(r.Breed),
		Name:         strings.TrimSpace(r.Name),
		Weight:       r.Weight,
		IsSterilized: r.IsSterilized,
		IsVaccinated: r.IsVaccinated,
	}
}

func (r UpdatePetRequest) applyTo(p *model.Pet) {
	if r.Type != nil {
		p.Type = *r.Type
	}
	if r.Breed != nil {
		p.Breed = strings.TrimSpace(*r.Breed)
	}
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Weight != nil {
		p.Weight = *r.Weight
	}
	if r.IsSterilized != nil {
		p.IsSterilized = *r.IsSterilized
	}
	if r.IsVaccinated != nil {
		p.IsVaccinated = *r.IsVaccinated
	}
}

// attachAge validates the pet and points it at the shared (year, month) row.
func attachAge(tx *gorm.DB, pet *model.Pet, year, month int) error {
	if err := pet.Validate(); err != nil {
		return err
	}
	age, err := model.GetOrCreateAge(tx, year, month)
	if err != nil {
		return err
	}
	pet.AgeID = age.ID
	pet.Age = age
	return nil
}

// petExists reports whether another pet of the owner has the same identity.
func petExists(tx *gorm.DB, pet *model.Pet) (bool, error) {
	var count int64
	err := tx.Model(&model.Pet{}).
		Where("owner_id = ? AND name = ? AND breed = ? AND type = ? AND age_id = ? AND id <> ?",
			pet.OwnerID, pet.Name, pet.Breed, pet.Type, pet.AgeID, pet.ID).
		Count(&count).Error
	return count > 0, err
}

// createPet stores a new pet, refusing duplicates of the same owner.
func createPet(tx *gorm.DB, pet *model.Pet, year, month int) error {
	if err := attachAge(tx, pet, year, month); err != nil {
		return err
	}
	exists, err := petExists(tx, pet)
	if err != nil {
		return err
	}
	if exists {
		return badRequest("%s", errPetExists.Error())
	}
	return tx.Omit("Age").Create(pet).Error
}

// findOrCreatePet looks a pet up by owner, name, type and breed, creating it
// from req when missing.
func findOrCreatePet(tx *gorm.DB, ownerID uint, req PetRequest) (model.Pet, error) {
	candidate := req.pet(ownerID)
	var pet model.Pet
	err := tx.Preload("Age").
		Where("owner_id = ? AND name = ? AND type = ? AND breed = ?", ownerID, candidate.Name, candidate.Type, candidate.Breed).
		First(&pet).Error
	if err == nil {
		return pet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pet, err
	}
	if err := createPet(tx, &candidate, req.Year, req.Month); err != nil {
		return candidate, err
	}
	return candidate, nil
}

func loadOwnPet(c *gin.Context, db *gorm.DB, customerID uint) (model.Pet, bool) {
	petID, ok := parseIDParam(c, "pet_id")
	if !ok {
		return model.Pet{}, false
	}
	var pet model.Pet
	if err := db.Preload("Age").Where("owner_id = ?", customerID).First(&pet, petID).Error; err != nil {
		respondStoreError(c, "Pet not found", "", err)
		return model.Pet{}, false
	}
	return pet, true
}

// ListPets godoc
// @Summary      List pets of a customer
// @Tags         Pets
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Success      200 {object} util.APIResponse{data=[]model.Pet} "Pets retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /customers/{customer_id}/pets [get]
func ListPets(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customer_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var pets []model.Pet
	if err := db.Preload("Age").Where("owner_id = ?", customerID).Order("id").Find(&pets).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve pets", Err: err})
		return
	}
	petImages(c, pets)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Pets retrieved", Data: pets})
}

// CreatePet godoc
// @Summary      Add a pet
// @Description  Add a pet to the caller's own customer profile
// @Tags         Pets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        request body PetRequest true "Pet data"
// @Success      201 {object} util.APIResponse{data=model.Pet} "Pet created"
// @Failure      400 {object} util.APIResponse "Invalid data or pet already exists"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /customers/{customer_id}/pets [post]
func CreatePet(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	var req PetRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	image, ok := saveImageOrRespond(c, util.MediaPets, req.Image)
	if !ok {
		return
	}
	pet := req.pet(customerID)
	pet.Image = image
	err := db.Transaction(func(tx *gorm.DB) error {
		return createPet(tx, &pet, req.Year, req.Month)
	})
	if err != nil {
		discardImage(c, image)
		respondTxError(c, "Failed to create pet", errPetExists.Error(), err)
		return
	}

	pet.Image = imageURL(c, pet.Image)
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Pet created", Data: pet})
}

// GetPet godoc
// @Summary      Get a pet
// @Tags         Pets
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        pet_id path int true "Pet ID"
// @Success      200 {object} util.APIResponse{data=model.Pet} "Pet retrieved"
// @Failure      404 {object} util.APIResponse "Pet not found"
// @Router       /customers/{customer_id}/pets/{pet_id} [get]
func GetPet(c *gin.Context) {
	customerID, ok := parseIDParam(c, "customer_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	pet, ok := loadOwnPet(c, db, customerID)
	if !ok {
		return
	}
	pet.Image = imageURL(c, pet.Image)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Pet retrieved", Data: pet})
}

// UpdatePet godoc
// @Summary      Update a pet
// @Tags         Pets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        pet_id path int true "Pet ID"
// @Param        request body UpdatePetRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=model.Pet} "Pet updated"
// @Failure      400 {object} util.APIResponse "Invalid data or pet already exists"
// @Failure      403 {object} util.APIResponse "Not your pet"
// @Failure      404 {object} util.APIResponse "Pet not found"
// @Router       /customers/{customer_id}/pets/{pet_id} [patch]
func UpdatePet(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	var req UpdatePetRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	pet, ok := loadOwnPet(c, db, customerID)
	if !ok {
		return
	}

	req.applyTo(&pet)
	year, month := pet.Age.Year, pet.Age.Month
	if req.Year != nil {
		year = *req.Year
	}
	if req.Month != nil {
		month = *req.Month
	}

	oldImage := pet.Image
	image, ok := replaceImageOrRespond(c, util.MediaPets, oldImage, req.Image)
	if !ok {
		return
	}
	pet.Image = image
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := attachAge(tx, &pet, year, month); err != nil {
			return err
		}
		exists, err := petExists(tx, &pet)
		if err != nil {
			return err
		}
		if exists {
			return badRequest("%s", errPetExists.Error())
		}
		return tx.Omit("Age").Save(&pet).Error
	})
	finishImageSwap(c, oldImage, image, err == nil)
	if err != nil {
		respondTxError(c, "Failed to update pet", errPetExists.Error(), err)
		return
	}

	pet.Image = imageURL(c, pet.Image)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Pet updated", Data: pet})
}

// DeletePet godoc
// @Summary      Delete a pet
// @Description  Delete a pet. Its bookings are kept without the pet.
// @Tags         Pets
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        pet_id path int true "Pet ID"
// @Success      200 {object} util.APIResponse "Pet deleted"
// @Failure      403 {object} util.APIResponse "Not your pet"
// @Failure      404 {object} util.APIResponse "Pet not found"
// @Router       /customers/{customer_id}/pets/{pet_id} [delete]
func DeletePet(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	pet, ok := loadOwnPet(c, db, customerID)
	if !ok {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Booking{}).Where("pet_id = ?", pet.ID).Update("pet_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&pet).Error
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete pet", Err: err})
		return
	}
	discardImage(c, pet.Image)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Pet deleted"})
}
