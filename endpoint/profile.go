package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

// CustomerProfileResponse is a customer with the login email and pets.
type CustomerProfileResponse struct {
	model.CustomerProfile
	Email string `json:"email" example:"owner@example.com"`
}

type UpdateCustomerRequest struct {
	FirstName    *string `json:"first_name,omitempty" example:"Anna"`
	LastName     *string `json:"last_name,omitempty" example:"Petrova"`
	PhoneNumber  *string `json:"phone_number,omitempty" example:"89991234567"`
	Address      *string `json:"address,omitempty" example:"Moscow, Tverskaya 1"`
	ContactEmail *string `json:"contact_email,omitempty" example:"contact@example.com"`
	// Image is base64; an empty string removes the current image.
	Image *string `json:"image,omitempty"`
}

type UpdateSupplierRequest struct {
	UpdateCustomerRequest
	SpecialistType *string `json:"specialist_type,omitempty" example:"grooming"`
	PetType        *string `json:"pet_type,omitempty" example:"dog"`
	About          *string `json:"about,omitempty" example:"Ten years of grooming"`
}

type contactFields struct {
	FirstName, LastName, PhoneNumber, Address, ContactEmail *string
}

func (r UpdateCustomerRequest) apply(f contactFields) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(f.FirstName, r.FirstName)
	set(f.LastName, r.LastName)
	set(f.PhoneNumber, r.PhoneNumber)
	set(f.Address, r.Address)
	set(f.ContactEmail, r.ContactEmail)
}

// replaceImageOrRespond stores a new image for an optional base64 input and
// returns the value the image column should take.
func replaceImageOrRespond(c *gin.Context, folder, current string, encoded *string) (string, bool) {
	if encoded == nil {
		return current, true
	}
	if *encoded == "" {
		return "", true
	}
	return saveImageOrRespond(c, folder, *encoded)
}

// finishImageSwap drops whichever of the two images is no longer referenced.
func finishImageSwap(c *gin.Context, old, updated string, saved bool) {
	if old == updated {
		return
	}
	if saved {
		discardImage(c, old)
	} else {
		discardImage(c, updated)
	}
}

func loadUserOfProfile(db *gorm.DB, profileType string, profileID uint) (model.User, error) {
	var user model.User
	err := db.Where("profile_type = ? AND profile_id = ?", profileType, profileID).First(&user).Error
	return user, err
}

// GetCustomerProfile godoc
// @Summary      Get customer profile
// @Description  Customer profile with the account email and pets
// @Tags         Profiles
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Customer ID"
// @Success      200 {object} util.APIResponse{data=CustomerProfileResponse} "Customer retrieved"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "Customer not found"
// @Router       /profiles/customers/{id} [get]
func GetCustomerProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var profile model.CustomerProfile
	if err := db.Preload("Pets.Age").First(&profile, id).Error; err != nil {
		respondStoreError(c, "Customer not found", "", err)
		return
	}
	user, err := loadUserOfProfile(db, model.ProfileCustomer, id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}
	profile.Image = imageURL(c, profile.Image)
	petImages(c, profile.Pets)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Customer retrieved",
		Data: CustomerProfileResponse{CustomerProfile: profile, Email: user.Email},
	})
}

// UpdateCustomerProfile godoc
// @Summary      Update customer profile
// @Description  Update the caller's own customer profile
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Customer ID"
// @Param        request body UpdateCustomerRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=model.CustomerProfile} "Customer updated"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Failure      404 {object} util.APIResponse "Customer not found"
// @Router       /profiles/customers/{id} [patch]
func UpdateCustomerProfile(c *gin.Context) {
	_, id, ok := ownCustomerOrRespond(c, "id")
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var profile model.CustomerProfile
	if err := db.First(&profile, id).Error; err != nil {
		respondStoreError(c, "Customer not found", "", err)
		return
	}
	req.apply(contactFields{&profile.FirstName, &profile.LastName, &profile.PhoneNumber, &profile.Address, &profile.ContactEmail})
	if err := profile.Validate(); err != nil {
		respondStoreError(c, "Invalid profile", "", err)
		return
	}

	oldImage := profile.Image
	image, ok := replaceImageOrRespond(c, util.MediaCustomerAvatars, oldImage, req.Image)
	if !ok {
		return
	}
	profile.Image = image
	err := db.Save(&profile).Error
	finishImageSwap(c, oldImage, image, err == nil)
	if err != nil {
		respondStoreError(c, "Failed to update customer", "Customer already exists", err)
		return
	}

	profile.Image = imageURL(c, profile.Image)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Customer updated", Data: profile})
}

// ListSuppliers godoc
// @Summary      List suppliers
// @Description  Listing suppliers is not allowed
// @Tags         Profiles
// @Produce      json
// @Failure      403 {object} util.APIResponse "Action forbidden"
// @Router       /profiles/suppliers [get]
func ListSuppliers(c *gin.Context) {
	util.CallForbidden(c, util.APIErrorParams{Msg: "action forbidden", Err: errForbidden})
}

// GetSupplierProfile godoc
// @Summary      Get supplier profile
// @Description  Public supplier profile
// @Tags         Profiles
// @Produce      json
// @Param        id path int true "Supplier ID"
// @Success      200 {object} util.APIResponse{data=model.SupplierProfile} "Supplier retrieved"
// @Failure      404 {object} util.APIResponse "Supplier not found"
// @Router       /profiles/suppliers/{id} [get]
func GetSupplierProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var profile model.SupplierProfile
	if err := db.First(&profile, id).Error; err != nil {
		respondStoreError(c, "Supplier not found", "", err)
		return
	}
	profile.Image = imageURL(c, profile.Image)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Supplier retrieved", Data: profile})
}

// UpdateSupplierProfile godoc
// @Summary      Update supplier profile
// @Description  Update the caller's own supplier profile. The specialist type is fixed once services exist.
// @Tags         Profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Supplier ID"
// @Param        request body UpdateSupplierRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=model.SupplierProfile} "Supplier updated"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Failure      404 {object} util.APIResponse "Supplier not found"
// @Router       /profiles/suppliers/{id} [patch]
func UpdateSupplierProfile(c *gin.Context) {
	_, id, ok := ownSupplierOrRespond(c, "id")
	if !ok {
		return
	}
	var req UpdateSupplierRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var profile model.SupplierProfile
	if err := db.First(&profile, id).Error; err != nil {
		respondStoreError(c, "Supplier not found", "", err)
		return
	}
	req.apply(contactFields{&profile.FirstName, &profile.LastName, &profile.PhoneNumber, &profile.Address, &profile.ContactEmail})
	if req.PetType != nil {
		profile.PetType = *req.PetType
	}
	if req.About != nil {
		profile.About = strings.TrimSpace(*req.About)
	}
	if req.SpecialistType != nil && *req.SpecialistType != profile.SpecialistType {
		var services int64
		if err := db.Model(&model.Service{}).Where("supplier_id = ?", id).Count(&services).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
			return
		}
		if services > 0 {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "specialist_type cannot be changed while services exist",
				Err: fmt.Errorf("supplier %d has %d services", id, services),
			})
			return
		}
		profile.SpecialistType = *req.SpecialistType
	}
	if err := profile.Validate(); err != nil {
		respondStoreError(c, "Invalid profile", "", err)
		return
	}

	oldImage := profile.Image
	image, ok := replaceImageOrRespond(c, util.MediaSupplierAvatars, oldImage, req.Image)
	if !ok {
		return
	}
	profile.Image = image
	err := db.Save(&profile).Error
	finishImageSwap(c, oldImage, image, err == nil)
	if err != nil {
		respondStoreError(c, "Failed to update supplier", "Supplier already exists", err)
		return
	}

	profile.Image = imageURL(c, profile.Image)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Supplier updated", Data: profile})
}

// deletedSupplier is what deleteSupplierAccount removed.
type deletedSupplier struct {
	profile model.SupplierProfile
	userID  uint
	images  []string
}

// deleteSupplierAccount removes a supplier with its services, their
// schedules, prices, bookings, reviews and favorites, and the login user.
func deleteSupplierAccount(tx *gorm.DB, supplierID uint) (deletedSupplier, error) {
	var out deletedSupplier
	if err := tx.First(&out.profile, supplierID).Error; err != nil {
		return out, err
	}
	out.images = append(out.images, out.profile.Image)

	var services []model.Service
	if err := tx.Where("supplier_id = ?", supplierID).Find(&services).Error; err != nil {
		return out, err
	}
	serviceIDs := make([]uint, 0, len(services))
	for _, s := range services {
		serviceIDs = append(serviceIDs, s.ID)
		out.images = append(out.images, s.Image)
	}
	if err := deleteServiceRows(tx, serviceIDs); err != nil {
		return out, err
	}

	user, err := loadUserOfProfile(tx, model.ProfileSupplier, supplierID)
	switch {
	case err == nil:
		out.userID = user.ID
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.Session{}).Error; err != nil {
			return out, err
		}
		if err := tx.Where("email = ?", user.Email).Delete(&model.EmailCode{}).Error; err != nil {
			return out, err
		}
		if err := tx.Delete(&user).Error; err != nil {
			return out, err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return out, err
	}
	return out, tx.Delete(&out.profile).Error
}

// deleteServiceRows removes services and everything hanging off them.
func deleteServiceRows(tx *gorm.DB, serviceIDs []uint) error {
	if len(serviceIDs) == 0 {
		return nil
	}
	var priceIDs []uint
	if err := tx.Model(&model.Price{}).Where("service_id IN ?", serviceIDs).Pluck("id", &priceIDs).Error; err != nil {
		return err
	}
	if len(priceIDs) > 0 {
		if err := tx.Where("price_id IN ?", priceIDs).Delete(&model.Booking{}).Error; err != nil {
			return err
		}
	}
	for _, m := range []interface{}{&model.Review{}, &model.Favorite{}, &model.Price{}, &model.Schedule{}} {
		if err := tx.Where("service_id IN ?", serviceIDs).Delete(m).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", serviceIDs).Delete(&model.Service{}).Error
}

func deleteSupplier(c *gin.Context, param string) {
	_, id, ok := ownSupplierOrRespond(c, param)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var deleted deletedSupplier
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = deleteSupplierAccount(tx, id)
		return err
	})
	if err != nil {
		respondStoreError(c, "Failed to delete supplier", "", err)
		return
	}

	if deleted.userID != 0 {
		if err := util.InvalidateUserSessions(c.Request.Context(), deleted.userID); err != nil {
			slog.WarnContext(c.Request.Context(), "session cache invalidation failed", "error", err)
		}
		util.ForgetPrincipal(deleted.userID)
	}
	for _, img := range deleted.images {
		discardImage(c, img)
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: fmt.Sprintf("user %s %s deleted", deleted.profile.LastName, deleted.profile.FirstName),
	})
}

// DeleteSupplierProfile godoc
// @Summary      Delete supplier profile
// @Description  Delete the caller's supplier profile with its services and account
// @Tags         Profiles
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Supplier ID"
// @Success      200 {object} util.APIResponse "Supplier deleted"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Failure      404 {object} util.APIResponse "Supplier not found"
// @Router       /profiles/suppliers/{id} [delete]
func DeleteSupplierProfile(c *gin.Context) { deleteSupplier(c, "id") }

// DeleteSupplier godoc
// @Summary      Delete supplier
// @Description  Delete the caller's supplier profile with its services and account
// @Tags         Suppliers
// @Produce      json
// @Security     BearerAuth
// @Param        supplier_id path int true "Supplier ID"
// @Success      200 {object} util.APIResponse "Supplier deleted"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Failure      404 {object} util.APIResponse "Supplier not found"
// @Router       /suppliers/{supplier_id} [delete]
func DeleteSupplier(c *gin.Context) { deleteSupplier(c, "supplier_id") }

// ListSupplierServices godoc
// @Summary      List services of a supplier
// @Description  Services of one supplier with schedules and prices
// @Tags         Suppliers
// @Produce      json
// @Param        supplier_id path int true "Supplier ID"
// @Success      200 {object} util.APIResponse{data=[]model.Service} "Services retrieved"
// @Failure      404 {object} util.APIResponse "Supplier not found"
// @Router       /suppliers/{supplier_id} [get]
func ListSupplierServices(c *gin.Context) {
	id, ok := parseIDParam(c, "supplier_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var supplier model.SupplierProfile
	if err := db.First(&supplier, id).Error; err != nil {
		respondStoreError(c, "Supplier not found", "", err)
		return
	}
	var services []model.Service
	if err := db.Preload("Schedules").Preload("Prices").
		Where("supplier_id = ?", id).Order("id").Find(&services).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve services", Err: err})
		return
	}
	serviceImages(c, services)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Services retrieved", Data: services})
}
