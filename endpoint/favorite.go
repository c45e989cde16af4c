package endpoint

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
)

type FavoriteRequest struct {
	ServiceID uint `json:"service_id" binding:"required" example:"1"`
}

// FavoriteEntry is a favorite service with its prices, supplier and reviews.
type FavoriteEntry struct {
	ID        uint           `json:"id" example:"1"`
	CreatedAt time.Time      `json:"created_at"`
	Service   model.Service  `json:"service"`
	Reviews   []model.Review `json:"reviews"`
}

// ListFavorites godoc
// @Summary      Favorite services
// @Tags         Favorites
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Success      200 {object} util.APIResponse{data=[]FavoriteEntry} "Favorites retrieved"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /customers/{customer_id}/favorites [get]
func ListFavorites(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var favorites []model.Favorite
	if err := db.Preload("Service.Prices").Preload("Service.Supplier").
		Where("customer_id = ?", customerID).Order("id").Find(&favorites).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve favorites", Err: err})
		return
	}

	serviceIDs := make([]uint, 0, len(favorites))
	for _, f := range favorites {
		serviceIDs = append(serviceIDs, f.ServiceID)
	}
	var reviews []model.Review
	if len(serviceIDs) > 0 {
		if err := db.Preload("Customer").Where("service_id IN ?", serviceIDs).
			Order("created_at DESC, id DESC").Find(&reviews).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve reviews", Err: err})
			return
		}
	}
	byService := map[uint][]model.Review{}
	for _, r := range reviews {
		if r.Customer != nil {
			r.Customer.Image = imageURL(c, r.Customer.Image)
		}
		byService[r.ServiceID] = append(byService[r.ServiceID], r)
	}

	entries := make([]FavoriteEntry, 0, len(favorites))
	for _, f := range favorites {
		if f.Service == nil {
			continue
		}
		services := []model.Service{*f.Service}
		serviceImages(c, services)
		entry := FavoriteEntry{ID: f.ID, CreatedAt: f.CreatedAt, Service: services[0], Reviews: byService[f.ServiceID]}
		if entry.Reviews == nil {
			entry.Reviews = []model.Review{}
		}
		entries = append(entries, entry)
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Favorites retrieved", Data: entries})
}

// AddFavorite godoc
// @Summary      Add a favorite
// @Tags         Favorites
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        request body FavoriteRequest true "Service"
// @Success      201 {object} util.APIResponse{data=model.Favorite} "Added to favorites"
// @Failure      400 {object} util.APIResponse "Already in favorites"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Failure      404 {object} util.APIResponse "Service not found"
// @Router       /customers/{customer_id}/favorites [post]
func AddFavorite(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	var req FavoriteRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var service model.Service
	if err := db.Select("id").First(&service, req.ServiceID).Error; err != nil {
		respondStoreError(c, "Service not found", "", err)
		return
	}
	var exists int64
	if err := db.Model(&model.Favorite{}).Where("customer_id = ? AND service_id = ?", customerID, req.ServiceID).Count(&exists).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}
	if exists > 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "service is already in favorites", Err: errors.New("duplicate favorite")})
		return
	}

	favorite := model.Favorite{CustomerID: customerID, ServiceID: req.ServiceID}
	if err := db.Omit("Service").Create(&favorite).Error; err != nil {
		respondStoreError(c, "Failed to add favorite", "service is already in favorites", err)
		return
	}
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Added to favorites", Data: favorite})
}

// RemoveFavorite godoc
// @Summary      Remove a favorite
// @Tags         Favorites
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        service_id path int true "Service ID"
// @Success      200 {object} util.APIResponse "Removed from favorites"
// @Failure      400 {object} util.APIResponse "Not in favorites"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /customers/{customer_id}/favorites/{service_id} [delete]
func RemoveFavorite(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(c, "service_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	res := db.Where("customer_id = ? AND service_id = ?", customerID, serviceID).Delete(&model.Favorite{})
	if res.Error != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to remove favorite", Err: res.Error})
		return
	}
	if res.RowsAffected == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "service is not in favorites", Err: errors.New("favorite not found")})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Removed from favorites"})
}
