package endpoint

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

var errNotUsed = errors.New("you cannot review services you have not used")

type ReviewRequest struct {
	Text   string `json:"text" binding:"required" example:"Gentle and careful groomer"`
	Rating int    `json:"rating" binding:"required" example:"5"`
}

// ReviewResponse is a stored review with the reviewed price and the date of
// the visit.
type ReviewResponse struct {
	model.Review
	Price       model.Price `json:"price"`
	ServiceDate time.Time   `json:"service_date"`
}

func reviewsOf(db *gorm.DB, serviceID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := db.Preload("Customer").
		Where("service_id = ?", serviceID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}

// CreateReview godoc
// @Summary      Review a price
// @Description  Review a price the customer has a completed booking of. One review per price.
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        price_id path int true "Price ID"
// @Param        request body ReviewRequest true "Review"
// @Success      201 {object} util.APIResponse{data=ReviewResponse} "Review created"
// @Failure      400 {object} util.APIResponse "Invalid data or already reviewed"
// @Failure      403 {object} util.APIResponse "No completed booking"
// @Failure      404 {object} util.APIResponse "Price not found"
// @Router       /customers/{customer_id}/reviews/{price_id} [post]
func CreateReview(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	priceID, ok := parseIDParam(c, "price_id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var price model.Price
	if err := db.First(&price, priceID).Error; err != nil {
		respondStoreError(c, "Price not found", "", err)
		return
	}
	var used model.Booking
	err := db.Where("customer_id = ? AND price_id = ? AND is_done = ?", customerID, priceID, true).
		Order("to_date DESC").First(&used).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.CallForbidden(c, util.APIErrorParams{Msg: errNotUsed.Error(), Err: errNotUsed})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	review := model.Review{
		CustomerID: customerID,
		ServiceID:  price.ServiceID,
		PriceID:    price.ID,
		Text:       strings.TrimSpace(req.Text),
		Rating:     req.Rating,
	}
	if err := review.Validate(); err != nil {
		respondStoreError(c, "Invalid review", "", err)
		return
	}
	var exists int64
	if err := db.Model(&model.Review{}).Where("customer_id = ? AND price_id = ?", customerID, priceID).Count(&exists).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}
	if exists > 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "you have already reviewed this service", Err: errors.New("duplicate review")})
		return
	}
	if err := db.Omit("Customer").Create(&review).Error; err != nil {
		respondStoreError(c, "Failed to create review", "you have already reviewed this service", err)
		return
	}

	if err := db.Preload("Customer").First(&review, review.ID).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load review", Err: err})
		return
	}
	if review.Customer != nil {
		review.Customer.Image = imageURL(c, review.Customer.Image)
	}
	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Review created",
		Data: ReviewResponse{Review: review, Price: price, ServiceDate: used.ToDate},
	})
}
