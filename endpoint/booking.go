package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/broker"
	"github.com/veterinary-salons/backend/mail"
	"github.com/veterinary-salons/backend/middleware"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errBookingExists = errors.New("booking already exists")

type BookingRequest struct {
	Price       []uint     `json:"price" binding:"required,min=1" example:"1,2"`
	Pet         PetRequest `json:"pet" binding:"required"`
	ToDate      string     `json:"to_date" binding:"required" example:"2024-05-14T10:00"`
	Description string     `json:"description,omitempty" example:"He is afraid of clippers"`
}

// bookingLayouts are the accepted to_date formats. Dates without a zone are
// local time.
var bookingLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

func parseBookingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range bookingLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.In(time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("to_date %q must look like 2006-01-02T15:04", raw)
}

// activeBookingsOfService returns the active bookings of every price of a service.
func activeBookingsOfService(db *gorm.DB, serviceID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	err := db.Where("is_active = ? AND price_id IN (?)", true,
		db.Model(&model.Price{}).Select("id").Where("service_id = ?", serviceID)).
		Find(&bookings).Error
	return bookings, err
}

func overlapsAny(bookings []model.Booking, start time.Time, visit time.Duration) bool {
	for i := range bookings {
		if bookings[i].Overlaps(start, visit) {
			return true
		}
	}
	return false
}

// bookingPlan is what CreateBooking resolved inside its transaction.
type bookingPlan struct {
	bookings []model.Booking
	services map[uint]model.Service
	prices   []model.Price
}

// planBooking checks the request against prices, pet and schedules and
// stores one booking per price.
// lockServices loads services with their schedules and keeps the rows
// locked until commit, so concurrent bookings of one service serialize on
// the overlap check.
func lockServices(tx *gorm.DB, ids []uint) ([]model.Service, error) {
	var services []model.Service
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Schedules").
		Where("id IN ?", ids).Order("id").Find(&services).Error
	return services, err
}

func planBooking(tx *gorm.DB, customerID, supplierID uint, req BookingRequest, toDate, now time.Time) (bookingPlan, error) {
	plan := bookingPlan{services: map[uint]model.Service{}}

	ids := uniqueIDs(req.Price)
	if err := tx.Where("id IN ?", ids).Order("id").Find(&plan.prices).Error; err != nil {
		return plan, err
	}
	if len(plan.prices) != len(ids) {
		return plan, badRequest("some of the prices do not exist")
	}
	serviceIDs := make([]uint, 0, len(plan.prices))
	for _, p := range plan.prices {
		serviceIDs = append(serviceIDs, p.ServiceID)
	}
	services, err := lockServices(tx, uniqueIDs(serviceIDs))
	if err != nil {
		return plan, err
	}
	for _, s := range services {
		if s.SupplierID != supplierID {
			return plan, badRequest("service %d is not offered by this supplier", s.ID)
		}
		plan.services[s.ID] = s
	}

	pet, err := findOrCreatePet(tx, customerID, req.Pet)
	if err != nil {
		return plan, err
	}

	booked := map[uint][]model.Booking{}
	for _, price := range plan.prices {
		service := plan.services[price.ServiceID]
		if !service.HasPetType(pet.Type) {
			return plan, badRequest("service %q does not work with %s", service.AdTitle, pet.Type)
		}
		schedule, ok := service.ScheduleFor(toDate.Weekday())
		if !ok || !schedule.Accepts(toDate) {
			return plan, badRequest("the selected time is outside the working hours")
		}

		active, ok := booked[service.ID]
		if !ok {
			if active, err = activeBookingsOfService(tx, service.ID); err != nil {
				return plan, err
			}
			booked[service.ID] = active
		}
		visit := time.Duration(schedule.TimePerVisit) * time.Minute
		for i := range active {
			b := &active[i]
			if b.CustomerID == customerID && b.PriceID == price.ID && b.ToDate.Equal(toDate) {
				return plan, badRequest("%s", errBookingExists.Error())
			}
		}
		if overlapsAny(active, toDate, visit) {
			return plan, badRequest("the selected time is already booked")
		}

		plan.bookings = append(plan.bookings, model.Booking{
			CustomerID:  customerID,
			PriceID:     price.ID,
			PetID:       &pet.ID,
			Date:        now,
			ToDate:      toDate,
			Description: strings.TrimSpace(req.Description),
			IsActive:    true,
		})
	}
	if err := tx.Omit("Customer", "Price", "Pet").Create(&plan.bookings).Error; err != nil {
		return plan, err
	}
	return plan, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// publishBookings emits one event per booking. Broker failures don't undo
// the stored change.
func publishBookings(c *gin.Context, eventType string, supplierID uint, bookings []model.Booking) {
	now := time.Now().UTC()
	events := make([]broker.BookingEvent, 0, len(bookings))
	for _, b := range bookings {
		events = append(events, broker.BookingEvent{
			Type:       eventType,
			BookingID:  b.ID,
			CustomerID: b.CustomerID,
			SupplierID: supplierID,
			PriceID:    b.PriceID,
			ToDate:     b.ToDate,
			At:         now,
		})
	}
	if err := middleware.GetPublisher(c).Publish(c.Request.Context(), events...); err != nil {
		slog.WarnContext(c.Request.Context(), "booking event publish failed", "type", eventType, "error", err)
	}
}

// notifySupplier mails the supplier about new bookings.
func notifySupplier(c *gin.Context, db *gorm.DB, customerID, supplierID uint, plan bookingPlan, req BookingRequest) {
	user, err := loadUserOfProfile(db, model.ProfileSupplier, supplierID)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "supplier account not found", "supplier_id", supplierID, "error", err)
		return
	}
	var customer model.CustomerProfile
	if err := db.First(&customer, customerID).Error; err != nil {
		slog.WarnContext(c.Request.Context(), "customer profile not found", "customer_id", customerID, "error", err)
		return
	}
	titles := make([]string, 0, len(plan.services))
	seen := map[uint]bool{}
	names := make([]string, 0, len(plan.prices))
	for _, p := range plan.prices {
		names = append(names, p.ServiceName)
		if !seen[p.ServiceID] {
			seen[p.ServiceID] = true
			titles = append(titles, plan.services[p.ServiceID].AdTitle)
		}
	}
	_ = sendMail(c, mail.NewBooking(mail.BookingNotice{
		SupplierEmail: user.Email,
		CustomerName:  strings.TrimSpace(customer.FirstName + " " + customer.LastName),
		ServiceTitle:  strings.Join(titles, ", "),
		PriceNames:    names,
		At:            plan.bookings[0].ToDate,
		Description:   strings.TrimSpace(req.Description),
	}))
}

func bookingImages(c *gin.Context, bookings []model.Booking) {
	for i := range bookings {
		if bookings[i].Pet != nil {
			bookings[i].Pet.Image = imageURL(c, bookings[i].Pet.Image)
		}
		if bookings[i].Customer != nil {
			bookings[i].Customer.Image = imageURL(c, bookings[i].Customer.Image)
		}
	}
}

// CreateBooking godoc
// @Summary      Book a supplier
// @Description  Book one or more prices of a supplier for a pet. The pet is found by name, type and breed or created. Every price gets its own booking at to_date.
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        supplier_id path int true "Supplier ID"
// @Param        request body BookingRequest true "Booking data"
// @Success      201 {object} util.APIResponse{data=[]model.Booking} "Booking created"
// @Failure      400 {object} util.APIResponse "Invalid data, busy time or booking already exists"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /customers/{customer_id}/booking/{supplier_id} [post]
func CreateBooking(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	supplierID, ok := parseIDParam(c, "supplier_id")
	if !ok {
		return
	}
	var req BookingRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	toDate, err := parseBookingDate(req.ToDate)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	now := time.Now()
	if err := model.ValidateBookingDate(toDate, now); err != nil {
		respondStoreError(c, "Invalid date", "", err)
		return
	}
	if len(req.Description) > model.MaxLenBookingNote {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("description must be at most %d characters", model.MaxLenBookingNote),
			Err: fmt.Errorf("description too long"),
		})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var plan bookingPlan
	err = db.Transaction(func(tx *gorm.DB) error {
		plan, err = planBooking(tx, customerID, supplierID, req, toDate, now)
		return err
	})
	if err != nil {
		respondTxError(c, "Failed to create booking", errBookingExists.Error(), err)
		return
	}

	publishBookings(c, broker.BookingCreated, supplierID, plan.bookings)
	notifySupplier(c, db, customerID, supplierID, plan, req)

	ids := make([]uint, 0, len(plan.bookings))
	for _, b := range plan.bookings {
		ids = append(ids, b.ID)
	}
	var created []model.Booking
	if err := db.Preload("Price").Preload("Pet.Age").Where("id IN ?", ids).Order("id").Find(&created).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load booking", Err: err})
		return
	}
	bookingImages(c, created)
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Booking created", Data: created})
}

func listCustomerBookings(c *gin.Context, msg string, scope func(*gorm.DB) *gorm.DB) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var bookings []model.Booking
	err := scope(db.Preload("Price").Preload("Pet.Age").Where("customer_id = ?", customerID)).
		Order("to_date").Find(&bookings).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve bookings", Err: err})
		return
	}
	bookingImages(c, bookings)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: msg, Data: bookings})
}

// ListBookings godoc
// @Summary      Active bookings
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Success      200 {object} util.APIResponse{data=[]model.Booking} "Bookings retrieved"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /customers/{customer_id}/booking [get]
func ListBookings(c *gin.Context) {
	listCustomerBookings(c, "Bookings retrieved", func(q *gorm.DB) *gorm.DB {
		return q.Where("is_active = ?", true)
	})
}

// BookingHistory godoc
// @Summary      Booking history
// @Description  Bookings the supplier marked as done. Cancelled bookings are left out.
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Success      200 {object} util.APIResponse{data=[]model.Booking} "History retrieved"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /customers/{customer_id}/booking/history [get]
func BookingHistory(c *gin.Context) {
	listCustomerBookings(c, "History retrieved", func(q *gorm.DB) *gorm.DB {
		return q.Where("is_done = ? AND is_active = ?", true, false)
	})
}

// supplierOfPrice returns the supplier offering a price.
func supplierOfPrice(db *gorm.DB, priceID uint) (uint, error) {
	var service model.Service
	err := db.Select("services.supplier_id").
		Joins("JOIN prices ON prices.service_id = services.id").
		Where("prices.id = ?", priceID).
		First(&service).Error
	return service.SupplierID, err
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  Cancel the active bookings of a price
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        customer_id path int true "Customer ID"
// @Param        price_id path int true "Price ID"
// @Success      200 {object} util.APIResponse "Booking cancelled"
// @Failure      400 {object} util.APIResponse "Nothing to cancel"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /customers/{customer_id}/booking/{price_id} [delete]
func CancelBooking(c *gin.Context) {
	_, customerID, ok := ownCustomerOrRespond(c, "customer_id")
	if !ok {
		return
	}
	priceID, ok := parseIDParam(c, "price_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var cancelled []model.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ? AND price_id = ? AND is_active = ?", customerID, priceID, true).
			Find(&cancelled).Error; err != nil {
			return err
		}
		if len(cancelled) == 0 {
			return badRequest("booking was already cancelled or never existed")
		}
		ids := make([]uint, 0, len(cancelled))
		for _, b := range cancelled {
			ids = append(ids, b.ID)
		}
		return tx.Model(&model.Booking{}).Where("id IN ?", ids).Updates(map[string]interface{}{
			"is_active":    false,
			"is_cancelled": true,
			"is_done":      false,
		}).Error
	})
	if err != nil {
		respondTxError(c, "Failed to cancel booking", "", err)
		return
	}

	supplierID, err := supplierOfPrice(db, priceID)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "supplier of price not found", "price_id", priceID, "error", err)
	}
	publishBookings(c, broker.BookingCancelled, supplierID, cancelled)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Booking cancelled"})
}

func supplierBookings(db *gorm.DB, supplierID uint) *gorm.DB {
	return db.Joins("JOIN prices ON prices.id = bookings.price_id").
		Joins("JOIN services ON services.id = prices.service_id").
		Where("services.supplier_id = ?", supplierID)
}

// ListSupplierBookings godoc
// @Summary      Bookings of a supplier
// @Description  Active bookings of every service of the supplier
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        supplier_id path int true "Supplier ID"
// @Success      200 {object} util.APIResponse{data=[]model.Booking} "Bookings retrieved"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Router       /suppliers/{supplier_id}/bookings [get]
func ListSupplierBookings(c *gin.Context) {
	_, supplierID, ok := ownSupplierOrRespond(c, "supplier_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var bookings []model.Booking
	err := supplierBookings(db, supplierID).
		Preload("Price").Preload("Pet.Age").Preload("Customer").
		Where("bookings.is_active = ?", true).
		Order("bookings.to_date").
		Find(&bookings).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve bookings", Err: err})
		return
	}
	bookingImages(c, bookings)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Bookings retrieved", Data: bookings})
}

// MarkBookingDone godoc
// @Summary      Complete a booking
// @Description  Mark an active booking of the supplier as done, which lets the customer review it
// @Tags         Bookings
// @Produce      json
// @Security     BearerAuth
// @Param        supplier_id path int true "Supplier ID"
// @Param        booking_id path int true "Booking ID"
// @Success      200 {object} util.APIResponse{data=model.Booking} "Booking done"
// @Failure      400 {object} util.APIResponse "Booking is not active"
// @Failure      403 {object} util.APIResponse "Not your profile"
// @Failure      404 {object} util.APIResponse "Booking not found"
// @Router       /suppliers/{supplier_id}/bookings/{booking_id}/done [patch]
func MarkBookingDone(c *gin.Context) {
	_, supplierID, ok := ownSupplierOrRespond(c, "supplier_id")
	if !ok {
		return
	}
	bookingID, ok := parseIDParam(c, "booking_id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var booking model.Booking
	if err := supplierBookings(db, supplierID).Where("bookings.id = ?", bookingID).First(&booking).Error; err != nil {
		respondStoreError(c, "Booking not found", "", err)
		return
	}
	if !booking.IsActive {
		util.CallUserError(c, util.APIErrorParams{Msg: "booking is not active", Err: fmt.Errorf("booking %d is not active", booking.ID)})
		return
	}
	if err := db.Model(&model.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
		"is_done":   true,
		"is_active": false,
	}).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update booking", Err: err})
		return
	}
	booking.IsDone = true
	booking.IsActive = false
	publishBookings(c, broker.BookingDone, supplierID, []model.Booking{booking})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Booking done", Data: booking})
}
