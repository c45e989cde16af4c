package endpoint

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleRequest describes one weekday. TimePerVisit is given in hours.
type ScheduleRequest struct {
	Weekday        string  `json:"weekday" example:"mon"`
	IsWorkingDay   *bool   `json:"is_working_day,omitempty" example:"true"`
	AroundClock    bool    `json:"around_clock"`
	StartWorkTime  string  `json:"start_work_time,omitempty" example:"09:00"`
	EndWorkTime    string  `json:"end_work_time,omitempty" example:"19:00"`
	BreakStartTime string  `json:"break_start_time,omitempty" example:"14:00"`
	BreakEndTime   string  `json:"break_end_time,omitempty" example:"15:00"`
	TimePerVisit   float64 `json:"time_per_visit,omitempty" example:"1"`
}

type PriceRequest struct {
	ServiceName string `json:"service_name" example:"haircut"`
	CostFrom    int    `json:"cost_from" example:"1000"`
	CostTo      int    `json:"cost_to" example:"2500"`
}

type ServiceRequest struct {
	// Category defaults to the supplier's specialist type.
	Category      string                 `json:"category,omitempty" example:"grooming"`
	AdTitle       string                 `json:"ad_title" example:"Grooming at home"`
	Description   string                 `json:"description,omitempty" example:"Careful grooming of any breed"`
	Image         string                 `json:"image,omitempty" example:"data:image/png;base64,iVBORw0..."`
	ExtraFields   map[string]interface{} `json:"extra_fields" binding:"required" swaggertype:"object"`
	CustomerPlace bool                   `json:"customer_place"`
	SupplierPlace bool                   `json:"supplier_place"`
	Schedules     []ScheduleRequest      `json:"schedules"`
	Prices        []PriceRequest         `json:"price"`
}

// UpdateServiceRequest changes the given fields. A supplied schedules or
// price list replaces the stored one: rows are matched by weekday and by
// service_name, unmatched stored rows are deleted.
type UpdateServiceRequest struct {
	AdTitle       *string                `json:"ad_title,omitempty" example:"Grooming at home"`
	Description   *string                `json:"description,omitempty"`
	Image         *string                `json:"image,omitempty"`
	ExtraFields   map[string]interface{} `json:"extra_fields,omitempty" swaggertype:"object"`
	CustomerPlace *bool                  `json:"customer_place,omitempty"`
	SupplierPlace *bool                  `json:"supplier_place,omitempty"`
	Schedules     *[]ScheduleRequest     `json:"schedules,omitempty"`
	Prices        *[]PriceRequest        `json:"price,omitempty"`
}

// ServiceList is one page of services.
type ServiceList struct {
	Total    int             `json:"total" example:"42"`
	Services []model.Service `json:"services"`
}

// ServiceDetail adds review statistics to a service.
type ServiceDetail struct {
	model.Service
	ReviewsCount int64   `json:"reviews_count" example:"12"`
	Rating       float64 `json:"rating" example:"4.5"`
}

// SlotsResponse lists the free visit start times of a day.
type SlotsResponse struct {
	Date         string   `json:"date" example:"2024-05-14"`
	Weekday      string   `json:"weekday" example:"tue"`
	TimePerVisit int      `json:"time_per_visit" example:"60"`
	Slots        []string `json:"slots" example:"09:00,10:00"`
}

func (r ScheduleRequest) schedule() model.Schedule {
	s := model.Schedule{
		Weekday:        strings.ToLower(strings.TrimSpace(r.Weekday)),
		IsWorkingDay:   true,
		AroundClock:    r.AroundClock,
		StartWorkTime:  r.StartWorkTime,
		EndWorkTime:    r.EndWorkTime,
		BreakStartTime: r.BreakStartTime,
		BreakEndTime:   r.BreakEndTime,
		TimePerVisit:   model.VisitHoursToMinutes(r.TimePerVisit),
	}
	if r.IsWorkingDay != nil {
		s.IsWorkingDay = *r.IsWorkingDay
	}
	s.ApplyDefaults()
	return s
}

func buildSchedules(reqs []ScheduleRequest) ([]model.Schedule, error) {
	out := make([]model.Schedule, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		s := r.schedule()
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Weekday] {
			return nil, &model.ValidationError{Field: "schedules", Message: fmt.Sprintf("weekday %s is given twice", s.Weekday)}
		}
		seen[s.Weekday] = true
		out = append(out, s)
	}
	return out, nil
}

func buildPrices(reqs []PriceRequest) ([]model.Price, error) {
	out := make([]model.Price, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		p := model.Price{ServiceName: strings.TrimSpace(r.ServiceName), CostFrom: r.CostFrom, CostTo: r.CostTo}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if seen[p.ServiceName] {
			return nil, &model.ValidationError{Field: "price", Message: fmt.Sprintf("service_name %q is given twice", p.ServiceName)}
		}
		seen[p.ServiceName] = true
		out = append(out, p)
	}
	return out, nil
}

func loadService(db *gorm.DB, id uint) (model.Service, error) {
	var service model.Service
	err := db.Preload("Schedules", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Prices", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Supplier").
		First(&service, id).Error
	return service, err
}

func loadServiceOrRespond(c *gin.Context, db *gorm.DB) (model.Service, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return model.Service{}, false
	}
	service, err := loadService(db, id)
	if err != nil {
		respondStoreError(c, "Service not found", "", err)
		return model.Service{}, false
	}
	return service, true
}

// ownServiceOrRespond loads the service of the path and checks the caller
// supplies it.
func ownServiceOrRespond(c *gin.Context, db *gorm.DB) (model.Service, bool) {
	p, ok := supplierOrRespond(c)
	if !ok {
		return model.Service{}, false
	}
	service, ok := loadServiceOrRespond(c, db)
	if !ok {
		return model.Service{}, false
	}
	if !p.IsSupplier(service.SupplierID) {
		util.CallForbidden(c, util.APIErrorParams{Msg: "action forbidden", Err: errForbidden})
		return model.Service{}, false
	}
	return service, true
}

func detailOf(c *gin.Context, db *gorm.DB, service model.Service) (ServiceDetail, error) {
	var stats struct {
		Count int64
		Avg   float64
	}
	err := db.Model(&model.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("service_id = ?", service.ID).
		Scan(&stats).Error
	services := []model.Service{service}
	serviceImages(c, services)
	return ServiceDetail{Service: services[0], ReviewsCount: stats.Count, Rating: stats.Avg}, err
}

// serviceFilter holds the query parameters of ListServices.
type serviceFilter struct {
	category      string
	serviceName   string
	petType       string
	costFrom      *int
	costTo        *int
	supplierPlace *bool
	customerPlace *bool
}

func parseServiceFilter(c *gin.Context) (serviceFilter, error) {
	f := serviceFilter{
		category:    c.Query("category"),
		serviceName: strings.TrimSpace(c.Query("service_name")),
		petType:     c.Query("pet_type"),
	}
	for key, dst := range map[string]**int{"cost_from": &f.costFrom, "cost_to": &f.costTo} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("%s must be an integer", key)
		}
		*dst = &v
	}
	for key, dst := range map[string]**bool{"supplier_place": &f.supplierPlace, "customer_place": &f.customerPlace} {
		v, present, err := util.ParseBoolQuery(c, key)
		if err != nil {
			return f, fmt.Errorf("%s must be true or false", key)
		}
		if present {
			*dst = &v
		}
	}
	return f, nil
}

func (f serviceFilter) apply(q *gorm.DB) *gorm.DB {
	if f.category != "" {
		q = q.Where("category = ?", f.category)
	}
	if f.supplierPlace != nil {
		q = q.Where("supplier_place = ?", *f.supplierPlace)
	}
	if f.customerPlace != nil {
		q = q.Where("customer_place = ?", *f.customerPlace)
	}
	if f.costFrom != nil {
		q = q.Where("EXISTS (SELECT 1 FROM prices WHERE prices.service_id = services.id AND prices.cost_from >= ?)", *f.costFrom)
	}
	if f.costTo != nil {
		q = q.Where("EXISTS (SELECT 1 FROM prices WHERE prices.service_id = services.id AND prices.cost_from <= ?)", *f.costTo)
	}
	return q
}

// jsonFiltered reports whether the filter looks into extra_fields, which is
// matched in Go so that every driver behaves the same.
func (f serviceFilter) jsonFiltered() bool {
	return f.serviceName != "" || f.petType != ""
}

func (f serviceFilter) matches(s *model.Service) bool {
	if f.serviceName != "" && !s.HasServiceName(f.serviceName) {
		return false
	}
	if f.petType != "" && !s.HasPetType(f.petType) {
		return false
	}
	return true
}

func withServiceRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Schedules", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Prices", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Supplier")
}

// ListServices godoc
// @Summary      List services
// @Description  Search services by category, price, place, service name and pet type
// @Tags         Services
// @Produce      json
// @Param        category query string false "Category: cynology, veterinary, grooming, shelter"
// @Param        cost_from query int false "Some price starts at or above this value"
// @Param        cost_to query int false "Some price starts at or below this value"
// @Param        supplier_place query bool false "Service at the supplier's place"
// @Param        customer_place query bool false "Service at the customer's place"
// @Param        service_name query string false "Contained in extra_fields.service_name"
// @Param        pet_type query string false "Contained in extra_fields.pet_type"
// @Param        limit query int false "Page size (default 20, max 100)"
// @Param        offset query int false "Offset"
// @Success      200 {object} util.APIResponse{data=ServiceList} "Services retrieved"
// @Failure      400 {object} util.APIResponse "Invalid filter"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /services [get]
func ListServices(c *gin.Context) {
	filter, err := parseServiceFilter(c)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: err.Error(), Err: err})
		return
	}
	limit, offset := util.ParsePagination(c)
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := filter.apply(db.Model(&model.Service{})).Session(&gorm.Session{})
	var services []model.Service
	var total int

	if filter.jsonFiltered() {
		var all []model.Service
		if err := withServiceRelations(query).Order("services.id").Find(&all).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve services", Err: err})
			return
		}
		for i := range all {
			if filter.matches(&all[i]) {
				services = append(services, all[i])
			}
		}
		total = len(services)
		if offset >= total {
			services = nil
		} else {
			services = services[offset:min(offset+limit, total)]
		}
	} else {
		var count int64
		if err := query.Count(&count).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count services", Err: err})
			return
		}
		total = int(count)
		if err := withServiceRelations(query).Order("services.id").Limit(limit).Offset(offset).Find(&services).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve services", Err: err})
			return
		}
	}
	if services == nil {
		services = []model.Service{}
	}
	serviceImages(c, services)

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Services retrieved",
		Data: ServiceList{Total: total, Services: services},
	})
}

// GetService godoc
// @Summary      Get a service
// @Description  Service with schedules, prices, supplier and review statistics
// @Tags         Services
// @Produce      json
// @Param        id path int true "Service ID"
// @Success      200 {object} util.APIResponse{data=ServiceDetail} "Service retrieved"
// @Failure      404 {object} util.APIResponse "Service not found"
// @Router       /services/{id} [get]
func GetService(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	service, ok := loadServiceOrRespond(c, db)
	if !ok {
		return
	}
	detail, err := detailOf(c, db, service)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load reviews", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Service retrieved", Data: detail})
}

// CreateService godoc
// @Summary      Create a service
// @Description  Create a service with its schedules and prices in one go. time_per_visit is given in hours.
// @Tags         Services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ServiceRequest true "Service data"
// @Success      201 {object} util.APIResponse{data=ServiceDetail} "Service created"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      403 {object} util.APIResponse "Only suppliers can create services"
// @Router       /services [post]
func CreateService(c *gin.Context) {
	p, ok := supplierOrRespond(c)
	if !ok {
		return
	}
	var req ServiceRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var supplier model.SupplierProfile
	if err := db.First(&supplier, p.ProfileID).Error; err != nil {
		respondStoreError(c, "Supplier not found", "", err)
		return
	}
	if req.Category == "" {
		req.Category = supplier.SpecialistType
	}
	if req.Category != supplier.SpecialistType {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "category must match the supplier's specialist type",
			Err: fmt.Errorf("category %q, specialist type %q", req.Category, supplier.SpecialistType),
		})
		return
	}

	service := model.Service{
		SupplierID:    supplier.ID,
		Category:      req.Category,
		AdTitle:       strings.TrimSpace(req.AdTitle),
		Description:   strings.TrimSpace(req.Description),
		ExtraFields:   datatypes.JSONMap(req.ExtraFields),
		CustomerPlace: req.CustomerPlace,
		SupplierPlace: req.SupplierPlace,
	}
	if err := service.Validate(); err != nil {
		respondStoreError(c, "Invalid service", "", err)
		return
	}
	schedules, err := buildSchedules(req.Schedules)
	if err != nil {
		respondStoreError(c, "Invalid schedule", "", err)
		return
	}
	prices, err := buildPrices(req.Prices)
	if err != nil {
		respondStoreError(c, "Invalid price", "", err)
		return
	}

	image, ok := saveImageOrRespond(c, util.MediaServices, req.Image)
	if !ok {
		return
	}
	service.Image = image
	service.Schedules = schedules
	service.Prices = prices
	if err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Supplier").Create(&service).Error
	}); err != nil {
		discardImage(c, image)
		respondStoreError(c, "Failed to create service", "Service already exists", err)
		return
	}

	created, err := loadService(db, service.ID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load service", Err: err})
		return
	}
	detail, err := detailOf(c, db, created)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load reviews", Err: err})
		return
	}
	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Service created", Data: detail})
}

// syncSchedules makes the stored schedules of a service equal wanted.
func syncSchedules(tx *gorm.DB, serviceID uint, stored, wanted []model.Schedule) error {
	byDay := make(map[string]model.Schedule, len(stored))
	for _, s := range stored {
		byDay[s.Weekday] = s
	}
	for _, s := range wanted {
		s.ServiceID = serviceID
		if old, ok := byDay[s.Weekday]; ok {
			s.ID = old.ID
			delete(byDay, s.Weekday)
			if err := tx.Save(&s).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Create(&s).Error; err != nil {
			return err
		}
	}
	for _, s := range byDay {
		if err := tx.Delete(&model.Schedule{}, s.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// syncPrices makes the stored prices of a service equal wanted. A price
// with active bookings can't be dropped.
func syncPrices(tx *gorm.DB, serviceID uint, stored, wanted []model.Price) error {
	byName := make(map[string]model.Price, len(stored))
	for _, p := range stored {
		byName[p.ServiceName] = p
	}
	for _, p := range wanted {
		p.ServiceID = serviceID
		if old, ok := byName[p.ServiceName]; ok {
			p.ID = old.ID
			delete(byName, p.ServiceName)
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
	}
	for _, p := range byName {
		var active int64
		if err := tx.Model(&model.Booking{}).Where("price_id = ? AND is_active = ?", p.ID, true).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return badRequest("price %q has active bookings", p.ServiceName)
		}
		if err := tx.Where("price_id = ?", p.ID).Delete(&model.Booking{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Price{}, p.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpdateService godoc
// @Summary      Update a service
// @Description  Update service fields. A given schedules or price list replaces the stored one, matching schedules by weekday and prices by service_name.
// @Tags         Services
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Service ID"
// @Param        request body UpdateServiceRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=ServiceDetail} "Service updated"
// @Failure      400 {object} util.APIResponse "Invalid data"
// @Failure      403 {object} util.APIResponse "Not your service"
// @Failure      404 {object} util.APIResponse "Service not found"
// @Router       /services/{id} [patch]
func UpdateService(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	service, ok := ownServiceOrRespond(c, db)
	if !ok {
		return
	}
	var req UpdateServiceRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	if req.AdTitle != nil {
		service.AdTitle = strings.TrimSpace(*req.AdTitle)
	}
	if req.Description != nil {
		service.Description = strings.TrimSpace(*req.Description)
	}
	if req.ExtraFields != nil {
		service.ExtraFields = datatypes.JSONMap(req.ExtraFields)
	}
	if req.CustomerPlace != nil {
		service.CustomerPlace = *req.CustomerPlace
	}
	if req.SupplierPlace != nil {
		service.SupplierPlace = *req.SupplierPlace
	}
	if err := service.Validate(); err != nil {
		respondStoreError(c, "Invalid service", "", err)
		return
	}
	var schedules []model.Schedule
	var prices []model.Price
	var err error
	if req.Schedules != nil {
		if schedules, err = buildSchedules(*req.Schedules); err != nil {
			respondStoreError(c, "Invalid schedule", "", err)
			return
		}
	}
	if req.Prices != nil {
		if prices, err = buildPrices(*req.Prices); err != nil {
			respondStoreError(c, "Invalid price", "", err)
			return
		}
	}

	oldImage := service.Image
	image, ok := replaceImageOrRespond(c, util.MediaServices, oldImage, req.Image)
	if !ok {
		return
	}
	service.Image = image
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&service).Error; err != nil {
			return err
		}
		if req.Schedules != nil {
			if err := syncSchedules(tx, service.ID, service.Schedules, schedules); err != nil {
				return err
			}
		}
		if req.Prices != nil {
			return syncPrices(tx, service.ID, service.Prices, prices)
		}
		return nil
	})
	finishImageSwap(c, oldImage, image, err == nil)
	if err != nil {
		respondTxError(c, "Failed to update service", "Service already exists", err)
		return
	}

	updated, err := loadService(db, service.ID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load service", Err: err})
		return
	}
	detail, err := detailOf(c, db, updated)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load reviews", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Service updated", Data: detail})
}

// DeleteService godoc
// @Summary      Delete a service
// @Description  Delete a service with its schedules, prices, bookings, reviews and favorites
// @Tags         Services
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Service ID"
// @Success      200 {object} util.APIResponse "Service deleted"
// @Failure      403 {object} util.APIResponse "Not your service"
// @Failure      404 {object} util.APIResponse "Service not found"
// @Router       /services/{id} [delete]
func DeleteService(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	service, ok := ownServiceOrRespond(c, db)
	if !ok {
		return
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return deleteServiceRows(tx, []uint{service.ID})
	}); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete service", Err: err})
		return
	}
	discardImage(c, service.Image)

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Service deleted"})
}

// ServiceSlots godoc
// @Summary      Free appointment times
// @Description  Visit start times of a day that are still free
// @Tags         Services
// @Produce      json
// @Param        id path int true "Service ID"
// @Param        date query string true "Day as YYYY-MM-DD"
// @Success      200 {object} util.APIResponse{data=SlotsResponse} "Slots retrieved"
// @Failure      400 {object} util.APIResponse "Invalid date"
// @Failure      404 {object} util.APIResponse "Service not found"
// @Router       /services/{id}/slots [get]
func ServiceSlots(c *gin.Context) {
	day, err := time.ParseInLocation("2006-01-02", c.Query("date"), time.Local)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "date must look like YYYY-MM-DD", Err: err})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	service, ok := loadServiceOrRespond(c, db)
	if !ok {
		return
	}

	resp := SlotsResponse{Date: day.Format("2006-01-02"), Weekday: model.WeekdayCode(day.Weekday()), Slots: []string{}}
	schedule, found := service.ScheduleFor(day.Weekday())
	if !found || !schedule.IsWorkingDay {
		util.CallSuccessOK(c, util.APISuccessParams{Msg: "Slots retrieved", Data: resp})
		return
	}
	resp.TimePerVisit = schedule.TimePerVisit

	bookings, err := activeBookingsOfService(db, service.ID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load bookings", Err: err})
		return
	}
	now := time.Now()
	visit := time.Duration(schedule.TimePerVisit) * time.Minute
	for _, start := range schedule.SlotStarts() {
		at := time.Date(day.Year(), day.Month(), day.Day(), start/60, start%60, 0, 0, time.Local)
		if !at.After(now) || overlapsAny(bookings, at, visit) {
			continue
		}
		resp.Slots = append(resp.Slots, model.FormatClock(start))
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Slots retrieved", Data: resp})
}

// ListServiceReviews godoc
// @Summary      Reviews of a service
// @Tags         Services
// @Produce      json
// @Param        id path int true "Service ID"
// @Success      200 {object} util.APIResponse{data=[]model.Review} "Reviews retrieved"
// @Failure      404 {object} util.APIResponse "Service not found"
// @Router       /services/{id}/reviews [get]
func ListServiceReviews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var service model.Service
	if err := db.Select("id").First(&service, id).Error; err != nil {
		respondStoreError(c, "Service not found", "", err)
		return
	}

	reviews, err := reviewsOf(db, id)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to retrieve reviews", Err: err})
		return
	}
	for i := range reviews {
		if reviews[i].Customer != nil {
			reviews[i].Customer.Image = imageURL(c, reviews[i].Customer.Image)
		}
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Reviews retrieved", Data: reviews})
}
