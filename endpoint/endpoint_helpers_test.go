package endpoint

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestParseIDParam(t *testing.T) {
	handler := func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		util.CallSuccessOK(c, util.APISuccessParams{Msg: "ok", Data: id})
	}

	cases := []struct {
		path   string
		status int
	}{
		{"/items/7", http.StatusOK},
		{"/items/0", http.StatusBadRequest},
		{"/items/abc", http.StatusBadRequest},
		{"/items/-3", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w, resp, err := doRequestWithHandler(gin.New(), requestSpec{
				method:       http.MethodGet,
				registerPath: "/items/:id",
				requestPath:  tc.path,
				handler:      handler,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, float64(7), resp["data"])
			}
		})
	}
}

func TestOwnCustomerOrRespond(t *testing.T) {
	handler := func(c *gin.Context) {
		if _, _, ok := ownCustomerOrRespond(c, "customer_id"); ok {
			util.CallSuccessOK(c, util.APISuccessParams{Msg: "ok"})
		}
	}
	customer := &util.Principal{UserID: 1, ProfileType: model.ProfileCustomer, ProfileID: 3}
	supplier := &util.Principal{UserID: 2, ProfileType: model.ProfileSupplier, ProfileID: 3}

	cases := []struct {
		name      string
		principal *util.Principal
		path      string
		status    int
	}{
		{"own profile", customer, "/customers/3", http.StatusOK},
		{"someone else", customer, "/customers/4", http.StatusForbidden},
		{"supplier with same id", supplier, "/customers/3", http.StatusForbidden},
		{"anonymous", nil, "/customers/3", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp, err := doRequestWithHandler(gin.New(), requestSpec{
				method:       http.MethodGet,
				registerPath: "/customers/:customer_id",
				requestPath:  tc.path,
				handler:      handler,
				principal:    tc.principal,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "action forbidden", resp["msg"])
			}
		})
	}
}

func TestRespondTxError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"bad request", badRequest("pet %s", "exists"), http.StatusBadRequest, "pet exists"},
		{"forbidden", forbidden("not yours"), http.StatusForbidden, "not yours"},
		{"validation", &model.ValidationError{Field: "rating", Message: "too high"}, http.StatusBadRequest, "rating: too high"},
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound, "Thing not found"},
		{"duplicate", gorm.ErrDuplicatedKey, http.StatusBadRequest, "thing exists"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Thing not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp, err := doRequestWithHandler(gin.New(), requestSpec{
				method:       http.MethodGet,
				registerPath: "/tx",
				requestPath:  "/tx",
				handler: func(c *gin.Context) {
					respondTxError(c, "Thing not found", "thing exists", tc.err)
				},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, resp["msg"])
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestParseBookingDate(t *testing.T) {
	want := time.Date(2024, 5, 14, 10, 0, 0, 0, time.Local)

	for _, raw := range []string{"2024-05-14T10:00", "2024-05-14 10:00", " 2024-05-14T10:00 "} {
		got, err := parseBookingDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	got, err := parseBookingDate("2024-05-14T10:00:00Z")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC).Equal(got))
	assert.Equal(t, time.Local, got.Location())

	_, err = parseBookingDate("14.05.2024 10:00")
	assert.Error(t, err)
}

func TestBuildSchedules(t *testing.T) {
	off := false
	schedules, err := buildSchedules([]ScheduleRequest{
		{Weekday: "MON", TimePerVisit: 1.5},
		{Weekday: "sun", IsWorkingDay: &off},
	})
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	assert.Equal(t, "mon", schedules[0].Weekday)
	assert.True(t, schedules[0].IsWorkingDay)
	assert.Equal(t, 90, schedules[0].TimePerVisit)
	assert.Equal(t, model.DefaultStartWorkTime, schedules[0].StartWorkTime)
	assert.Equal(t, model.DefaultBreakEndTime, schedules[0].BreakEndTime)

	assert.False(t, schedules[1].IsWorkingDay)
	assert.Equal(t, model.DefaultVisitMinute, schedules[1].TimePerVisit)
}

func TestBuildSchedulesRejects(t *testing.T) {
	cases := map[string][]ScheduleRequest{
		"repeated weekday": {{Weekday: "tue"}, {Weekday: "tue"}},
		"unknown weekday":  {{Weekday: "funday"}},
		"odd visit length": {{Weekday: "wed", TimePerVisit: 0.75}},
		"end before start": {{Weekday: "thu", StartWorkTime: "18:00", EndWorkTime: "10:00"}},
	}
	for name, reqs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := buildSchedules(reqs)
			var verr *model.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestBuildPrices(t *testing.T) {
	prices, err := buildPrices([]PriceRequest{
		{ServiceName: " haircut ", CostFrom: 1000, CostTo: 2000},
		{ServiceName: "bathing", CostFrom: 500, CostTo: 500},
	})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "haircut", prices[0].ServiceName)

	_, err = buildPrices([]PriceRequest{
		{ServiceName: "haircut", CostFrom: 1000, CostTo: 2000},
		{ServiceName: "haircut", CostFrom: 1500, CostTo: 2500},
	})
	assert.Error(t, err)

	_, err = buildPrices([]PriceRequest{{ServiceName: "haircut", CostFrom: 3000, CostTo: 2000}})
	assert.Error(t, err)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, uniqueIDs([]uint{3, 1, 3, 2, 1}))
	assert.Empty(t, uniqueIDs(nil))
}

func TestParseServiceFilter(t *testing.T) {
	run := func(query string) (serviceFilter, error) {
		var f serviceFilter
		var ferr error
		_, _, err := doRequestWithHandler(gin.New(), requestSpec{
			method:       http.MethodGet,
			registerPath: "/services",
			requestPath:  "/services" + query,
			handler: func(c *gin.Context) {
				f, ferr = parseServiceFilter(c)
				c.Status(http.StatusNoContent)
			},
		})
		require.NoError(t, err)
		return f, ferr
	}

	f, err := run("?category=grooming&cost_from=100&supplier_place=true&pet_type=cat")
	require.NoError(t, err)
	assert.Equal(t, "grooming", f.category)
	require.NotNil(t, f.costFrom)
	assert.Equal(t, 100, *f.costFrom)
	assert.Nil(t, f.costTo)
	require.NotNil(t, f.supplierPlace)
	assert.True(t, *f.supplierPlace)
	assert.Nil(t, f.customerPlace)
	assert.True(t, f.jsonFiltered())

	_, err = run("?cost_to=cheap")
	assert.EqualError(t, err, "cost_to must be an integer")

	_, err = run("?customer_place=maybe")
	assert.EqualError(t, err, "customer_place must be true or false")
}

func TestServiceFilterMatches(t *testing.T) {
	s := &model.Service{ExtraFields: map[string]interface{}{
		"service_name": []interface{}{"haircut", "bathing"},
		"pet_type":     []interface{}{"dog"},
	}}
	assert.True(t, serviceFilter{serviceName: "Haircut"}.matches(s))
	assert.True(t, serviceFilter{petType: "dog"}.matches(s))
	assert.False(t, serviceFilter{petType: "cat"}.matches(s))
	assert.False(t, serviceFilter{serviceName: "trimming", petType: "dog"}.matches(s))
}

func TestOverlapsAny(t *testing.T) {
	base := time.Date(2024, 5, 14, 10, 0, 0, 0, time.Local)
	bookings := []model.Booking{{ToDate: base}}

	assert.True(t, overlapsAny(bookings, base, time.Hour))
	assert.True(t, overlapsAny(bookings, base.Add(30*time.Minute), time.Hour))
	assert.False(t, overlapsAny(bookings, base.Add(time.Hour), time.Hour))
	assert.False(t, overlapsAny(nil, base, time.Hour))
}

func TestLockServicesSelectsForUpdate(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=vet dbname=vet sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))

	_, err = lockServices(db, []uint{3, 1})
	require.NoError(t, err)
	require.NotEmpty(t, statements)
	assert.Contains(t, statements[0], `FROM "services"`)
	assert.Contains(t, statements[0], "FOR UPDATE")
}
