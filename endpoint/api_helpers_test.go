package endpoint_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/veterinary-salons/backend/broker"
	"github.com/veterinary-salons/backend/config"
	"github.com/veterinary-salons/backend/endpoint"
	"github.com/veterinary-salons/backend/mail"
	"github.com/veterinary-salons/backend/middleware"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

const testPassword = "password123"

// a 1x1 transparent png
const tinyPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type apiResp struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// testEnv is a full router on a private in-memory database with recording
// mail and event doubles.
type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	mail   *mail.Recorder
	events *broker.Memory
	media  *util.MediaStore
}

type account struct {
	email     string
	profileID uint
	access    string
	refresh   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := config.ConnectDatabase()
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	config.SetRedisClientForTesting(nil)
	util.SetSecurityLoggerDB(nil)
	util.InitPrincipalCache(time.Minute)

	env := &testEnv{
		t:      t,
		db:     db,
		mail:   &mail.Recorder{},
		events: &broker.Memory{},
		media:  util.NewMediaStore(t.TempDir(), "/media/"),
	}
	r := gin.New()
	r.Use(
		middleware.DatabaseMiddleware(db),
		middleware.MailerMiddleware(env.mail),
		middleware.PublisherMiddleware(env.events),
		middleware.MediaMiddleware(env.media),
	)
	endpoint.RegisterRoutes(r.Group("/api/v1"))
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, apiResp) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp apiResp
	if w.Body.Len() > 0 {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decode(t *testing.T, resp apiResp, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst), string(resp.Data))
}

func customerSignup(email string) map[string]interface{} {
	return map[string]interface{}{
		"profile_type": "customer",
		"email":        email,
		"password":     testPassword,
		"first_name":   "Anna",
		"last_name":    "Petrova",
		"phone_number": "89991234567",
	}
}

func supplierSignup(email, specialist string) map[string]interface{} {
	body := map[string]interface{}{
		"profile_type":    "supplier",
		"email":           email,
		"password":        testPassword,
		"first_name":      "Ivan",
		"last_name":       "Sidorov",
		"phone_number":    "89997654321",
		"specialist_type": specialist,
		"about":           "Ten years with animals",
	}
	if specialist == model.CategoryCynology {
		body["pet_type"] = model.PetDog
	}
	return body
}

func (e *testEnv) signup(body map[string]interface{}) endpoint.ProfileSummary {
	e.t.Helper()
	w, resp := e.do(http.MethodPost, "/auth/signup", body, "")
	require.Equal(e.t, http.StatusCreated, w.Code, resp.Msg)
	var summary endpoint.ProfileSummary
	decode(e.t, resp, &summary)
	return summary
}

func (e *testEnv) signin(email, password string) endpoint.SigninResponse {
	e.t.Helper()
	w, resp := e.do(http.MethodPost, "/auth/signin", map[string]string{"email": email, "password": password}, "")
	require.Equal(e.t, http.StatusOK, w.Code, resp.Msg)
	var out endpoint.SigninResponse
	decode(e.t, resp, &out)
	return out
}

func (e *testEnv) register(body map[string]interface{}) account {
	e.t.Helper()
	summary := e.signup(body)
	login := e.signin(summary.Email, testPassword)
	return account{
		email:     summary.Email,
		profileID: summary.ID,
		access:    login.TokenData.Access,
		refresh:   login.TokenData.Refresh,
	}
}

func (e *testEnv) newCustomer(email string) account {
	return e.register(customerSignup(email))
}

func (e *testEnv) newSupplier(email, specialist string) account {
	return e.register(supplierSignup(email, specialist))
}

var codeRe = regexp.MustCompile(`\d{5}`)

// lastCode returns the code of the latest mail sent to email.
func (e *testEnv) lastCode(email string) string {
	e.t.Helper()
	sent := e.mail.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if len(sent[i].To) > 0 && sent[i].To[0] == email {
			code := codeRe.FindString(sent[i].Body)
			require.NotEmpty(e.t, code, sent[i].Body)
			return code
		}
	}
	e.t.Fatalf("no mail sent to %s", email)
	return ""
}

// weekSchedules opens every weekday 09:00-19:00 with a 14:00-15:00 break
// and hourly visits.
func weekSchedules() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(model.Weekdays))
	for _, day := range model.Weekdays {
		out = append(out, map[string]interface{}{
			"weekday":          day,
			"start_work_time":  "09:00",
			"end_work_time":    "19:00",
			"break_start_time": "14:00",
			"break_end_time":   "15:00",
			"time_per_visit":   1,
		})
	}
	return out
}

func groomingService() map[string]interface{} {
	return map[string]interface{}{
		"ad_title":       "Grooming at home",
		"description":    "Careful grooming of any breed",
		"extra_fields":   map[string]interface{}{"service_name": []string{"haircut", "bathing"}, "pet_type": []string{"dog", "cat"}},
		"customer_place": true,
		"supplier_place": false,
		"schedules":      weekSchedules(),
		"price": []map[string]interface{}{
			{"service_name": "haircut", "cost_from": 1000, "cost_to": 2500},
			{"service_name": "bathing", "cost_from": 500, "cost_to": 800},
		},
	}
}

func (e *testEnv) createService(supplier account, body map[string]interface{}) endpoint.ServiceDetail {
	e.t.Helper()
	w, resp := e.do(http.MethodPost, "/services", body, supplier.access)
	require.Equal(e.t, http.StatusCreated, w.Code, resp.Msg)
	var detail endpoint.ServiceDetail
	decode(e.t, resp, &detail)
	return detail
}

func petBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"type":          "dog",
		"breed":         "corgi",
		"name":          name,
		"year":          2,
		"month":         4,
		"weight":        11.5,
		"is_vaccinated": true,
	}
}

// tomorrowAt is a bookable local time: tomorrow is always in the current
// or next month.
func tomorrowAt(hour int) string {
	d := time.Now().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.Local).Format("2006-01-02T15:04")
}

func customerPath(c account, rest string) string {
	return fmt.Sprintf("/customers/%d%s", c.profileID, rest)
}

func (e *testEnv) book(c account, supplierID uint, prices []uint, at string, pet map[string]interface{}) (*httptest.ResponseRecorder, apiResp) {
	e.t.Helper()
	body := map[string]interface{}{"price": prices, "pet": pet, "to_date": at}
	return e.do(http.MethodPost, customerPath(c, fmt.Sprintf("/booking/%d", supplierID)), body, c.access)
}

// mustBook books prices and returns the stored bookings.
func (e *testEnv) mustBook(c account, supplierID uint, prices []uint, at string) []model.Booking {
	e.t.Helper()
	w, resp := e.book(c, supplierID, prices, at, petBody("Bublik"))
	require.Equal(e.t, http.StatusCreated, w.Code, resp.Msg)
	var bookings []model.Booking
	decode(e.t, resp, &bookings)
	return bookings
}

func priceID(detail endpoint.ServiceDetail, name string) uint {
	for _, p := range detail.Prices {
		if p.ServiceName == name {
			return p.ID
		}
	}
	return 0
}
