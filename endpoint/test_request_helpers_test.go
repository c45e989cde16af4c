package endpoint

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/middleware"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

// requestSpec describes one request against a single handler. db and
// principal, when set, are put into the context the way the middlewares do.
type requestSpec struct {
	method       string
	registerPath string
	requestPath  string
	handler      gin.HandlerFunc
	body         interface{}
	headers      map[string]string
	db           *gorm.DB
	principal    *util.Principal
}

func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	var reader *strings.Reader
	setJSONHeader := false
	switch v := spec.body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
		setJSONHeader = true
	default:
		b, _ := json.Marshal(spec.body)
		reader = strings.NewReader(string(b))
		setJSONHeader = true
	}

	req := httptest.NewRequest(spec.method, spec.requestPath, reader)
	if setJSONHeader {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			return w, nil, err
		}
	}
	return w, response, nil
}

func doRequestWithHandler(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	inject := func(c *gin.Context) {
		if spec.db != nil {
			c.Set(middleware.DBKey, spec.db)
		}
		if spec.principal != nil {
			c.Set(middleware.UserIDKey, spec.principal.UserID)
			c.Set(middleware.PrincipalKey, *spec.principal)
		}
		c.Next()
	}
	switch spec.method {
	case http.MethodGet:
		r.GET(spec.registerPath, inject, spec.handler)
	case http.MethodPost:
		r.POST(spec.registerPath, inject, spec.handler)
	case http.MethodPatch:
		r.PATCH(spec.registerPath, inject, spec.handler)
	case http.MethodDelete:
		r.DELETE(spec.registerPath, inject, spec.handler)
	default:
		r.Handle(spec.method, spec.registerPath, inject, spec.handler)
	}
	return performRequest(r, spec)
}
