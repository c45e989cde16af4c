package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestContains(t *testing.T) {
	list := []string{"a", "b", "c"}
	if !Contains("b", list) {
		t.Fatalf("expected Contains to return true for existing item")
	}
	if Contains("x", list) {
		t.Fatalf("expected Contains to return false for missing item")
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trim and collapse", "  Grooming    at home  ", "Grooming at home"},
		{"already normalized", "Grooming at home", "Grooming at home"},
		{"empty string", "", ""},
		{"only whitespace", "   ", ""},
		{"tabs and newlines", "Dog\t\ntraining", "Dog training"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestResponseHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		call    func(c *gin.Context)
		status  int
		success bool
	}{
		{"ok", func(c *gin.Context) { CallSuccessOK(c, APISuccessParams{Msg: "ok", Data: 1}) }, http.StatusOK, true},
		{"created", func(c *gin.Context) { CallSuccessCreated(c, APISuccessParams{Msg: "created"}) }, http.StatusCreated, true},
		{"user error", func(c *gin.Context) { CallUserError(c, APIErrorParams{Msg: "bad", Err: errors.New("bad")}) }, http.StatusBadRequest, false},
		{"unauthorized", func(c *gin.Context) { CallUserNotAuthorized(c, APIErrorParams{Msg: "no", Err: errors.New("no")}) }, http.StatusUnauthorized, false},
		{"forbidden", func(c *gin.Context) { CallForbidden(c, APIErrorParams{Msg: "action forbidden", Err: errors.New("forbidden")}) }, http.StatusForbidden, false},
		{"too many", func(c *gin.Context) { CallTooManyRequests(c, APIErrorParams{Msg: "slow down", Err: errors.New("rate")}) }, http.StatusTooManyRequests, false},
		{"not found", func(c *gin.Context) { CallErrorNotFound(c, APIErrorParams{Msg: "missing", Err: errors.New("missing")}) }, http.StatusNotFound, false},
		{"server error nil err", func(c *gin.Context) { CallServerError(c, APIErrorParams{Msg: "boom"}) }, http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.call(c)

			assert.Equal(t, tt.status, w.Code)
			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.success, resp.Success)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, IsUniqueViolation(errors.New("Error 1062: Duplicate entry 'a' for key 'email'")))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query         string
		limit, offset int
	}{
		{"", DefaultPageLimit, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=-1&offset=abc", DefaultPageLimit, 0},
		{"?limit=1000", MaxPageLimit, 0},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/services"+tt.query, nil)
		limit, offset := ParsePagination(c)
		assert.Equal(t, tt.limit, limit, tt.query)
		assert.Equal(t, tt.offset, offset, tt.query)
	}
}

func TestParseBoolQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/services?customer_place=true&supplier_place=maybe", nil)

	v, ok, err := ParseBoolQuery(c, "customer_place")
	assert.True(t, v)
	assert.True(t, ok)
	assert.NoError(t, err)

	_, ok, err = ParseBoolQuery(c, "supplier_place")
	assert.True(t, ok)
	assert.Error(t, err)

	_, ok, err = ParseBoolQuery(c, "missing")
	assert.False(t, ok)
	assert.NoError(t, err)
}
