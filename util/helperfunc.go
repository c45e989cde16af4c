package util

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

// Contains function is to check item whether is exist or not in a list and will return bool
func Contains(d string, dl []string) bool {
	for _, v := range dl {
		if v == d {
			return true
		}
	}
	return false
}

func errorResponse(c *gin.Context, status int, params APIErrorParams) {
	errText := ""
	if params.Err != nil {
		errText = params.Err.Error()
	}
	c.JSON(status, APIResponse{
		Success: false,
		Error:   errText,
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	})
}

// CallErrorNotFound is for return API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusNotFound, params)
}

// CallUserError is for return error from user side
func CallUserError(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusBadRequest, params)
}

// CallServerError is for return API response server error
func CallServerError(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusInternalServerError, params)
}

// CallUserNotAuthorized is for return API response with status code 401
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusUnauthorized, params)
}

// CallForbidden answers 403 when the caller is authenticated but acts on
// somebody else's resource.
func CallForbidden(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusForbidden, params)
}

// CallTooManyRequests answers 429 from the rate limiter.
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	errorResponse(c, http.StatusTooManyRequests, params)
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// CallSuccessCreated is CallSuccessOK with status code 201.
func CallSuccessCreated(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// NormalizeName normalizes a name by trimming leading/trailing whitespace
// and collapsing multiple internal spaces into single spaces.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Join(strings.Fields(name), " ")
}

// IsUniqueViolation reports whether err comes from a unique index, whatever
// the driver behind gorm.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ParsePagination reads limit and offset query parameters. Invalid or
// missing values fall back to the defaults.
func ParsePagination(c *gin.Context) (limit, offset int) {
	limit = DefaultPageLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// ParseBoolQuery parses an optional boolean query parameter.
func ParseBoolQuery(c *gin.Context, key string) (value bool, present bool, err error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(raw)
	return value, true, err
}
