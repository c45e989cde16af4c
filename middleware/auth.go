package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

var (
	errSessionInactive = errors.New("session expired or revoked")
	errNoDatabase      = errors.New("db is nil")
)

// RequireAuth accepts requests carrying a valid access token whose session
// is still active. It sets the user id, session id and principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, util.TokenAccess)
		if !ok {
			return
		}
		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: errNoDatabase})
			c.Abort()
			return
		}
		userID, _ := claims.UserID()
		if err := ensureSessionActive(c, db, userID, claims.SessionID); err != nil {
			util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), claims.Email, c.ClientIP(), c.Request.URL.Path, err.Error())
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Session expired, please sign in again", Err: err})
			c.Abort()
			return
		}
		if !setPrincipal(c, db, userID) {
			return
		}
		c.Set(SessionIDKey, claims.SessionID)
		c.Next()
	}
}

// RequireRecoveryToken accepts the short lived token issued by the password
// recovery request.
func RequireRecoveryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, util.TokenRecovery)
		if !ok {
			return
		}
		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: errNoDatabase})
			c.Abort()
			return
		}
		userID, _ := claims.UserID()
		if !setPrincipal(c, db, userID) {
			return
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, tokenType string) (*util.Claims, bool) {
	claims, err := util.ParseToken(util.BearerToken(c.GetHeader("Authorization")), tokenType)
	if err != nil {
		msg := "Invalid or missing token"
		if errors.Is(err, util.ErrMissingToken) {
			msg = "Authentication credentials were not provided"
		}
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: msg, Err: err})
		c.Abort()
		return nil, false
	}
	if _, err := claims.UserID(); err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or missing token", Err: err})
		c.Abort()
		return nil, false
	}
	return claims, true
}

// ensureSessionActive checks Redis first and falls back to the sessions
// table, re-caching what the DB confirms.
func ensureSessionActive(c *gin.Context, db *gorm.DB, userID uint, sid string) error {
	ctx := c.Request.Context()
	cachedUID, found, err := util.LookupCachedSession(ctx, sid)
	if err != nil {
		slog.WarnContext(ctx, "session cache lookup failed", "error", err)
	}
	if found && cachedUID == userID {
		return nil
	}

	var session model.Session
	if err := db.First(&session, "id = ?", sid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errSessionInactive
		}
		return err
	}
	now := time.Now()
	if session.UserID != userID || !session.Active(now) {
		return errSessionInactive
	}
	if err := util.CacheSession(ctx, userID, sid, session.ExpiresAt.Sub(now)); err != nil {
		slog.WarnContext(ctx, "session cache write failed", "error", err)
	}
	return nil
}

func setPrincipal(c *gin.Context, db *gorm.DB, userID uint) bool {
	p, err := util.LoadPrincipal(db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not found", Err: err})
		} else {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		}
		c.Abort()
		return false
	}
	c.Set(UserIDKey, userID)
	c.Set(PrincipalKey, p)
	return true
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// GetPrincipal returns the authenticated account.
func GetPrincipal(c *gin.Context) (util.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return util.Principal{}, false
	}
	p, ok := v.(util.Principal)
	return p, ok
}

// GetSessionID returns the session of the access token, if any.
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
