package endpoint

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/middleware"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type RefreshResponse struct {
	Access string `json:"access" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

var errSessionRevoked = errors.New("session expired or revoked")

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new access token of the same session
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} util.APIResponse{data=RefreshResponse} "Token refreshed"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Invalid token or session"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/token/refresh [post]
func RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	claims, err := util.ParseToken(req.Refresh, util.TokenRefresh)
	if err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or expired refresh token", Err: err})
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid or expired refresh token", Err: err})
		return
	}

	var session model.Session
	err = db.First(&session, "id = ?", claims.SessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && (session.UserID != userID || !session.Active(time.Now()))) {
		util.LogUnauthorizedAccess(claims.Subject, claims.Email, c.ClientIP(), c.Request.URL.Path, errSessionRevoked.Error())
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Session expired, please sign in again", Err: errSessionRevoked})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	p, err := util.LoadPrincipal(db, userID)
	if err != nil {
		respondStoreError(c, "User not found", "", err)
		return
	}
	access, err := util.IssueAccessToken(util.TokenSubject{
		UserID: p.UserID, Email: p.Email, ProfileType: p.ProfileType, ProfileID: p.ProfileID,
	}, session.ID, model.AccessTokenLifetime)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Token refreshed", Data: RefreshResponse{Access: access}})
}

// TokenInfo describes the session behind a valid access token.
type TokenInfo struct {
	UserID         uint      `json:"user_id" example:"1"`
	Email          string    `json:"email" example:"owner@example.com"`
	ProfileType    string    `json:"profile_type" example:"customer"`
	ProfileID      uint      `json:"profile_id" example:"1"`
	EmailConfirmed bool      `json:"email_confirmed"`
	SessionID      string    `json:"session_id" example:"6f1c0a52-5d0e-4c1e-9d0a-3c0b1b6f8e21"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ValidateToken godoc
// @Summary      Validate access token
// @Description  Report the account and session behind the presented access token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=TokenInfo} "Valid token"
// @Failure      401 {object} util.APIResponse "Invalid or expired token"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/token/validate [get]
func ValidateToken(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}

	var session model.Session
	if err := db.First(&session, "id = ?", middleware.GetSessionID(c)).Error; err != nil {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Session not found", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Valid token",
		Data: TokenInfo{
			UserID:         p.UserID,
			Email:          p.Email,
			ProfileType:    p.ProfileType,
			ProfileID:      p.ProfileID,
			EmailConfirmed: p.EmailConfirmed,
			SessionID:      session.ID,
			ExpiresAt:      session.ExpiresAt,
		},
	})
}
