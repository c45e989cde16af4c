package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/mail"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

type CodeRequest struct {
	Code string `json:"code" binding:"required,len=5,numeric" example:"04821"`
}

type RecoveryRequest struct {
	Email string `json:"email" binding:"required,email" example:"owner@example.com"`
}

type RecoveryResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type NewPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8" example:"newpassword123"`
}

// checkCodeOrRespond compares a submitted code and answers the failure
// modes. An expired or exhausted code is replaced and the new one mailed with renew.
func checkCodeOrRespond(c *gin.Context, db *gorm.DB, code *model.EmailCode, submitted string, renew func(code string) mail.Message) bool {
	err := code.Check(db, submitted, time.Now())
	switch {
	case err == nil:
		return true
	case errors.Is(err, model.ErrCodeExpired):
		_ = sendMail(c, renew(code.Code))
		util.CallUserError(c, util.APIErrorParams{Msg: "code is expired", Err: err})
	case errors.Is(err, model.ErrCodeIncorrect):
		util.CallUserError(c, util.APIErrorParams{Msg: "incorrect code", Err: err})
	case errors.Is(err, model.ErrCodeExhausted):
		_ = sendMail(c, renew(code.Code))
		util.CallUserError(c, util.APIErrorParams{Msg: "too many incorrect attempts, a new code was sent", Err: err})
	default:
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to check code", Err: err})
	}
	return false
}

// VerifyEmail godoc
// @Summary      Verify email
// @Description  Confirm the account email with the mailed code. An expired code is replaced by a new one.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CodeRequest true "Verification code"
// @Success      200 {object} util.APIResponse "Email verified"
// @Failure      400 {object} util.APIResponse "Code is expired, incorrect or exhausted"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/verify-email [post]
func VerifyEmail(c *gin.Context) {
	var req CodeRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}

	code, err := model.GetOrCreateEmailCode(db, p.Email, model.CodeVerification)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load code", Err: err})
		return
	}
	renew := func(code string) mail.Message { return mail.VerificationCode(p.Email, code) }
	if !checkCodeOrRespond(c, db, code, req.Code, renew) {
		return
	}

	if err := db.Model(&model.User{}).Where("id = ?", p.UserID).Update("email_confirmed", true).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to confirm email", Err: err})
		return
	}
	util.ForgetPrincipal(p.UserID)
	util.LogEmailVerified(p.UserID, p.Email, c.ClientIP())

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Email verified"})
}

// ResendVerification godoc
// @Summary      Resend verification code
// @Description  Generate a new email verification code and mail it
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Code sent"
// @Failure      400 {object} util.APIResponse "Email already confirmed"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/verify-email/resend [post]
func ResendVerification(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	if p.EmailConfirmed {
		util.CallUserError(c, util.APIErrorParams{Msg: "email is already confirmed", Err: fmt.Errorf("email already confirmed")})
		return
	}

	code, err := model.GetOrCreateEmailCode(db, p.Email, model.CodeVerification)
	if err == nil {
		err = code.Refresh(db)
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate code", Err: err})
		return
	}
	if err := sendMail(c, mail.VerificationCode(p.Email, code.Code)); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to send email", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Code sent"})
}

// RequestRecovery godoc
// @Summary      Request password recovery
// @Description  Mail a recovery code and return a short lived recovery token for the next steps
// @Tags         Recovery
// @Accept       json
// @Produce      json
// @Param        request body RecoveryRequest true "Account email"
// @Success      200 {object} util.APIResponse{data=RecoveryResponse} "Code sent"
// @Failure      400 {object} util.APIResponse "Unknown email"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/recovery [post]
func RequestRecovery(c *gin.Context) {
	var req RecoveryRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	email := normalizeEmail(req.Email)
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.CallUserError(c, util.APIErrorParams{Msg: "a user with this email does not exist", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	code, err := model.GetOrCreateEmailCode(db, user.Email, model.CodeRecovery)
	if err == nil {
		err = code.Refresh(db)
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate code", Err: err})
		return
	}
	if err := sendMail(c, mail.RecoveryCode(user.Email, code.Code, model.EmailCodeLifetime)); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to send email", Err: err})
		return
	}

	token, err := util.IssueRecoveryToken(util.TokenSubject{
		UserID: user.ID, Email: user.Email, ProfileType: user.ProfileType, ProfileID: user.ProfileID,
	}, model.RecoveryTokenLifetime)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	util.LogRecoveryRequested(user.ID, user.Email, c.ClientIP())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Code sent", Data: RecoveryResponse{Token: token}})
}

// ConfirmRecoveryCode godoc
// @Summary      Confirm recovery code
// @Description  Check the mailed recovery code. An expired code is replaced by a new one.
// @Tags         Recovery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CodeRequest true "Recovery code"
// @Success      200 {object} util.APIResponse "Code confirmed"
// @Failure      400 {object} util.APIResponse "Code is expired, incorrect or exhausted"
// @Failure      401 {object} util.APIResponse "Invalid recovery token"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/recovery/code [post]
func ConfirmRecoveryCode(c *gin.Context) {
	var req CodeRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}

	code, err := model.FindEmailCode(db, p.Email, model.CodeRecovery)
	if err != nil {
		respondStoreError(c, "code was not requested", "", err)
		return
	}
	renew := func(code string) mail.Message { return mail.RecoveryCode(p.Email, code, model.EmailCodeLifetime) }
	if !checkCodeOrRespond(c, db, code, req.Code, renew) {
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Code confirmed"})
}

// ResetPassword godoc
// @Summary      Set a new password
// @Description  Set a new password after the recovery code was confirmed. Every session of the user is revoked.
// @Tags         Recovery
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body NewPasswordRequest true "New password"
// @Success      200 {object} util.APIResponse "Password changed"
// @Failure      400 {object} util.APIResponse "Code not confirmed"
// @Failure      401 {object} util.APIResponse "Invalid recovery token"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/recovery/password [post]
func ResetPassword(c *gin.Context) {
	var req NewPasswordRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}

	code, err := model.FindEmailCode(db, p.Email, model.CodeRecovery)
	if err != nil || !code.Confirmed {
		util.CallUserError(c, util.APIErrorParams{Msg: "code is not confirmed", Err: fmt.Errorf("recovery code not confirmed")})
		return
	}

	hashed, salt, ok := hashPasswordOrRespond(c, req.Password)
	if !ok {
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", p.UserID).Updates(map[string]interface{}{
			"password":              hashed,
			"password_salt":         salt,
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}).Error; err != nil {
			return err
		}
		// the confirmation is single use
		if err := code.Refresh(tx); err != nil {
			return err
		}
		return tx.Model(&model.Session{}).Where("user_id = ?", p.UserID).Update("revoked", true).Error
	})
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to change password", Err: err})
		return
	}
	if err := util.InvalidateUserSessions(c.Request.Context(), p.UserID); err != nil {
		slog.WarnContext(c.Request.Context(), "session cache invalidation failed", "error", err)
	}

	util.LogPasswordChanged(p.UserID, p.Email, c.ClientIP())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Password changed"})
}
