package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/mail"
	"github.com/veterinary-salons/backend/middleware"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

type SignupRequest struct {
	ProfileType    string `json:"profile_type" binding:"required,oneof=customer supplier" example:"customer"`
	Email          string `json:"email" binding:"required,email,max=254" example:"owner@example.com"`
	Password       string `json:"password" binding:"required,min=8" example:"password123"`
	FirstName      string `json:"first_name" binding:"required" example:"Anna"`
	LastName       string `json:"last_name" binding:"required" example:"Petrova"`
	PhoneNumber    string `json:"phone_number" binding:"required" example:"89991234567"`
	Image          string `json:"image,omitempty" example:"data:image/png;base64,iVBORw0..."`
	Address        string `json:"address,omitempty" example:"Moscow, Tverskaya 1"`
	ContactEmail   string `json:"contact_email,omitempty" example:"contact@example.com"`
	SpecialistType string `json:"specialist_type,omitempty" example:"grooming"`
	PetType        string `json:"pet_type,omitempty" example:"dog"`
	About          string `json:"about,omitempty" example:"Ten years of grooming"`
}

// ProfileSummary is the short profile returned by sign up and sign in.
type ProfileSummary struct {
	ProfileType string `json:"profile_type" example:"customer"`
	ID          uint   `json:"id" example:"1"`
	Email       string `json:"email" example:"owner@example.com"`
	FirstName   string `json:"first_name" example:"Anna"`
	LastName    string `json:"last_name" example:"Petrova"`
	PhoneNumber string `json:"phone_number" example:"89991234567"`
	Image       string `json:"image" example:"/media/avatars/customers/3f1c.png"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required,email" example:"owner@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type SigninResponse struct {
	TokenData   util.TokenPair `json:"token_data"`
	ProfileData ProfileSummary `json:"profile_data"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r SignupRequest) customerProfile() model.CustomerProfile {
	return model.CustomerProfile{
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		PhoneNumber:  strings.TrimSpace(r.PhoneNumber),
		Address:      util.NormalizeName(r.Address),
		ContactEmail: strings.TrimSpace(r.ContactEmail),
	}
}

func (r SignupRequest) supplierProfile() model.SupplierProfile {
	return model.SupplierProfile{
		FirstName:      strings.TrimSpace(r.FirstName),
		LastName:       strings.TrimSpace(r.LastName),
		PhoneNumber:    strings.TrimSpace(r.PhoneNumber),
		Address:        util.NormalizeName(r.Address),
		ContactEmail:   strings.TrimSpace(r.ContactEmail),
		SpecialistType: r.SpecialistType,
		PetType:        r.PetType,
		About:          strings.TrimSpace(r.About),
	}
}

// signupProfile holds whichever profile the request describes.
type signupProfile struct {
	customer *model.CustomerProfile
	supplier *model.SupplierProfile
}

func newSignupProfile(req SignupRequest) (signupProfile, error) {
	if req.ProfileType == model.ProfileSupplier {
		p := req.supplierProfile()
		return signupProfile{supplier: &p}, p.Validate()
	}
	p := req.customerProfile()
	return signupProfile{customer: &p}, p.Validate()
}

func (s signupProfile) imageFolder() string {
	if s.supplier != nil {
		return util.MediaSupplierAvatars
	}
	return util.MediaCustomerAvatars
}

func (s signupProfile) create(tx *gorm.DB, image string) (uint, error) {
	if s.supplier != nil {
		s.supplier.Image = image
		err := tx.Create(s.supplier).Error
		return s.supplier.ID, err
	}
	s.customer.Image = image
	err := tx.Create(s.customer).Error
	return s.customer.ID, err
}

func (s signupProfile) summary(c *gin.Context, email string) ProfileSummary {
	if s.supplier != nil {
		return ProfileSummary{
			ProfileType: model.ProfileSupplier, ID: s.supplier.ID, Email: email,
			FirstName: s.supplier.FirstName, LastName: s.supplier.LastName,
			PhoneNumber: s.supplier.PhoneNumber, Image: imageURL(c, s.supplier.Image),
		}
	}
	return ProfileSummary{
		ProfileType: model.ProfileCustomer, ID: s.customer.ID, Email: email,
		FirstName: s.customer.FirstName, LastName: s.customer.LastName,
		PhoneNumber: s.customer.PhoneNumber, Image: imageURL(c, s.customer.Image),
	}
}

// loadProfileSummary reads the profile a user points at.
func loadProfileSummary(c *gin.Context, db *gorm.DB, user *model.User) (ProfileSummary, error) {
	switch user.ProfileType {
	case model.ProfileSupplier:
		var p model.SupplierProfile
		if err := db.First(&p, user.ProfileID).Error; err != nil {
			return ProfileSummary{}, err
		}
		return signupProfile{supplier: &p}.summary(c, user.Email), nil
	case model.ProfileCustomer:
		var p model.CustomerProfile
		if err := db.First(&p, user.ProfileID).Error; err != nil {
			return ProfileSummary{}, err
		}
		return signupProfile{customer: &p}.summary(c, user.Email), nil
	default:
		return ProfileSummary{}, fmt.Errorf("unknown profile type %q", user.ProfileType)
	}
}

func ensureEmailAvailable(c *gin.Context, db *gorm.DB, email string) bool {
	var existingUser model.User
	err := db.First(&existingUser, "email = ?", email).Error
	if err != gorm.ErrRecordNotFound {
		if err == nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: fmt.Errorf("email already exists")})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	return true
}

func hashPasswordOrRespond(c *gin.Context, plain string) (string, string, bool) {
	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return "", "", false
	}
	hashedPassword, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return "", "", false
	}
	return hashedPassword, salt, true
}

// sendMail delivers msg with the injected mailer. Failures are logged and
// returned so callers can decide whether they matter.
func sendMail(c *gin.Context, msg mail.Message) error {
	err := middleware.GetMailer(c).Send(c.Request.Context(), msg)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "mail delivery failed", "subject", msg.Subject, "to", msg.To, "error", err)
	}
	return err
}

// Signup godoc
// @Summary      Sign up
// @Description  Create a customer or supplier account and mail an email verification code
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Account and profile data"
// @Success      201 {object} util.APIResponse{data=ProfileSummary} "Signup successful"
// @Failure      400 {object} util.APIResponse "Invalid request or email already exists"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/signup [post]
func Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	req.Email = normalizeEmail(req.Email)

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	profile, err := newSignupProfile(req)
	if err != nil {
		respondStoreError(c, "Invalid profile", "Profile already exists", err)
		return
	}

	if !ensureEmailAvailable(c, db, req.Email) {
		return
	}

	hashedPassword, salt, ok := hashPasswordOrRespond(c, req.Password)
	if !ok {
		return
	}

	image, ok := saveImageOrRespond(c, profile.imageFolder(), req.Image)
	if !ok {
		return
	}

	user := model.User{
		Email:        req.Email,
		Password:     hashedPassword,
		PasswordSalt: salt,
		ProfileType:  req.ProfileType,
	}
	var code *model.EmailCode
	err = db.Transaction(func(tx *gorm.DB) error {
		profileID, err := profile.create(tx, image)
		if err != nil {
			return err
		}
		user.ProfileID = profileID
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if code, err = model.GetOrCreateEmailCode(tx, user.Email, model.CodeVerification); err != nil {
			return err
		}
		return code.Refresh(tx)
	})
	if err != nil {
		discardImage(c, image)
		respondStoreError(c, "Failed to create new user", "Email already exists", err)
		return
	}

	util.LogSignup(user.ID, user.Email, user.ProfileType, c.ClientIP(), c.Request.UserAgent())
	_ = sendMail(c, mail.VerificationCode(user.Email, code.Code))

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Signup successful",
		Data: profile.summary(c, user.Email),
	})
}

// helper types and functions to keep the Signin flow flat
type clientInfo struct {
	IP    string
	Agent string
}

type loginContext struct {
	C     *gin.Context
	DB    *gorm.DB
	Email string
	CI    clientInfo
}

// Signin godoc
// @Summary      Sign in
// @Description  Authenticate with email and password. Five consecutive failures lock the account for 15 minutes.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body SigninRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=SigninResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid credentials or account locked"
// @Failure      429 {object} util.APIResponse "Too many requests"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/signin [post]
func Signin(c *gin.Context) {
	var req SigninRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	ctx := loginContext{C: c, DB: db, Email: normalizeEmail(req.Email), CI: ci}

	user, ok := loadUserForLogin(ctx)
	if !ok {
		return
	}
	if !ensureAccountNotLocked(ctx, &user) {
		return
	}
	if !verifyPasswordOrRespond(ctx, &user, req.Password) {
		return
	}
	finalizeLogin(ctx, &user)
}

func loadUserForLogin(ctx loginContext) (model.User, bool) {
	var user model.User
	err := ctx.DB.Where("email = ?", ctx.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "user not found")
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("user not found")})
		return model.User{}, false
	}
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "database error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Database error", Err: err})
		return model.User{}, false
	}
	return user, true
}

func ensureAccountNotLocked(ctx loginContext, user *model.User) bool {
	if user.IsLocked(time.Now()) {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "account locked")
		util.CallUserError(ctx.C, util.APIErrorParams{
			Msg: fmt.Sprintf("Account is locked until %s due to multiple failed login attempts", user.LockedUntil.Format(time.RFC3339)),
			Err: fmt.Errorf("account locked"),
		})
		return false
	}
	return true
}

func verifyPasswordOrRespond(ctx loginContext, user *model.User, plain string) bool {
	match, err := util.VerifyPassword(plain, user.Password, user.PasswordSalt)
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "password verification error")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return false
	}
	if !match {
		incrementFailedAttempts(ctx.DB, user, ctx.CI)
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "invalid password")
		util.CallUserError(ctx.C, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid password")})
		return false
	}
	return true
}

// incrementFailedAttempts counts a failure. The fifth one in a row locks the
// account and starts the count over.
func incrementFailedAttempts(db *gorm.DB, user *model.User, ci clientInfo) {
	user.FailedLoginAttempts++
	updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts}
	if user.FailedLoginAttempts >= model.MaxFailedLogins {
		lockUntil := time.Now().Add(model.AccountLockDuration)
		user.LockedUntil = &lockUntil
		user.FailedLoginAttempts = 0
		updates["failed_login_attempts"] = 0
		updates["locked_until"] = lockUntil
		util.LogAccountLocked(user.ID, user.Email, ci.IP, "too many failed login attempts")
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		util.LogLoginFailure(user.Email, ci.IP, ci.Agent, "failed to update failed attempts")
	}
}

func resetFailedAttempts(db *gorm.DB, user *model.User) error {
	if user.FailedLoginAttempts == 0 && user.LockedUntil == nil {
		return nil
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	return db.Model(user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
	}).Error
}

// startSession records a session and issues its token pair.
func startSession(ctx loginContext, user *model.User) (util.TokenPair, bool) {
	session := model.Session{
		ID:        util.NewSessionID(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(model.RefreshTokenLifetime),
		ClientIP:  ctx.CI.IP,
		Browser:   ctx.CI.Agent,
	}
	if err := ctx.DB.Create(&session).Error; err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "session creation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return util.TokenPair{}, false
	}

	sub := util.TokenSubject{UserID: user.ID, Email: user.Email, ProfileType: user.ProfileType, ProfileID: user.ProfileID}
	pair, err := util.IssueTokenPair(sub, session.ID, model.AccessTokenLifetime, model.RefreshTokenLifetime)
	if err != nil {
		util.LogLoginFailure(ctx.Email, ctx.CI.IP, ctx.CI.Agent, "token generation failed")
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return util.TokenPair{}, false
	}

	// best effort, RequireAuth falls back to the sessions table
	if err := util.CacheSession(ctx.C.Request.Context(), user.ID, session.ID, model.RefreshTokenLifetime); err != nil {
		slog.WarnContext(ctx.C.Request.Context(), "session cache write failed", "error", err)
	}
	return pair, true
}

func finalizeLogin(ctx loginContext, user *model.User) bool {
	if err := resetFailedAttempts(ctx.DB, user); err != nil {
		util.LogSecurityEvent(util.SecurityEvent{EventType: util.EventSuspiciousActivity, UserID: fmt.Sprintf("%d", user.ID), Email: user.Email, IP: ctx.CI.IP, Message: fmt.Sprintf("Failed to reset failed attempts: %v", err)})
	}

	profile, err := loadProfileSummary(ctx.C, ctx.DB, user)
	if err != nil {
		util.CallServerError(ctx.C, util.APIErrorParams{Msg: "Failed to load profile", Err: err})
		return false
	}

	pair, ok := startSession(ctx, user)
	if !ok {
		return false
	}

	util.LogLoginSuccess(user.ID, user.Email, ctx.CI.IP, ctx.CI.Agent)
	util.CallSuccessOK(ctx.C, util.APISuccessParams{
		Msg:  "Login successful",
		Data: SigninResponse{TokenData: pair, ProfileData: profile},
	})
	return true
}

// Logout godoc
// @Summary      Log out
// @Description  Revoke the session of the presented access token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /auth/logout [post]
func Logout(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	sid := middleware.GetSessionID(c)

	if err := db.Model(&model.Session{}).Where("id = ? AND user_id = ?", sid, p.UserID).
		Update("revoked", true).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to revoke session", Err: err})
		return
	}
	if err := util.RemoveSession(c.Request.Context(), p.UserID, sid); err != nil {
		slog.WarnContext(c.Request.Context(), "session cache delete failed", "error", err)
	}

	util.LogLogout(p.UserID, p.Email, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}
