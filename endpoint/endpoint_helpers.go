package endpoint

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/middleware"
	"github.com/veterinary-salons/backend/model"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

var (
	errForbidden    = errors.New("action forbidden")
	errNotCustomer  = errors.New("only customers can do this")
	errNotSupplier  = errors.New("only suppliers can do this")
	errNoPrincipal  = errors.New("principal not found in context")
	errMediaMissing = errors.New("media store is not configured")
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("%s must be a positive integer", name),
			Err: fmt.Errorf("invalid %s %q", name, c.Param(name)),
		})
		return 0, false
	}
	return uint(id), true
}

func principalOrRespond(c *gin.Context) (util.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "User not authenticated", Err: errNoPrincipal})
		return util.Principal{}, false
	}
	return p, true
}

// ownCustomerOrRespond lets the request through only when the caller is the
// customer named by the path parameter.
func ownCustomerOrRespond(c *gin.Context, param string) (util.Principal, uint, bool) {
	p, ok := principalOrRespond(c)
	if !ok {
		return p, 0, false
	}
	id, ok := parseIDParam(c, param)
	if !ok {
		return p, 0, false
	}
	if !p.IsCustomer(id) {
		err := errForbidden
		if p.ProfileType != model.ProfileCustomer {
			err = errNotCustomer
		}
		util.CallForbidden(c, util.APIErrorParams{Msg: "action forbidden", Err: err})
		return p, 0, false
	}
	return p, id, true
}

// ownSupplierOrRespond is the supplier counterpart of ownCustomerOrRespond.
func ownSupplierOrRespond(c *gin.Context, param string) (util.Principal, uint, bool) {
	p, ok := principalOrRespond(c)
	if !ok {
		return p, 0, false
	}
	id, ok := parseIDParam(c, param)
	if !ok {
		return p, 0, false
	}
	if !p.IsSupplier(id) {
		util.CallForbidden(c, util.APIErrorParams{Msg: "action forbidden", Err: errForbidden})
		return p, 0, false
	}
	return p, id, true
}

func supplierOrRespond(c *gin.Context) (util.Principal, bool) {
	p, ok := principalOrRespond(c)
	if !ok {
		return p, false
	}
	if p.ProfileType != model.ProfileSupplier {
		util.CallForbidden(c, util.APIErrorParams{Msg: "action forbidden", Err: errNotSupplier})
		return p, false
	}
	return p, true
}

// respondStoreError maps validation, uniqueness and lookup failures onto the
// matching status. dupMsg is used for unique index violations.
func respondStoreError(c *gin.Context, msg, dupMsg string, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		util.CallUserError(c, util.APIErrorParams{Msg: verr.Error(), Err: err})
	case util.IsUniqueViolation(err):
		util.CallUserError(c, util.APIErrorParams{Msg: dupMsg, Err: err})
	case errors.Is(err, gorm.ErrRecordNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: msg, Err: err})
	default:
		util.CallServerError(c, util.APIErrorParams{Msg: msg, Err: err})
	}
}

// requestError is a client mistake found deep inside a transaction. Its
// message goes back to the caller as is.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: 400, msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) error {
	return &requestError{status: 403, msg: fmt.Sprintf(format, args...)}
}

// respondTxError answers a failed transaction.
func respondTxError(c *gin.Context, msg, dupMsg string, err error) {
	var rerr *requestError
	if errors.As(err, &rerr) {
		params := util.APIErrorParams{Msg: rerr.msg, Err: err}
		if rerr.status == 403 {
			util.CallForbidden(c, params)
		} else {
			util.CallUserError(c, params)
		}
		return
	}
	respondStoreError(c, msg, dupMsg, err)
}

// saveImageOrRespond stores an optional base64 image. An empty input stores
// nothing and returns "".
func saveImageOrRespond(c *gin.Context, folder, encoded string) (string, bool) {
	if encoded == "" {
		return "", true
	}
	store := middleware.GetMediaStore(c)
	if store == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to save image", Err: errMediaMissing})
		return "", false
	}
	rel, err := store.SaveImage(folder, encoded)
	if err != nil {
		if errors.Is(err, util.ErrImageEncoding) || errors.Is(err, util.ErrImageTooLarge) || errors.Is(err, util.ErrImageType) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid image", Err: err})
		} else {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to save image", Err: err})
		}
		return "", false
	}
	return rel, true
}

// discardImage removes a stored image, ignoring failures.
func discardImage(c *gin.Context, rel string) {
	if store := middleware.GetMediaStore(c); store != nil {
		_ = store.Remove(rel)
	}
}

// imageURL turns a stored relative path into its public URL.
func imageURL(c *gin.Context, rel string) string {
	if store := middleware.GetMediaStore(c); store != nil {
		return store.PublicURL(rel)
	}
	return rel
}

func petImages(c *gin.Context, pets []model.Pet) {
	for i := range pets {
		pets[i].Image = imageURL(c, pets[i].Image)
	}
}

func serviceImages(c *gin.Context, services []model.Service) {
	for i := range services {
		services[i].Image = imageURL(c, services[i].Image)
		if services[i].Supplier != nil {
			services[i].Supplier.Image = imageURL(c, services[i].Supplier.Image)
		}
	}
}
