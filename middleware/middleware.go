package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/broker"
	"github.com/veterinary-salons/backend/mail"
	"github.com/veterinary-salons/backend/util"
	"gorm.io/gorm"
)

// Context keys set by the middlewares in this package.
const (
	DBKey        = "db"
	MailerKey    = "mailer"
	PublisherKey = "publisher"
	MediaKey     = "media"
	UserIDKey    = "user_id"
	SessionIDKey = "session_id"
	PrincipalKey = "principal"
)

func setCorsHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PATCH")
	h.Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
	h.Set("Access-Control-Allow-Credentials", "true")
}

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCorsHeaders(c)
		// preflight stops here
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// DatabaseMiddleware makes db available to handlers through GetDB.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the request's DB bound to the request context, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(DBKey)
	if !ok {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok || db == nil {
		return nil
	}
	if c.Request == nil {
		return db
	}
	return db.WithContext(c.Request.Context())
}

// MailerMiddleware injects the mailer.
func MailerMiddleware(m mail.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(MailerKey, m)
		c.Next()
	}
}

// GetMailer returns the injected mailer, or a mailer that drops everything.
func GetMailer(c *gin.Context) mail.Mailer {
	if v, ok := c.Get(MailerKey); ok {
		if m, ok := v.(mail.Mailer); ok && m != nil {
			return m
		}
	}
	return mail.NopMailer{}
}

// PublisherMiddleware injects the booking event publisher.
func PublisherMiddleware(p broker.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(PublisherKey, p)
		c.Next()
	}
}

// GetPublisher returns the injected publisher, or one that discards events.
func GetPublisher(c *gin.Context) broker.Publisher {
	if v, ok := c.Get(PublisherKey); ok {
		if p, ok := v.(broker.Publisher); ok && p != nil {
			return p
		}
	}
	return broker.NopPublisher{}
}

// MediaMiddleware injects the image store.
func MediaMiddleware(store *util.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(MediaKey, store)
		c.Next()
	}
}

// GetMediaStore returns the injected image store, or nil.
func GetMediaStore(c *gin.Context) *util.MediaStore {
	if v, ok := c.Get(MediaKey); ok {
		if s, ok := v.(*util.MediaStore); ok {
			return s
		}
	}
	return nil
}
