package endpoint

import (
	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/middleware"
)

// RegisterRoutes mounts every handler on r, which is normally the /api/v1 group.
func RegisterRoutes(r gin.IRouter) {
	limited := middleware.RateLimiter(middleware.RateLimitConfig{})
	auth := middleware.RequireAuth()
	recovery := middleware.RequireRecoveryToken()

	a := r.Group("/auth")
	{
		a.POST("/signup", limited, Signup)
		a.POST("/signin", limited, Signin)
		a.POST("/token/refresh", RefreshToken)
		a.GET("/token/validate", auth, ValidateToken)
		a.POST("/logout", auth, Logout)
		a.POST("/verify-email", limited, auth, VerifyEmail)
		a.POST("/verify-email/resend", auth, ResendVerification)
		a.POST("/recovery", limited, RequestRecovery)
		a.POST("/recovery/code", limited, recovery, ConfirmRecoveryCode)
		a.POST("/recovery/password", recovery, ResetPassword)
	}

	p := r.Group("/profiles")
	{
		p.GET("/customers/:id", auth, GetCustomerProfile)
		p.PATCH("/customers/:id", auth, UpdateCustomerProfile)
		p.GET("/suppliers", ListSuppliers)
		p.GET("/suppliers/:id", GetSupplierProfile)
		p.PATCH("/suppliers/:id", auth, UpdateSupplierProfile)
		p.DELETE("/suppliers/:id", auth, DeleteSupplierProfile)
	}

	s := r.Group("/suppliers")
	{
		s.GET("/:supplier_id", ListSupplierServices)
		s.DELETE("/:supplier_id", auth, DeleteSupplier)
		s.GET("/:supplier_id/bookings", auth, ListSupplierBookings)
		s.PATCH("/:supplier_id/bookings/:booking_id/done", auth, MarkBookingDone)
	}

	c := r.Group("/customers/:customer_id", auth)
	{
		c.GET("/pets", ListPets)
		c.POST("/pets", CreatePet)
		c.GET("/pets/:pet_id", GetPet)
		c.PATCH("/pets/:pet_id", UpdatePet)
		c.DELETE("/pets/:pet_id", DeletePet)

		c.GET("/booking", ListBookings)
		c.GET("/booking/history", BookingHistory)
		c.POST("/booking/:supplier_id", CreateBooking)
		c.DELETE("/booking/:price_id", CancelBooking)

		c.POST("/reviews/:price_id", CreateReview)

		c.GET("/favorites", ListFavorites)
		c.POST("/favorites", AddFavorite)
		c.DELETE("/favorites/:service_id", RemoveFavorite)
	}

	sv := r.Group("/services")
	{
		sv.GET("", ListServices)
		sv.POST("", auth, CreateService)
		sv.GET("/:id", GetService)
		sv.PATCH("/:id", auth, UpdateService)
		sv.DELETE("/:id", auth, DeleteService)
		sv.GET("/:id/slots", ServiceSlots)
		sv.GET("/:id/reviews", ListServiceReviews)
	}
}
