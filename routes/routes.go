package routes

import (
	"time"

	"studiobook/handlers"
	"studiobook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options carries the cross-cutting settings routes need.
type Options struct {
	AllowedOrigins    []string
	MaxRequestsPerMin int
	Auth              middleware.OperatorAuthenticator
	Logger            *zap.Logger
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Health)
}

// RegisterPublicRoutes registers the catalog, calculator and media endpoints.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.GET("/services", hb.Catalog.ListServices)
		api.GET("/media", hb.Media.ListMedia)
	}

	quotes := r.Group("/api/quotes")
	{
		quotes.POST("", hb.Quotes.StartQuote)
		quotes.POST("/calculate", hb.Quotes.Calculate)
		quotes.GET("/:id", hb.Quotes.GetQuote)
		quotes.POST("/:id/toggle", hb.Quotes.ToggleService)
		quotes.PUT("/:id/multiplier", hb.Quotes.SetMultiplier)
		quotes.DELETE("/:id", hb.Quotes.DiscardQuote)
	}
}

// RegisterBookingRoutes registers customer intake; these are rate limited.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin, opts.Logger))
		bookingGroup.POST("", hb.Booking.CreateBooking)
		bookingGroup.POST("/:id/checkout", hb.Booking.StartCheckout)
	}
}

// RegisterPaymentRoutes registers provider callbacks.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/payments/stripe/webhook", hb.Webhook.StripeWebhook)
}

// RegisterAdminRoutes sets up endpoints for operator operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.POST("/login", middleware.RateLimitMiddleware(opts.MaxRequestsPerMin, opts.Logger), hb.Admin.Login)

		protected := adminGroup.Group("")
		protected.Use(middleware.JWTAuthAdminMiddleware(opts.Auth))
		protected.GET("/bookings", hb.Admin.ListBookings)
		protected.GET("/bookings/:id", hb.Admin.GetBooking)
		protected.GET("/bookings/:id/notifications", hb.Admin.Notifications)
		protected.POST("/bookings/:id/transition", hb.Admin.Transition)
		protected.POST("/media", hb.Admin.UploadMedia)
		protected.DELETE("/media/:id", hb.Admin.DeleteMedia)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	origins := opts.AllowedOrigins
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	RegisterHealthRoute(r, hb)
	RegisterPublicRoutes(r, hb)
	RegisterBookingRoutes(r, hb, opts)
	RegisterPaymentRoutes(r, hb)
	RegisterAdminRoutes(r, hb, opts)
}
