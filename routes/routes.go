package routes

import (
	"context"
	"net"
	"net/http"
	"time"

	"nafany/handlers"
	"nafany/middleware"
	"nafany/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewServer wraps the router in an http.Server whose request contexts derive from ctx.
// Cancelling ctx ends open chat streams so Shutdown does not wait on them.
func NewServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func auth(hb *handlers.HandlerBundle, roles ...string) gin.HandlerFunc {
	return middleware.SessionAuth(hb.Tokens, hb.Revoked, roles...)
}

// RegisterUserRoutes registers user endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	{
		api.POST("/register", hb.User.RegisterUserHandler)
		api.POST("/login", hb.User.AuthenticateUserHandler)
	}
}

// RegisterProviderRoutes registers provider registration, browsing and review endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.POST("/register", hb.Provider.RegisterProviderHandler)
		api.POST("/login", hb.Provider.AuthenticateProviderHandler)
		api.GET("", hb.Provider.BrowseProvidersHandler)
		api.GET("/:email", hb.Provider.GetProviderHandler)

		// Reviews are written by users; edit and delete also accept the admin role.
		api.POST("/:email/reviews", auth(hb, models.RoleUser), hb.Provider.AddReviewHandler)
		api.PUT("/:email/reviews/:reviewID", auth(hb, models.RoleUser, models.RoleAdmin), hb.Provider.EditOwnReviewHandler)
		api.DELETE("/:email/reviews/:reviewID", auth(hb, models.RoleUser, models.RoleAdmin), hb.Provider.DeleteOwnReviewHandler)
	}
}

// RegisterProviderSelfRoutes registers the signed-in provider's own endpoints.
func RegisterProviderSelfRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	me := r.Group("/api/me")
	me.Use(auth(hb, models.RoleProvider))
	{
		me.GET("/provider", hb.Provider.MyProfileHandler)
		me.POST("/works", hb.Provider.AddWorkHandler)
		me.PUT("/works/:workID", hb.Provider.EditWorkHandler)
		me.DELETE("/works/:workID", hb.Provider.DeleteWorkHandler)
		me.GET("/bookings", hb.Booking.ProviderBookingsHandler)
		me.PUT("/bookings/:bookingID/status", hb.Booking.UpdateBookingStatusHandler)
	}
}

// RegisterBookingRoutes sets up availability lookups and client bookings.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.GET("/times", hb.Booking.TimeLabelsHandler)
		bookingGroup.GET("/availability", hb.Booking.AvailabilityHandler)

		client := bookingGroup.Group("")
		client.Use(auth(hb, models.RoleUser))
		client.POST("", hb.Booking.BookHandler)
		client.GET("/mine", hb.Booking.MyBookingsHandler)
		client.PUT("/:providerEmail/:bookingID/cancel", hb.Booking.CancelBookingHandler)
	}
}

// RegisterSessionRoutes registers endpoints open to any signed-in role.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(auth(hb))
	{
		api.POST("/session/logout", hb.Session.LogoutHandler)
		api.GET("/session/me", hb.Session.MeHandler)

		api.PUT("/settings", hb.Settings.UpdateSettingsHandler)
		api.PUT("/settings/fcm", hb.Settings.UpdateFCMTokenHandler)

		api.POST("/feedback", hb.Feedback.SubmitFeedbackHandler)
		api.GET("/feedback/mine", hb.Feedback.MyFeedbackHandler)

		api.GET("/chats", hb.Chat.ListChatsHandler)
		api.POST("/chats/messages", hb.Chat.SendMessageHandler)
		api.GET("/chats/:chatID/messages", hb.Chat.MessagesHandler)
		api.GET("/chats/:chatID/stream", hb.Chat.StreamHandler)
		api.PUT("/chats/:chatID/read", hb.Chat.MarkReadHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/admin/login", hb.Admin.AdminLoginHandler)

	adminGroup := r.Group("/api/admin")
	adminGroup.Use(auth(hb, models.RoleAdmin))
	{
		adminGroup.GET("/dashboard", hb.Admin.DashboardHandler)

		adminGroup.GET("/users", hb.Admin.GetAllUsersHandler)
		adminGroup.PUT("/users/:email", hb.Admin.UpdateUserHandler)
		adminGroup.DELETE("/users/:email", hb.Admin.DeleteUserHandler)

		adminGroup.GET("/providers", hb.Admin.GetAllProvidersHandler)
		adminGroup.PUT("/providers/:email", hb.Admin.UpdateProviderHandler)
		adminGroup.DELETE("/providers/:email", hb.Admin.DeleteProviderHandler)

		adminGroup.GET("/reviews", hb.Admin.ListReviewsHandler)
		adminGroup.PUT("/reviews/:providerEmail/:reviewID", hb.Admin.EditReviewHandler)
		adminGroup.DELETE("/reviews/:providerEmail/:reviewID", hb.Admin.DeleteReviewHandler)

		adminGroup.PUT("/bookings/:providerEmail/:bookingID/status", hb.Booking.AdminUpdateBookingStatusHandler)

		adminGroup.GET("/feedback", hb.Feedback.ListFeedbackHandler)
		adminGroup.PUT("/feedback/:id/response", hb.Feedback.RespondFeedbackHandler)
		adminGroup.PUT("/feedback/:id/status", hb.Feedback.SetFeedbackStatusHandler)
		adminGroup.DELETE("/feedback/:id", hb.Feedback.DeleteFeedbackHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))

	RegisterHealthRoute(r)
	RegisterUserRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterProviderSelfRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
