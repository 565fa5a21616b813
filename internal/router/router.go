package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hotel-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/hotel-booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the admin login endpoint.  The login exchanges
// the admin password for a short-lived access token; everything under
// /v1/admin verifies that token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/v1/auth/login", a.Login)
}

// RegisterGuest registers the guest-facing endpoints: availability
// search, the staged booking flow and booking management.  The chat
// gateway in front of this service authenticates guests, so these routes
// carry no JWT middleware.
func RegisterGuest(e *echo.Echo, b *handler.BookingHandler, r *handler.RoomHandler) {
	// Stateless availability search over a date range
	e.GET("/v1/availability", b.SearchAvailability)
	// Public room detail view
	e.GET("/v1/rooms/:id", r.GetRoom)

	// Staged booking flow: dates -> room -> confirm.  Partial state lives
	// in the session store and expires on its own when abandoned.
	e.POST("/v1/flow/:chat_id/dates", b.ChooseDates)
	e.POST("/v1/flow/:chat_id/select", b.SelectRoom)
	e.POST("/v1/flow/:chat_id/confirm", b.ConfirmBooking)
	e.DELETE("/v1/flow/:chat_id", b.AbandonFlow)

	// Booking management for an existing guest
	e.GET("/v1/users/:chat_id/bookings", b.ListBookings)
	e.GET("/v1/users/:chat_id/bookings/unpaid", b.ListUnpaidBookings)
	e.DELETE("/v1/users/:chat_id/bookings/:id", b.CancelBooking)
}

// RegisterAdmin registers the room management and payment confirmation
// endpoints under /v1/admin.  All of them require a valid access token
// with the ADMIN role.
func RegisterAdmin(e *echo.Echo, r *handler.RoomHandler, b *handler.BookingHandler, jwtSecret string) {
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("ADMIN"))

	admin.POST("/rooms", r.CreateRoom)
	admin.GET("/rooms", r.ListRooms)
	admin.PUT("/rooms/:id/price", r.UpdatePrice)
	admin.PUT("/rooms/:id/description", r.UpdateDescription)
	admin.PUT("/rooms/:id/status", r.SetStatus)
	admin.DELETE("/rooms/:id/status", r.ClearStatus)
	admin.DELETE("/rooms/:id", r.DeleteRoom)

	admin.POST("/bookings/:id/paid", b.MarkPaid)
}
