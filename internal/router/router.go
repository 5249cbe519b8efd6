package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/iliyamo/event-session-booking/internal/handler" // handlers implementing the endpoints
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login and the Google OAuth flow
// under /api. The rate limiter guards exactly these routes: they are the
// unauthenticated, credential-bearing surface.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, o *handler.OAuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/api", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.GET("/login/google", o.GoogleLogin)
	g.GET("/login/google/callback", o.GoogleCallback)
}

// RegisterAPI registers the catalogue and booking endpoints under /api.
// The catalogue is public; booking, the booking list, the profile and
// cancellation require a verified identity.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, ev *handler.EventHandler, b *handler.BookingHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.GET("/events", ev.ListEvents)
	g.GET("/events/:id", ev.GetEvent)
	g.GET("/sessions", ev.ListSessions)
	g.GET("/sessions/:id", ev.GetSession)

	p := e.Group("/api", auth)
	p.GET("/me", a.Me)
	p.POST("/events/book", b.Book)
	p.GET("/bookings", ev.ListBookings)
	p.PUT("/sessions/:id/cancel", ev.CancelSession)
}
