// Package router wires HTTP routes to their handlers. Registration is
// split by concern so main can see at a glance which surface is public,
// which needs a token and which is admin-only.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookmarket/internal/handler"
	"github.com/iliyamo/bookmarket/internal/middleware"
)

// RegisterRoutes registers routes that do not belong to any feature group.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers registration, login and the authenticated session
// endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterCatalog registers the public browse surface: approved content,
// products and blog posts. cache may be nil when Redis is not configured,
// in which case the GET endpoints are served uncached.
func RegisterCatalog(e *echo.Echo, ct *handler.ContentHandler, p *handler.ProductHandler, b *handler.BlogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}

	g.GET("/content", ct.List)
	g.GET("/content/:id", ct.Get)
	g.GET("/products", p.List)
	g.GET("/products/:id", p.Get)
	g.GET("/blogs", b.List)
	g.GET("/blogs/:id", b.Get)

	// Writes bypass the cache group. Content submission and download
	// tracking are open; a submission only becomes visible after approval.
	e.POST("/v1/content", ct.Submit)
	e.POST("/v1/content/:id/download", ct.TrackDownload)
}

// RegisterCheckout registers the payment endpoints. The webhook must stay
// outside all auth middleware: the gateway authenticates by signature, not
// by token.
func RegisterCheckout(e *echo.Echo, ch *handler.CheckoutHandler, wh *handler.WebhookHandler) {
	e.POST("/v1/checkout-session", ch.CreateSession)
	e.POST("/v1/verify-payment", ch.VerifyPayment)
	e.POST("/v1/webhook/payment", wh.Handle)
}

// RegisterSubmissions registers the buy-back workflow. Creating a
// submission is public; viewing and updating require a token, with the
// handler scoping non-admins to their own submissions.
func RegisterSubmissions(e *echo.Echo, s *handler.SubmissionHandler, jwtSecret string) {
	e.POST("/v1/book-submissions", s.Create)

	g := e.Group("/v1/book-submissions")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("", s.List)
	g.GET("/:id", s.Get)
	g.PUT("/:id", s.Update)
}

// RegisterOrders registers order history endpoints: the full ledger for
// admins, per-customer history for everyone else.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, jwtSecret string) {
	e.GET("/v1/user/orders", o.ListMine, middleware.JWTAuth(jwtSecret))
	e.GET("/v1/orders", o.ListAll, middleware.JWTAuth(jwtSecret), middleware.RequireAdmin())
}

// RegisterAdmin registers the moderation and catalog-management surface.
// Every route here requires a token whose is_admin claim is true.
func RegisterAdmin(e *echo.Echo, ct *handler.ContentHandler, p *handler.ProductHandler, b *handler.BlogHandler, jwtSecret string) {
	adminGate := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireAdmin()}

	g := e.Group("/v1/admin", adminGate...)
	g.GET("/pending", ct.Pending)
	g.POST("/approve/:id", ct.Approve)
	g.POST("/reject/:id", ct.Reject)

	e.POST("/v1/products", p.Create, adminGate...)
	e.PUT("/v1/products/:id", p.Update, adminGate...)
	e.DELETE("/v1/products/:id", p.Delete, adminGate...)

	e.POST("/v1/blogs", b.Create, adminGate...)
	e.PUT("/v1/blogs/:id", b.Update, adminGate...)
	e.DELETE("/v1/blogs/:id", b.Delete, adminGate...)
}
