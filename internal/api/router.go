package api

import (
	"net/http"

	"github.com/mohdshuhaib/community-voice-53/internal/engine"
	"github.com/mohdshuhaib/community-voice-53/internal/model"
)

// NewRouter creates the API router with all endpoints registered. Every
// endpoint requires a signed token; submissions also pass through the
// limiter when one is given.
func NewRouter(e *engine.Engine, key []byte, limiter *CallerRateLimiter) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{Engine: e}
	usersHandler := &UsersHandler{Engine: e}
	analyticsHandler := &AnalyticsHandler{Engine: e}

	authMW := AuthMiddleware(key)
	requireAdmin := RequireRole(model.RoleAdmin)

	submit := http.Handler(http.HandlerFunc(itemsHandler.Create))
	if limiter != nil {
		submit = limiter.Middleware(submit)
	}

	// Item board.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(submit))
	mux.Handle("GET /api/items/similar", authMW(http.HandlerFunc(itemsHandler.Similar)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PATCH /api/items/{id}", authMW(requireAdmin(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("POST /api/items/{id}/upvote", authMW(http.HandlerFunc(itemsHandler.Upvote)))

	// Per-user views: self or admin.
	mux.Handle("GET /api/users/{id}/items", authMW(http.HandlerFunc(usersHandler.Items)))
	mux.Handle("GET /api/users/{id}/upvotes", authMW(http.HandlerFunc(usersHandler.Upvotes)))
	mux.Handle("GET /api/users/{id}/activity", authMW(http.HandlerFunc(usersHandler.Activity)))

	// Dashboard and export.
	mux.Handle("GET /api/analytics", authMW(http.HandlerFunc(analyticsHandler.Get)))
	mux.Handle("GET /api/export", authMW(requireAdmin(http.HandlerFunc(analyticsHandler.Export))))

	return mux
}
