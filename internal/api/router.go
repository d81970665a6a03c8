// Package api exposes the inventory and request services as a JSON API.
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/inventar/internal/policy"
	"github.com/erazemk/inventar/internal/service"
)

// Deps are the collaborators the API is built from.
type Deps struct {
	DB          *sql.DB
	JWTSecret   string
	TokenExpiry time.Duration

	Identity  *service.Identity
	Inventory *service.Inventory
	Requests  *service.Requests
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Identity: d.Identity, DB: d.DB, JWTSecret: d.JWTSecret, TokenExpiry: d.TokenExpiry}
	usersHandler := &UsersHandler{Identity: d.Identity}
	itemsHandler := &ItemsHandler{Inventory: d.Inventory}
	requestsHandler := &RequestsHandler{Requests: d.Requests}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	gated := func(action policy.Action, h http.HandlerFunc) http.Handler {
		return authMW(RequireAction(action)(h))
	}

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Session.
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))

	// Users (admin only).
	mux.Handle("GET /api/users", gated(policy.ListUsers, usersHandler.List))

	// Items. Ownership checks happen in the inventory service.
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", gated(policy.CreateItem, itemsHandler.Create))
	mux.Handle("GET /api/items/export", gated(policy.ExportInventory, itemsHandler.Export))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", authed(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", authed(itemsHandler.Delete))
	mux.Handle("PUT /api/items/{id}/image", authed(itemsHandler.UploadImage))
	mux.Handle("GET /api/items/{id}/image", authed(itemsHandler.GetImage))

	// Requests.
	mux.Handle("GET /api/requests", authed(requestsHandler.List))
	mux.Handle("POST /api/requests", authed(requestsHandler.Create))
	mux.Handle("GET /api/requests/archive", gated(policy.ViewArchive, requestsHandler.Archive))
	mux.Handle("PUT /api/requests/{id}", authed(requestsHandler.Resolve))

	return mux
}
