package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/policy"
	"github.com/erazemk/inventar/internal/service"
	"github.com/erazemk/inventar/internal/store"
)

// AuthHandler handles registration and session endpoints.
type AuthHandler struct {
	Identity    *service.Identity
	DB          *sql.DB
	JWTSecret   string
	TokenExpiry time.Duration
}

type credentialsRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
	// Position is the older name of Role.
	Position model.Role `json:"position"`
}

func (c credentialsRequest) role() model.Role {
	if c.Role != "" {
		return c.Role
	}
	return c.Position
}

type loginResponse struct {
	Token string       `json:"token"`
	User  policy.Actor `json:"user"`
}

type meResponse struct {
	User         policy.Actor           `json:"user"`
	Capabilities map[policy.Action]bool `json:"capabilities"`
}

func actorOf(u *model.User) policy.Actor {
	return policy.Actor{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Registration is for visitors. A caller presenting a token is signed in
	// and gets rejected by the service.
	var actor policy.Actor
	if r.Header.Get("Authorization") != "" {
		claims, aerr := bearerClaims(r, h.JWTSecret, h.DB)
		if aerr != nil {
			jsonError(w, aerr.status, aerr.message)
			return
		}
		actor = claims.Actor()
	}

	user, err := h.Identity.Register(r.Context(), actor, req.Username, req.Password, req.role())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, actorOf(user))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Identity.Authenticate(r.Context(), req.Username, req.Password, req.role())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			slog.Warn("login failed", "username", req.Username, "role", req.role(), "remote", r.RemoteAddr)
		}
		serviceError(w, r, err)
		return
	}

	ttl := h.TokenExpiry
	if ttl <= 0 {
		ttl = auth.DefaultTokenExpiry
	}
	token, err := auth.GenerateToken(h.JWTSecret, ttl, user.ID, user.Username, user.Role)
	if err != nil {
		slog.Error("generating token", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user logged in", "user", user.Username, "role", user.Role)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, User: actorOf(user)})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expiresAt := time.Now().Add(auth.DefaultTokenExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expiresAt); err != nil {
		slog.Error("revoking token", "error", err, "request_id", RequestID(r.Context()))
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	slog.Info("user logged out", "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := Actor(r.Context())
	jsonResponse(w, http.StatusOK, meResponse{User: actor, Capabilities: policy.Capabilities(actor)})
}
