package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/erazemk/inventar/internal/auth"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/policy"
	"github.com/erazemk/inventar/internal/store"
)

// Identity registers and authenticates users.
type Identity struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Register creates a new identity. Only unauthenticated callers may register;
// the (username, role) pair must be new.
func (s *Identity) Register(ctx context.Context, actor policy.Actor, username, password string, role model.Role) (*model.User, error) {
	if !policy.Allowed(actor, policy.Register, policy.Resource{}) {
		return nil, ErrForbidden
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username is required")
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, invalid("%v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, invalid("%v", err)
	}

	user, err := store.CreateUser(ctx, s.DB, username, hash, role)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, storageError("registering user", err)
	}

	loggerOrDefault(s.Logger).Info("user registered", "user", user.Username, "role", user.Role)
	return user, nil
}

// Authenticate checks the password of the identity registered as username
// under role.
func (s *Identity) Authenticate(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || !role.Valid() {
		return nil, ErrUnauthorized
	}

	user, err := store.GetUserByLogin(ctx, s.DB, username, role)
	if err != nil {
		return nil, storageError("looking up user", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		loggerOrDefault(s.Logger).Error("comparing password hash", "user", username, "error", err)
		return nil, ErrUnauthorized
	}
	if !ok {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// ListUsers returns every identity. Admin only.
func (s *Identity) ListUsers(ctx context.Context, actor policy.Actor) ([]model.User, error) {
	if !policy.Allowed(actor, policy.ListUsers, policy.Resource{}) {
		return nil, ErrForbidden
	}
	users, err := store.ListUsers(ctx, s.DB)
	if err != nil {
		return nil, storageError("listing users", err)
	}
	return users, nil
}
