package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gurukul-backend/internal/auth"
	"gurukul-backend/internal/cache"
	"gurukul-backend/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotConfigured      = errors.New("admin auth not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid refresh token")
)

type Service struct {
	users    store.Repository[User]
	manager  *auth.Manager
	revoked  cache.Cache
	location *time.Location
}

// NewService accepts a nil manager when no JWT secret is configured; every
// session operation then fails with ErrNotConfigured.
func NewService(users store.Repository[User], manager *auth.Manager, revoked cache.Cache, location *time.Location) *Service {
	return &Service{
		users:    users,
		manager:  manager,
		revoked:  revoked,
		location: location,
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (User, Session, error) {
	if s.manager == nil {
		return User{}, Session{}, ErrNotConfigured
	}
	user, err := s.users.FindOne(ctx, bson.M{"username": normalizeUsername(username)})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, Session{}, ErrInvalidCredentials
		}
		return User{}, Session{}, err
	}
	if user.Role != auth.RoleAdmin || auth.ComparePassword(user.PasswordHash, password) != nil {
		return User{}, Session{}, ErrInvalidCredentials
	}
	session, err := s.issue(user.ID)
	if err != nil {
		return User{}, Session{}, err
	}
	return user, session, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Revocation is a single set-if-absent, so of several
// concurrent refreshes with the same token only one succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if s.manager == nil {
		return Session{}, ErrNotConfigured
	}
	claims, err := s.manager.Parse(refreshToken)
	if err != nil || claims.Kind != auth.KindRefresh || claims.Role != auth.RoleAdmin {
		return Session{}, ErrInvalidToken
	}
	ttl := s.manager.RefreshTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	claimed, err := cache.RevokeOnce(ctx, s.revoked, claims.ID, ttl)
	if err != nil {
		return Session{}, fmt.Errorf("revoke token: %w", err)
	}
	if !claimed {
		return Session{}, ErrInvalidToken
	}
	return s.issue(claims.Subject)
}

// Logout revokes the refresh token if it is still valid. Unparseable tokens
// are ignored since they can no longer be used.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if s.manager == nil || refreshToken == "" {
		return nil
	}
	claims, err := s.manager.Parse(refreshToken)
	if err != nil || claims.Kind != auth.KindRefresh {
		return nil
	}
	return s.revoke(ctx, claims)
}

// EnsureUser creates an admin account when username is not taken. It reports
// whether a user was created.
func (s *Service) EnsureUser(ctx context.Context, username, password string) (bool, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return false, errors.New("username and password are required")
	}
	if _, err := s.users.FindOne(ctx, bson.M{"username": username}); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := time.Now().In(s.location)
	user := User{
		ID:           primitive.NewObjectID().Hex(),
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) issue(subject string) (Session, error) {
	access, err := s.manager.NewAccessToken(subject, auth.RoleAdmin)
	if err != nil {
		return Session{}, err
	}
	refresh, _, err := s.manager.NewRefreshToken(subject, auth.RoleAdmin)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) revoke(ctx context.Context, claims *auth.Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	if err := cache.Revoke(ctx, s.revoked, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
