package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/karkkilista/internal/api"
	"github.com/mmynk/karkkilista/internal/auth"
	"github.com/mmynk/karkkilista/internal/metrics"
	"github.com/mmynk/karkkilista/internal/middleware"
	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

var _ api.AuthServiceHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Register creates a new account together with its (empty) list.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.Info("Register request", "email", req.Msg.Email)

	if err := api.Validate(req.Msg); err != nil {
		return nil, err
	}

	account, owner, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.Username, req.Msg.Password)
	if err != nil {
		s.logger.Error("Registration failed", "email", req.Msg.Email, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", account.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	metrics.Registrations.Inc()
	s.logger.Info("User registered successfully", "user_id", account.ID, "email", account.Email)

	return connect.NewResponse(&api.RegisterResponse{
		User:  userFromModels(account, owner),
		Token: token,
	}), nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	if err := api.Validate(req.Msg); err != nil {
		return nil, err
	}

	account, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(account)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", account.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	// The username is cosmetic here; a missing profile must not block login.
	owner, err := s.store.GetOwner(ctx, account.ID)
	if err != nil {
		s.logger.Warn("Owner profile lookup failed", "user_id", account.ID, "error", err)
		owner = nil
	}

	s.logger.Info("User logged in successfully", "user_id", account.ID, "email", account.Email)

	return connect.NewResponse(&api.LoginResponse{
		User:  userFromModels(account, owner),
		Token: token,
	}), nil
}

// Logout is a no-op: tokens are stateless and the client discards its copy.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	s.logger.Info("Logout request", "user_id", middleware.GetUserID(ctx))
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the account behind the bearer token.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	s.logger.Info("GetCurrentUser request", "user_id", userID)

	account, err := s.store.GetAccountByID(ctx, userID)
	if err != nil {
		s.logger.Error("GetCurrentUser failed", "user_id", userID, "error", err)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	owner, err := s.store.GetOwner(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("GetCurrentUser failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{
		User: userFromModels(account, owner),
	}), nil
}

func userFromModels(account *models.Account, owner *models.Owner) api.User {
	u := api.User{ID: account.ID, Email: account.Email}
	if owner != nil {
		u.Username = owner.Username
	}
	return u
}
