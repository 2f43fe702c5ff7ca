package service

import (
	"context"
	"errors"
	"time"

	"storefront-admin/internal/dto"
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/internal/session"
	"storefront-admin/pkg/query"
)

const AuthModule = "AUTH"

// ErrNoCredential is returned when the login answer carries no token.
var ErrNoCredential = errors.New("login response did not include a credential")

type IAuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context) error
	LoginScreen(ctx context.Context) dto.LoginScreen
	Home(ctx context.Context, sess *session.Session) *dto.HomeScreen
}

type authService struct {
	api      RemoteAPI
	sessions *session.Store
	cache    *query.Cache
	logger   logger.ILogger
}

func NewAuthService(api RemoteAPI, sessions *session.Store, cache *query.Cache, log logger.ILogger) IAuthService {
	return &authService{
		api:      api,
		sessions: sessions,
		cache:    cache,
		logger:   log,
	}
}

// Login leaves the stored session untouched unless the remote API accepts
// the credentials.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	var res dto.LoginResponse
	if err := s.api.Post(ctx, pathLogin, req, &res); err != nil {
		s.logger.Warn(AuthModule, "Login rejected", map[string]interface{}{
			"username": req.Username,
			"error":    err.Error(),
		})
		return nil, err
	}
	if res.Token == "" {
		return nil, ErrNoCredential
	}
	if res.Username == "" {
		res.Username = req.Username
	}

	// Previous operator's data must not leak into this session
	s.cache.Clear()

	identity := session.Identity{UserID: res.UserID, Username: res.Username, Type: res.Type}
	if err := s.sessions.Set(ctx, identity, res.Token); err != nil {
		return nil, err
	}

	s.logger.Info(AuthModule, "Operator logged in", map[string]interface{}{
		"user_id": res.UserID,
	})
	return &res, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	s.cache.Clear()
	s.logger.Info(AuthModule, "Operator logged out", nil)
	return nil
}

func (s *authService) LoginScreen(ctx context.Context) dto.LoginScreen {
	_, ok := s.sessions.Get(ctx)
	return dto.LoginScreen{Authenticated: ok}
}

func (s *authService) Home(ctx context.Context, sess *session.Session) *dto.HomeScreen {
	home := &dto.HomeScreen{
		UserID:   sess.UserID,
		Username: sess.Username,
		Type:     sess.Type,
	}
	if claims, ok := session.DecodeClaims(sess.Token); ok && !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		home.ExpiresAt = &exp
		home.Expired = claims.Expired(time.Now())
	}
	return home
}
