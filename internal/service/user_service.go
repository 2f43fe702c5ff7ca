package service

import (
	"context"
	"encoding/json"

	"storefront-admin/internal/dto"
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/pkg/query"
)

const UsersModule = "USERS"

type IUserService interface {
	List(ctx context.Context) dto.ScreenState[[]dto.UserResponse]
	Show(ctx context.Context, id string) dto.ScreenState[*dto.UserResponse]
	Create(ctx context.Context, req *dto.CreateUserRequest) (json.RawMessage, error)
	Update(ctx context.Context, req *dto.UpdateUserRequest) (json.RawMessage, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	api    RemoteAPI
	cache  *query.Cache
	logger logger.ILogger
}

func NewUserService(api RemoteAPI, cache *query.Cache, log logger.ILogger) IUserService {
	return &userService{api: api, cache: cache, logger: log}
}

func (s *userService) List(ctx context.Context) dto.ScreenState[[]dto.UserResponse] {
	res, err := query.Get(ctx, s.cache, UsersKey(), func(ctx context.Context) ([]dto.UserResponse, error) {
		var users []dto.UserResponse
		if err := s.api.Get(ctx, pathUsers, &users); err != nil {
			return nil, err
		}
		return users, nil
	})
	return dto.ScreenFromResult(res, err)
}

func (s *userService) Show(ctx context.Context, id string) dto.ScreenState[*dto.UserResponse] {
	res, err := query.Get(ctx, s.cache, UserKey(id), func(ctx context.Context) (*dto.UserResponse, error) {
		var user dto.UserResponse
		if err := s.api.Get(ctx, itemPath(pathUsers, id), &user); err != nil {
			return nil, err
		}
		return &user, nil
	})
	return dto.ScreenFromResult(res, err)
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (json.RawMessage, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	return mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityUsers,
		Operation: query.OpCreate,
		Payload:   map[string]interface{}{"username": req.Username, "type": req.Type},
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Post(ctx, pathRegister, req, out)
	})
}

// Update sends the password only when one was entered.
func (s *userService) Update(ctx context.Context, req *dto.UpdateUserRequest) (json.RawMessage, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}

	return mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityUsers,
		Operation: query.OpUpdate,
		TargetID:  req.ID,
		Payload:   map[string]interface{}{"username": req.Username, "type": req.Type},
		Related:   []string{EntityUser},
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Put(ctx, itemPath(pathUsers, req.ID), req, out)
	})
}

func (s *userService) Delete(ctx context.Context, id string) error {
	_, err := mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityUsers,
		Operation: query.OpDelete,
		TargetID:  id,
		Related:   []string{EntityUser},
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Delete(ctx, itemPath(pathUsers, id), out)
	})
	if err == nil {
		s.logger.Info(UsersModule, "User deleted", map[string]interface{}{"user_id": id})
	}
	return err
}

// mutate runs one remote write through the cache so that only a successful
// write invalidates.
func mutate(ctx context.Context, cache *query.Cache, req query.MutationRequest, call func(ctx context.Context, out *json.RawMessage) error) (json.RawMessage, error) {
	result, err := cache.Mutate(ctx, req, func(ctx context.Context) (any, error) {
		var out json.RawMessage
		if err := call(ctx, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	raw, _ := result.(json.RawMessage)
	return raw, nil
}
