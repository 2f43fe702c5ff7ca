package service

import (
	"context"
	"encoding/json"

	"storefront-admin/internal/dto"
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/pkg/query"
)

const CategoriesModule = "CATEGORIES"

// Products embed their category name, so category writes also invalidate
// product keys.
var categoryRelated = []string{EntityCategory, EntityProducts, EntityProduct}

type ICategoryService interface {
	List(ctx context.Context) dto.ScreenState[[]dto.CategoryResponse]
	Show(ctx context.Context, id string) dto.ScreenState[*dto.CategoryResponse]
	Create(ctx context.Context, req *dto.CategoryRequest) (json.RawMessage, error)
	Update(ctx context.Context, req *dto.CategoryRequest) (json.RawMessage, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	api    RemoteAPI
	cache  *query.Cache
	logger logger.ILogger
}

func NewCategoryService(api RemoteAPI, cache *query.Cache, log logger.ILogger) ICategoryService {
	return &categoryService{api: api, cache: cache, logger: log}
}

func (s *categoryService) List(ctx context.Context) dto.ScreenState[[]dto.CategoryResponse] {
	res, err := query.Get(ctx, s.cache, CategoriesKey(), func(ctx context.Context) ([]dto.CategoryResponse, error) {
		var categories []dto.CategoryResponse
		if err := s.api.Get(ctx, pathCategories, &categories); err != nil {
			return nil, err
		}
		return categories, nil
	})
	if err != nil {
		s.logger.Debug(CategoriesModule, "Categories unavailable", map[string]interface{}{"error": err.Error()})
	}
	return dto.ScreenFromResult(res, err)
}

func (s *categoryService) Show(ctx context.Context, id string) dto.ScreenState[*dto.CategoryResponse] {
	res, err := query.Get(ctx, s.cache, CategoryKey(id), func(ctx context.Context) (*dto.CategoryResponse, error) {
		var category dto.CategoryResponse
		if err := s.api.Get(ctx, itemPath(pathCategories, id), &category); err != nil {
			return nil, err
		}
		return &category, nil
	})
	return dto.ScreenFromResult(res, err)
}

func (s *categoryService) Create(ctx context.Context, req *dto.CategoryRequest) (json.RawMessage, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityCategories,
		Operation: query.OpCreate,
		Payload:   map[string]interface{}{"name": req.Name},
		Related:   categoryRelated,
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Post(ctx, pathCategories, req, out)
	})
}

func (s *categoryService) Update(ctx context.Context, req *dto.CategoryRequest) (json.RawMessage, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityCategories,
		Operation: query.OpUpdate,
		TargetID:  req.ID,
		Payload:   map[string]interface{}{"name": req.Name},
		Related:   categoryRelated,
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Put(ctx, itemPath(pathCategories, req.ID), req, out)
	})
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	_, err := mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityCategories,
		Operation: query.OpDelete,
		TargetID:  id,
		Related:   categoryRelated,
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Delete(ctx, itemPath(pathCategories, id), out)
	})
	if err == nil {
		s.logger.Info(CategoriesModule, "Category deleted", map[string]interface{}{"category_id": id})
	}
	return err
}
