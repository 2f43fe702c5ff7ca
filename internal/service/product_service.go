package service

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"storefront-admin/internal/dto"
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/pkg/serverutils"
	"storefront-admin/internal/session"
	"storefront-admin/pkg/query"
)

const ProductsModule = "PRODUCTS"

type IProductService interface {
	List(ctx context.Context, sess *session.Session, category string) dto.ScreenState[dto.ProductListScreen]
	Form(ctx context.Context, id string) dto.ScreenState[dto.ProductFormScreen]
	Create(ctx context.Context, req *dto.ProductRequest) (json.RawMessage, error)
	Update(ctx context.Context, req *dto.ProductRequest) (json.RawMessage, error)
	Delete(ctx context.Context, id string) error
}

type productService struct {
	api        RemoteAPI
	cache      *query.Cache
	categories ICategoryService
	logger     logger.ILogger

	// selected is the filter shown last; its rows stand in while another
	// filter loads for the first time.
	mu       sync.Mutex
	selected string
}

func NewProductService(api RemoteAPI, cache *query.Cache, categories ICategoryService, log logger.ILogger) IProductService {
	return &productService{api: api, cache: cache, categories: categories, logger: log}
}

func (s *productService) fetchProducts(category string) func(ctx context.Context) ([]dto.ProductResponse, error) {
	return func(ctx context.Context) ([]dto.ProductResponse, error) {
		var products []dto.ProductResponse
		if err := s.api.Get(ctx, pathProducts+"?category="+url.QueryEscape(category), &products); err != nil {
			return nil, err
		}
		return products, nil
	}
}

// List shows only the products owned by the logged-in operator.
func (s *productService) List(ctx context.Context, sess *session.Session, category string) dto.ScreenState[dto.ProductListScreen] {
	category = normalizeCategory(category)

	s.mu.Lock()
	previous := s.selected
	s.selected = category
	s.mu.Unlock()

	var opts []query.ReadOption
	if previous != "" && previous != category {
		opts = append(opts, query.WithPlaceholder(ProductsKey(previous)))
	}

	res, err := query.Get(ctx, s.cache, ProductsKey(category), s.fetchProducts(category), opts...)
	screen := dto.ScreenFromResult(res, err)

	owner := ""
	if sess != nil {
		owner = sess.UserID
	}
	cats := s.categories.List(ctx)

	return dto.MapScreen(screen, func(products []dto.ProductResponse) dto.ProductListScreen {
		return dto.ProductListScreen{
			Category:   category,
			Products:   ownedBy(products, owner),
			Categories: cats.Data,
		}
	})
}

func ownedBy(products []dto.ProductResponse, owner string) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		if p.User.ID == owner {
			out = append(out, p)
		}
	}
	return out
}

// Form loads the category choices and, for an edit, the product itself.
func (s *productService) Form(ctx context.Context, id string) dto.ScreenState[dto.ProductFormScreen] {
	cats := s.categories.List(ctx)
	if id == "" {
		return dto.MapScreen(cats, func(c []dto.CategoryResponse) dto.ProductFormScreen {
			return dto.ProductFormScreen{Categories: c}
		})
	}

	res, err := query.Get(ctx, s.cache, ProductKey(id), func(ctx context.Context) (*dto.ProductResponse, error) {
		var product dto.ProductResponse
		if err := s.api.Get(ctx, itemPath(pathProducts, id), &product); err != nil {
			return nil, err
		}
		return &product, nil
	})
	return dto.MapScreen(dto.ScreenFromResult(res, err), func(p *dto.ProductResponse) dto.ProductFormScreen {
		return dto.ProductFormScreen{Product: p, Categories: cats.Data}
	})
}

func (s *productService) Create(ctx context.Context, req *dto.ProductRequest) (json.RawMessage, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityProducts,
		Operation: query.OpCreate,
		Payload:   map[string]interface{}{"name": req.Name, "category": req.Category},
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Post(ctx, pathProducts, req, out)
	})
}

func (s *productService) Update(ctx context.Context, req *dto.ProductRequest) (json.RawMessage, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityProducts,
		Operation: query.OpUpdate,
		TargetID:  req.ID,
		Payload:   map[string]interface{}{"name": req.Name, "category": req.Category},
		Related:   []string{EntityProduct},
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Put(ctx, itemPath(pathProducts, req.ID), req, out)
	})
}

func (s *productService) Delete(ctx context.Context, id string) error {
	_, err := mutate(ctx, s.cache, query.MutationRequest{
		Entity:    EntityProducts,
		Operation: query.OpDelete,
		TargetID:  id,
		Related:   []string{EntityProduct},
	}, func(ctx context.Context, out *json.RawMessage) error {
		return s.api.Delete(ctx, itemPath(pathProducts, id), out)
	})
	if err == nil {
		s.logger.Info(ProductsModule, "Product deleted", map[string]interface{}{"product_id": id})
	}
	return err
}
