package service

import (
	"context"
	"net/url"

	"storefront-admin/pkg/query"
)

// RemoteAPI is the part of apiclient.Client the services call.
type RemoteAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Remote resource paths, relative to the API base URL.
const (
	pathLogin      = "auth/login/admin"
	pathRegister   = "auth/register"
	pathUsers      = "users"
	pathProducts   = "products"
	pathCategories = "categories"
)

func itemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}

// Entity names used as the first element of every query key.
const (
	EntityUsers      = "users"
	EntityUser       = "user"
	EntityProducts   = "products"
	EntityProduct    = "product"
	EntityCategories = "categories"
	EntityCategory   = "category"
)

// AllCategories is the product filter value meaning "no filter".
const AllCategories = "all"

func UsersKey() query.Key              { return query.NewKey(EntityUsers) }
func UserKey(id string) query.Key      { return query.NewKey(EntityUser, id) }
func ProductsKey(cat string) query.Key { return query.NewKey(EntityProducts, normalizeCategory(cat)) }
func ProductKey(id string) query.Key   { return query.NewKey(EntityProduct, id) }
func CategoriesKey() query.Key         { return query.NewKey(EntityCategories) }
func CategoryKey(id string) query.Key  { return query.NewKey(EntityCategory, id) }

func normalizeCategory(cat string) string {
	if cat == "" {
		return AllCategories
	}
	return cat
}
