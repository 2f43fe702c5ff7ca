package routepath

import (
	"net/url"
	"strings"
)

const (
	Root   = "/"
	Login  = "/login"
	Logout = "/logout"
	Live   = "/ws"
)

const (
	Products       = "/products"
	ProductsCreate = "/products/create"
	ProductsEdit   = "/products/edit/:id"
	ProductsItem   = "/products/:id"
)

const (
	Categories       = "/categories"
	CategoriesCreate = "/categories/create"
	CategoriesEdit   = "/categories/edit/:id"
	CategoriesItem   = "/categories/:id"
)

const (
	Users       = "/users"
	UsersCreate = "/users/create"
	UsersEdit   = "/users/:id/edit"
	UsersItem   = "/users/:id"
)

// Public lists the only paths served without an Authenticated session.
var Public = []string{Login}

func IsPublic(path string) bool {
	path = strings.TrimRight(path, "/")
	for _, p := range Public {
		if path == p {
			return true
		}
	}
	return false
}

func ProductEdit(productID string) string {
	return "/products/edit/" + escapeSegment(productID)
}

func CategoryEdit(categoryID string) string {
	return "/categories/edit/" + escapeSegment(categoryID)
}

func UserEdit(userID string) string {
	return Users + "/" + escapeSegment(userID) + "/edit"
}

func ProductsByCategory(categoryID string) string {
	if strings.TrimSpace(categoryID) == "" {
		return Products
	}
	return Products + "?category=" + url.QueryEscape(categoryID)
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
