package dto

type CategoryResponse struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type ProductCategory struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type ProductOwner struct {
	ID string `json:"_id"`
}

type ProductResponse struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Price    float64         `json:"price"`
	Category ProductCategory `json:"category"`
	User     ProductOwner    `json:"user"`
}

type CategoryRequest struct {
	ID   string `json:"-"`
	Name string `json:"name" form:"name" validate:"required,min=2,max=64"`
}

type ProductRequest struct {
	ID       string  `json:"-"`
	Name     string  `json:"name" form:"name" validate:"required,min=2,max=128"`
	Price    float64 `json:"price" form:"price" validate:"gt=0"`
	Category string  `json:"category" form:"category" validate:"required"`
}

type ProductListScreen struct {
	Category   string             `json:"category"`
	Products   []ProductResponse  `json:"products"`
	Categories []CategoryResponse `json:"categories"`
}

type ProductFormScreen struct {
	Product    *ProductResponse   `json:"product,omitempty"`
	Categories []CategoryResponse `json:"categories"`
}
