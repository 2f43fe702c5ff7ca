package dto

type UserResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Type     string `json:"type"`
}

type CreateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=5"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Type     string `json:"type" form:"type" validate:"required,oneof=user admin"`
}

// UpdateUserRequest leaves the password unchanged when it is empty.
type UpdateUserRequest struct {
	ID       string `json:"-"`
	Username string `json:"username" form:"username" validate:"required,min=5"`
	Password string `json:"password,omitempty" form:"password" validate:"omitempty,min=6"`
	Type     string `json:"type" form:"type" validate:"required,oneof=user admin"`
}
