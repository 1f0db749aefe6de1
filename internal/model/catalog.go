package model

type Brand struct {
	Base
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Status      string  `json:"status" db:"status"`
}

type BrandInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

type Category struct {
	Base
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Status      string  `json:"status" db:"status"`
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Status      string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

type Supplier struct {
	Base
	Name        string  `json:"name" db:"name"`
	ContactName *string `json:"contact_name" db:"contact_name"`
	Email       *string `json:"email" db:"email"`
	Phone       *string `json:"phone" db:"phone"`
	Address     *string `json:"address" db:"address"`
	Status      string  `json:"status" db:"status"`
}

type SupplierInput struct {
	Name        string  `json:"name" validate:"required,max=150"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=150"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	Status      string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

// StatusOrDefault returns s, or active when s is empty.
func StatusOrDefault(s string) string {
	if s == "" {
		return StatusActive
	}
	return s
}
