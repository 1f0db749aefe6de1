package model

import "github.com/shopspring/decimal"

type Product struct {
	Base
	Name         string          `json:"name" db:"name"`
	SKU          string          `json:"sku" db:"sku"`
	BrandID      int64           `json:"brand_id" db:"brand_id"`
	BrandName    string          `json:"brand_name" db:"brand_name"`
	CategoryID   int64           `json:"category_id" db:"category_id"`
	CategoryName string          `json:"category_name" db:"category_name"`
	SupplierID   *int64          `json:"supplier_id" db:"supplier_id"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Stock        int             `json:"stock" db:"stock"`
	Status       string          `json:"status" db:"status"`
}

type ProductInput struct {
	Name       string          `json:"name" validate:"required,max=150"`
	SKU        string          `json:"sku" validate:"required,max=50"`
	BrandID    int64           `json:"brand_id" validate:"required,gt=0"`
	CategoryID int64           `json:"category_id" validate:"required,gt=0"`
	SupplierID *int64          `json:"supplier_id" validate:"omitempty,gt=0"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock" validate:"gte=0"`
	Status     string          `json:"status" validate:"omitempty,oneof=active inactive"`
}

// PriceErrors reports a negative price in the field error shape used for 422s.
func (in ProductInput) PriceErrors() map[string][]string {
	if in.Price.IsNegative() {
		return map[string][]string{"price": {"The price must be at least 0."}}
	}
	return nil
}

func (in ProductInput) RuleErrors() map[string][]string { return in.PriceErrors() }
