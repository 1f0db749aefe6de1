package catalog

import (
	"strings"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/internal/service/crud"
)

type (
	BrandService    = crud.Service[model.Brand, model.BrandInput]
	CategoryService = crud.Service[model.Category, model.CategoryInput]
	SupplierService = crud.Service[model.Supplier, model.SupplierInput]
	ProductService  = crud.Service[model.Product, model.ProductInput]
)

func NewBrandService(repo repository.BrandRepository) *BrandService {
	return crud.NewService[model.Brand, model.BrandInput](repo, crud.Mapper[model.Brand, model.BrandInput]{
		New: func(in model.BrandInput) model.Brand {
			b := model.Brand{}
			applyBrand(&b, in)
			return b
		},
		Apply: applyBrand,
	})
}

func applyBrand(b *model.Brand, in model.BrandInput) {
	b.Name = strings.TrimSpace(in.Name)
	b.Description = trimmed(in.Description)
	b.Status = model.StatusOrDefault(in.Status)
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return crud.NewService[model.Category, model.CategoryInput](repo, crud.Mapper[model.Category, model.CategoryInput]{
		New: func(in model.CategoryInput) model.Category {
			c := model.Category{}
			applyCategory(&c, in)
			return c
		},
		Apply: applyCategory,
	})
}

func applyCategory(c *model.Category, in model.CategoryInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.Description = trimmed(in.Description)
	c.Status = model.StatusOrDefault(in.Status)
}

func NewSupplierService(repo repository.SupplierRepository) *SupplierService {
	return crud.NewService[model.Supplier, model.SupplierInput](repo, crud.Mapper[model.Supplier, model.SupplierInput]{
		New: func(in model.SupplierInput) model.Supplier {
			s := model.Supplier{}
			applySupplier(&s, in)
			return s
		},
		Apply: applySupplier,
	})
}

func applySupplier(s *model.Supplier, in model.SupplierInput) {
	s.Name = strings.TrimSpace(in.Name)
	s.ContactName = trimmed(in.ContactName)
	s.Email = trimmed(in.Email)
	s.Phone = trimmed(in.Phone)
	s.Address = trimmed(in.Address)
	s.Status = model.StatusOrDefault(in.Status)
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return crud.NewService[model.Product, model.ProductInput](repo, crud.Mapper[model.Product, model.ProductInput]{
		New: func(in model.ProductInput) model.Product {
			p := model.Product{}
			applyProduct(&p, in)
			return p
		},
		Apply: applyProduct,
		Check: model.ProductInput.PriceErrors,
	})
}

func applyProduct(p *model.Product, in model.ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	p.BrandID = in.BrandID
	p.CategoryID = in.CategoryID
	p.SupplierID = in.SupplierID
	p.Price = in.Price.Round(2)
	p.Stock = in.Stock
	p.Status = model.StatusOrDefault(in.Status)
}

// trimmed returns nil for missing or blank optional text.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
