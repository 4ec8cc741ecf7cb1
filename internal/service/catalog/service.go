// Package catalog validates and stores product definitions. Products are
// immutable after creation; there is deliberately no update path.
package catalog

import (
	"context"
	"time"

	"github.com/nkazemy/subman/internal/apperr"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/repository"
	"github.com/nkazemy/subman/internal/util"
)

type Service struct {
	products repository.ProductsRepository
	now      func() time.Time
}

func New(products repository.ProductsRepository) *Service {
	return &Service{
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddProduct persists a new product and returns its id.
func (s *Service) AddProduct(ctx context.Context, name, description string, customizable bool, price float64, periodicity string) (string, error) {
	existing, err := s.products.GetByName(ctx, name)
	if err != nil {
		return "", apperr.Store("product lookup", err)
	}
	if existing != nil {
		return "", apperr.ErrDuplicateName
	}

	if price <= 0 {
		return "", apperr.ErrInvalidPrice
	}

	p, ok := model.ParsePeriodicity(periodicity)
	if !ok {
		return "", apperr.ErrInvalidPeriodicity
	}

	product := model.Product{
		ID:           util.NewID(),
		Name:         name,
		Description:  description,
		Customizable: customizable,
		Price:        &price,
		Periodicity:  &p,
		CreatedAt:    s.now(),
	}
	if err := s.products.Insert(ctx, product); err != nil {
		return "", apperr.Store("insert product", err)
	}
	return product.ID, nil
}
