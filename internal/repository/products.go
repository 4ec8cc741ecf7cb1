package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/nkazemy/subman/internal/model"
)

type ProductsRepository interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
	GetByName(ctx context.Context, name string) (*model.Product, error)
	Insert(ctx context.Context, p model.Product) error
}

type ProductsRepositoryImpl struct {
	db *sqlx.DB
}

func NewProductsRepository(db *sqlx.DB) *ProductsRepositoryImpl {
	return &ProductsRepositoryImpl{db: db}
}

var _ ProductsRepository = (*ProductsRepositoryImpl)(nil)

func (r *ProductsRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.db.GetContext(ctx, &p, `
		SELECT id, name, description, customizable, price, periodicity, created_at
		  FROM products
		 WHERE id = ? LIMIT 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductsRepositoryImpl) GetByName(ctx context.Context, name string) (*model.Product, error) {
	var p model.Product
	err := r.db.GetContext(ctx, &p, `
		SELECT id, name, description, customizable, price, periodicity, created_at
		  FROM products
		 WHERE name = ? LIMIT 1
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductsRepositoryImpl) Insert(ctx context.Context, p model.Product) error {
	const q = `
		INSERT INTO products (id, name, description, customizable, price, periodicity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Description, p.Customizable, p.Price, p.Periodicity, p.CreatedAt,
	)
	return err
}
