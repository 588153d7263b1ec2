package postgres

import (
	"context"

	"evently/internal/domain"
)

type categoryRepository struct {
	conn Connector
}

func NewCategoryRepository(conn Connector) domain.CategoryRepository {
	return &categoryRepository{conn: conn}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return err
	}
	err = db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
	if pqCode(err) == pqUniqueViolation {
		return domain.ErrDuplicateName
	}
	return err
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	db, err := executor(ctx, r.conn)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
