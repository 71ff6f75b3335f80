package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/domain"
)

const categoryColumns = "id, title, created_at, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	ts := now()
	var id int64
	err := s.DB.QueryRowContext(ctx,
		"INSERT INTO categories (title, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id",
		c.Title, ts, ts).Scan(&id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return s.GetCategory(ctx, id)
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, ErrNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

// UpdateCategory saves the title of c and refreshes its updated_at.
func (s *Store) UpdateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	result, err := s.DB.ExecContext(ctx,
		"UPDATE categories SET title = $1, updated_at = $2 WHERE id = $3",
		c.Title, now(), c.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	if err := affectedOne(result); err != nil {
		return domain.Category{}, err
	}
	return s.GetCategory(ctx, c.ID)
}

// DeleteCategory removes the category and every post filed under it.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE category_id = $1", id); err != nil {
			return fmt.Errorf("delete posts of category %d: %w", id, err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		return affectedOne(result)
	})
}
