package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/domain"
)

const selectPosts = `SELECT p.id, p.title, p.body, p.category_id, p.owner_id, u.username,
	p.highlighted, p.created_at, p.updated_at
	FROM posts p JOIN users u ON u.id = p.owner_id`

func scanPost(row interface{ Scan(...any) error }) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.Title, &p.Body, &p.CategoryID, &p.OwnerID, &p.Owner,
		&p.Highlighted, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// checkReferences reports a missing category or owner as a field error.
func checkReferences(ctx context.Context, tx *sql.Tx, p domain.Post) error {
	v := domain.ValidationError{}
	ok, err := exists(ctx, tx, "categories", p.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		v.Add("category", domain.DoesNotExistMessage(p.CategoryID))
	}
	ok, err = exists(ctx, tx, "users", p.OwnerID)
	if err != nil {
		return err
	}
	if !ok {
		v.Add("owner", domain.DoesNotExistMessage(p.OwnerID))
	}
	return v.OrNil()
}

// CreatePost inserts p owned by p.OwnerID. The returned post carries the
// assigned id, timestamps and owner username.
func (s *Store) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkReferences(ctx, tx, p); err != nil {
			return err
		}
		ts := now()
		err := tx.QueryRowContext(ctx,
			`INSERT INTO posts (title, body, category_id, owner_id, highlighted, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			p.Title, p.Body, p.CategoryID, p.OwnerID, p.Highlighted, ts, ts).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Post{}, err
	}
	return s.GetPost(ctx, id)
}

func (s *Store) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.DB.QueryContext(ctx, selectPosts+" ORDER BY p.created_at, p.id")
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	p, err := scanPost(s.DB.QueryRowContext(ctx, selectPosts+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Post{}, ErrNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return p, nil
}

// UpdatePost saves the writable fields of p. The owner and created_at are
// never changed.
func (s *Store) UpdatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, "categories", p.CategoryID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ValidationError{"category": {domain.DoesNotExistMessage(p.CategoryID)}}
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE posts SET title = $1, body = $2, category_id = $3, highlighted = $4, updated_at = $5
			WHERE id = $6`,
			p.Title, p.Body, p.CategoryID, p.Highlighted, now(), p.ID)
		if err != nil {
			return fmt.Errorf("update post %d: %w", p.ID, err)
		}
		return affectedOne(result)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return s.GetPost(ctx, p.ID)
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	result, err := s.DB.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return affectedOne(result)
}
