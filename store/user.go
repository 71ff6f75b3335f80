package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blog/domain"
)

const userColumns = "id, username, is_admin, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Admin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser stores a user with an already hashed password. A taken
// username yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, username string, passwordHash []byte, admin bool) (domain.User, error) {
	var u domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx, "SELECT COUNT(username) FROM users WHERE username = $1", username).Scan(&count)
		if err != nil {
			return fmt.Errorf("lookup username: %w", err)
		}
		if count != 0 {
			return ErrConflict
		}
		ts := now()
		var id int64
		err = tx.QueryRowContext(ctx,
			"INSERT INTO users (username, password, is_admin, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
			username, string(passwordHash), admin, ts, ts).Scan(&id)
		if isUniqueViolation(err) {
			return ErrConflict
		}
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		u, err = scanUser(tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
		if err != nil {
			return fmt.Errorf("read back user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	u.PostIDs = []int64{}
	return u, nil
}

// Credentials returns the user and its password hash for login.
func (s *Store) Credentials(ctx context.Context, username string) (domain.User, []byte, error) {
	var hash string
	var u domain.User
	err := s.DB.QueryRowContext(ctx,
		"SELECT id, username, is_admin, created_at, updated_at, password FROM users WHERE username = $1", username).
		Scan(&u.ID, &u.Username, &u.Admin, &u.CreatedAt, &u.UpdatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, nil, ErrNotFound
	}
	if err != nil {
		return domain.User{}, nil, fmt.Errorf("get credentials: %w", err)
	}
	return u, []byte(hash), nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %d: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, "SELECT id FROM posts WHERE owner_id = $1 ORDER BY id", id)
	if err != nil {
		return domain.User{}, fmt.Errorf("list posts of user %d: %w", id, err)
	}
	defer rows.Close()
	u.PostIDs = []int64{}
	for rows.Next() {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			return domain.User{}, err
		}
		u.PostIDs = append(u.PostIDs, postID)
	}
	return u, rows.Err()
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return s.GetUser(ctx, id)
}

// ListUsers returns every user ordered by id, each with the ids of its posts.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := []domain.User{}
	index := map[int64]int{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.PostIDs = []int64{}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.DB.QueryContext(ctx, "SELECT owner_id, id FROM posts ORDER BY owner_id, id")
	if err != nil {
		return nil, fmt.Errorf("list post owners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ownerID, postID int64
		if err := rows.Scan(&ownerID, &postID); err != nil {
			return nil, err
		}
		if i, ok := index[ownerID]; ok {
			users[i].PostIDs = append(users[i].PostIDs, postID)
		}
	}
	return users, rows.Err()
}

// DeleteUser removes the user and every post it owns.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM posts WHERE owner_id = $1", id); err != nil {
			return fmt.Errorf("delete posts of user %d: %w", id, err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		return affectedOne(result)
	})
}
