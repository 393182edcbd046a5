package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/facegate/facegate/internal/database"
)

// UserRepository provides PostgreSQL-backed storage for enrolled identities.
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// NextID reserves a fresh id from the users id sequence. The caller writes
// the image artifact under that id before inserting the row, so a row never
// exists without its artifact.
func (r *UserRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, "SELECT nextval(pg_get_serial_sequence('users', 'id'))").Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reserve user id: %w", err)
	}
	return id, nil
}

// Insert stores a user under its pre-reserved id.
func (r *UserRepository) Insert(ctx context.Context, user database.User) error {
	var imagePath sql.NullString
	if user.ImagePath != "" {
		imagePath = sql.NullString{String: user.ImagePath, Valid: true}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, username, embedding, image_path)
		VALUES ($1, $2, $3, $4)
	`,
		user.ID,
		user.Username,
		database.SerializeEmbedding(user.Embedding),
		imagePath,
	)
	if err != nil {
		return fmt.Errorf("insert user %q: %w", user.Username, err)
	}
	return nil
}

// Get returns a single user by id.
func (r *UserRepository) Get(ctx context.Context, id int64) (*database.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, embedding, image_path, registered_at
		FROM users
		WHERE id = $1
	`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// SelectAll returns every enrolled user in id order.
func (r *UserRepository) SelectAll(ctx context.Context) ([]database.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, embedding, image_path, registered_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []database.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Delete removes a user and reports the recorded image path.
// Returns database.ErrNotFound when no row matched.
func (r *UserRepository) Delete(ctx context.Context, id int64) (string, error) {
	var imagePath sql.NullString
	err := r.pool.QueryRow(ctx, "DELETE FROM users WHERE id = $1 RETURNING image_path", id).Scan(&imagePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", database.ErrNotFound
		}
		return "", fmt.Errorf("delete user %d: %w", id, err)
	}
	if imagePath.Valid {
		return imagePath.String, nil
	}
	return "", nil
}

// Count returns the number of enrolled users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// scanUser scans one users row.
func scanUser(scanner interface{ Scan(...any) error }) (*database.User, error) {
	var user database.User
	var blob []byte
	var imagePath sql.NullString

	if err := scanner.Scan(&user.ID, &user.Username, &blob, &imagePath, &user.RegisteredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	embedding, err := database.DeserializeEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}
	user.Embedding = embedding
	if imagePath.Valid {
		user.ImagePath = imagePath.String
	}
	return &user, nil
}

// Verify interface compliance.
var _ database.UserStore = (*UserRepository)(nil)
