package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists user records. Implementations assign the identifier on
// insert and impose no uniqueness on the other fields.
type Repository interface {
	Create(ctx context.Context, candidate Candidate) (User, error)
	List(ctx context.Context) ([]User, error)
	Ping(ctx context.Context) error
}

const createUsersTable = `CREATE TABLE IF NOT EXISTS users (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    version    INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL
)`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the users table when it does not exist yet.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, candidate Candidate) (User, error) {
	id := uuid.New()
	user := User{
		ID:        id.String(),
		Name:      candidate.Name,
		Phone:     candidate.Phone,
		Email:     candidate.Email,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, name, phone, email, version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, user.Name, user.Phone, user.Email, user.Version, user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// List returns every stored user, oldest first.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, phone, email, version, created_at
        FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt time.Time
			user      User
		)
		if err := rows.Scan(&id, &user.Name, &user.Phone, &user.Email, &user.Version, &createdAt); err != nil {
			return nil, err
		}
		user.ID = id.String()
		user.CreatedAt = createdAt.UTC()
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
