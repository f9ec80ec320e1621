// Package postgres implements the Storage interface on top of a pgx
// connection pool. Uniqueness and referential integrity are enforced by
// the schema: handler-level reads are never the source of truth.
package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"blog/pkg/storage"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL DEFAULT 'user',
	password_hash TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS posts (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	tags TEXT[] NOT NULL DEFAULT '{}',
	image TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	published BOOLEAN NOT NULL DEFAULT FALSE,
	author_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS comments (
	id UUID PRIMARY KEY,
	content TEXT NOT NULL,
	user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	post_id UUID NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS likes (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	post_id UUID NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, post_id)
);

CREATE TABLE IF NOT EXISTS shares (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	post_id UUID NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, post_id)
);
`

type Store struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, conStr string) (*Store, error) {
	db, err := pgxpool.Connect(ctx, conStr)
	if err != nil {
		return nil, err
	}
	s := Store{
		db: db,
	}

	return &s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

// Init creates the schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func isPgErr(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func (s *Store) CreateUser(ctx context.Context, u storage.User) (storage.User, error) {
	u.ID = uuid.Must(uuid.NewV4())
	if !u.Role.Valid() {
		u.Role = storage.RoleUser
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, role, password_hash)
		VALUES ($1, $2, LOWER($3), $4, $5)
		RETURNING email, created_at
	`,
		u.ID,
		u.Name,
		u.Email,
		u.Role,
		u.PasswordHash,
	).Scan(&u.Email, &u.CreatedAt)
	if err != nil {
		if isPgErr(err, pgUniqueViolation) {
			return storage.User{}, storage.ErrEmailTaken
		}
		return storage.User{}, err
	}

	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (user storage.User, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT id, name, email, role, password_hash, created_at
		FROM users
		WHERE email = LOWER($1)
	`,
		email,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		err = storage.ErrUserNotFound
	}

	return
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (user storage.User, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT id, name, email, role, password_hash, created_at
		FROM users
		WHERE id = $1
	`,
		id,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		err = storage.ErrUserNotFound
	}

	return
}

const userCountsColumns = `
	COALESCE((SELECT COUNT(*) FROM posts WHERE author_id = u.id), 0),
	COALESCE((SELECT COUNT(*) FROM likes WHERE user_id = u.id), 0),
	COALESCE((SELECT COUNT(*) FROM comments WHERE user_id = u.id), 0),
	COALESCE((SELECT COUNT(*) FROM shares WHERE user_id = u.id), 0)`

func (s *Store) Users(ctx context.Context, f storage.UserFilter) ([]storage.UserWithCounts, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	role := string(f.Role)

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.name, u.email, u.role, u.created_at,`+userCountsColumns+`
		FROM users u
		WHERE ($1 = '' OR u.name ILIKE '%' || $1 || '%' OR u.email ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR u.role = $2)
		ORDER BY u.name ASC, u.email ASC
		LIMIT $3 OFFSET $4
	`,
		f.Search,
		role,
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []storage.UserWithCounts
	for rows.Next() {
		var u storage.UserWithCounts
		err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.CreatedAt,
			&u.Counts.Posts,
			&u.Counts.Likes,
			&u.Counts.Comments,
			&u.Counts.Shares,
		)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(id) FROM users u
		WHERE ($1 = '' OR u.name ILIKE '%' || $1 || '%' OR u.email ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR u.role = $2)
	`,
		f.Search,
		role,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (s *Store) AllUsers(ctx context.Context) ([]storage.UserWithCounts, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.name, u.email, u.role, u.created_at,`+userCountsColumns+`
		FROM users u
		ORDER BY u.name ASC, u.email ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []storage.UserWithCounts
	for rows.Next() {
		var u storage.UserWithCounts
		err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Role,
			&u.CreatedAt,
			&u.Counts.Posts,
			&u.Counts.Likes,
			&u.Counts.Comments,
			&u.Counts.Shares,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role storage.Role) (storage.UserWithCounts, error) {
	var u storage.UserWithCounts
	err := s.db.QueryRow(ctx, `
		WITH updated AS (
			UPDATE users SET role = $2 WHERE id = $1
			RETURNING id, name, email, role, created_at
		)
		SELECT u.id, u.name, u.email, u.role, u.created_at,`+userCountsColumns+`
		FROM updated u
	`,
		id,
		role,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
		&u.Counts.Posts,
		&u.Counts.Likes,
		&u.Counts.Comments,
		&u.Counts.Shares,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.UserWithCounts{}, storage.ErrUserNotFound
	}
	if err != nil {
		return storage.UserWithCounts{}, err
	}

	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	var deleted uuid.UUID
	err := s.db.QueryRow(ctx, `
		DELETE FROM users WHERE id = $1 RETURNING id
	`,
		id,
	).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrUserNotFound
	}

	return err
}
