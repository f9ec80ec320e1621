package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v4"

	"blog/pkg/storage"
)

const commentContextColumns = `
	c.id, c.content, c.user_id, c.post_id, c.created_at,
	u.name, u.email, p.title, p.slug`

func (s *Store) CreateComment(ctx context.Context, c storage.Comment) (storage.Comment, error) {
	c.ID = uuid.Must(uuid.NewV4())

	err := s.db.QueryRow(ctx, `
		INSERT INTO comments (id, content, user_id, post_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`,
		c.ID,
		c.Content,
		c.UserID,
		c.PostID,
	).Scan(&c.CreatedAt)
	if err != nil {
		if isPgErr(err, pgForeignKeyViolation) {
			return storage.Comment{}, storage.ErrPostNotFound
		}
		return storage.Comment{}, err
	}

	return c, nil
}

func (s *Store) UpdateComment(ctx context.Context, id uuid.UUID, content string) (c storage.Comment, err error) {
	err = s.db.QueryRow(ctx, `
		UPDATE comments SET content = $2
		WHERE id = $1
		RETURNING id, content, user_id, post_id, created_at
	`,
		id,
		content,
	).Scan(&c.ID, &c.Content, &c.UserID, &c.PostID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = storage.ErrCommentNotFound
	}

	return
}

func (s *Store) DeleteComment(ctx context.Context, id uuid.UUID) error {
	var deleted uuid.UUID
	err := s.db.QueryRow(ctx, `
		DELETE FROM comments WHERE id = $1 RETURNING id
	`,
		id,
	).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrCommentNotFound
	}

	return err
}

func (s *Store) CommentByID(ctx context.Context, id uuid.UUID) (c storage.Comment, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT id, content, user_id, post_id, created_at
		FROM comments
		WHERE id = $1
	`,
		id,
	).Scan(&c.ID, &c.Content, &c.UserID, &c.PostID, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = storage.ErrCommentNotFound
	}

	return
}

func (s *Store) CommentsByPost(ctx context.Context, postID uuid.UUID) ([]storage.CommentWithContext, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+commentContextColumns+`
		FROM comments c
		JOIN users u ON c.user_id = u.id
		JOIN posts p ON c.post_id = p.id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id ASC
	`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectComments(rows)
}

func (s *Store) Comments(ctx context.Context, f storage.CommentFilter) ([]storage.CommentWithContext, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	rows, err := s.db.Query(ctx, `
		SELECT`+commentContextColumns+`
		FROM comments c
		JOIN users u ON c.user_id = u.id
		JOIN posts p ON c.post_id = p.id
		WHERE ($1 = ''
		   OR c.content ILIKE '%' || $1 || '%'
		   OR u.name ILIKE '%' || $1 || '%'
		   OR p.title ILIKE '%' || $1 || '%')
		ORDER BY c.created_at DESC, c.id ASC
		LIMIT $2 OFFSET $3
	`,
		f.Search,
		limit,
		offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	comments, err := collectComments(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(c.id)
		FROM comments c
		JOIN users u ON c.user_id = u.id
		JOIN posts p ON c.post_id = p.id
		WHERE ($1 = ''
		   OR c.content ILIKE '%' || $1 || '%'
		   OR u.name ILIKE '%' || $1 || '%'
		   OR p.title ILIKE '%' || $1 || '%')
	`,
		f.Search,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

func (s *Store) CommentsByUser(ctx context.Context, userID uuid.UUID) ([]storage.CommentWithContext, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+commentContextColumns+`
		FROM comments c
		JOIN users u ON c.user_id = u.id
		JOIN posts p ON c.post_id = p.id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id ASC
	`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectComments(rows)
}

func collectComments(rows pgx.Rows) ([]storage.CommentWithContext, error) {
	var comments []storage.CommentWithContext
	for rows.Next() {
		var c storage.CommentWithContext
		err := rows.Scan(
			&c.ID,
			&c.Content,
			&c.UserID,
			&c.PostID,
			&c.CreatedAt,
			&c.UserName,
			&c.UserEmail,
			&c.PostTitle,
			&c.PostSlug,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}
