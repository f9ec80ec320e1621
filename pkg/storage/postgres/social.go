package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v4"

	"blog/pkg/storage"
)

// ToggleLike performs the check-then-act as an atomic insert against the
// (user_id, post_id) uniqueness constraint: the insert either wins and
// reports "liked", or hits the existing row and the fallback delete
// reports "unliked". A concurrent toggle racing the insert therefore
// converges instead of surfacing a constraint violation.
func (s *Store) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (bool, storage.Like, error) {
	like := storage.Like{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: userID,
		PostID: postID,
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO likes (id, user_id, post_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO NOTHING
		RETURNING created_at
	`,
		like.ID,
		like.UserID,
		like.PostID,
	).Scan(&like.CreatedAt)
	if err == nil {
		return true, like, nil
	}
	if isPgErr(err, pgForeignKeyViolation) {
		return false, storage.Like{}, storage.ErrPostNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, storage.Like{}, err
	}

	// Conflict: the pair already exists, so this toggle is an unlike.
	_, err = s.db.Exec(ctx, `
		DELETE FROM likes WHERE user_id = $1 AND post_id = $2
	`,
		userID,
		postID,
	)
	if err != nil {
		return false, storage.Like{}, err
	}

	return false, storage.Like{}, nil
}

func (s *Store) LikesByUser(ctx context.Context, userID uuid.UUID) ([]storage.LikeWithPost, error) {
	rows, err := s.db.Query(ctx, `
		SELECT l.id, l.user_id, l.post_id, l.created_at,
		       p.title, p.slug, p.image, a.name
		FROM likes l
		JOIN posts p ON l.post_id = p.id
		JOIN users a ON p.author_id = a.id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC
	`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []storage.LikeWithPost
	for rows.Next() {
		var l storage.LikeWithPost
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.PostID,
			&l.CreatedAt,
			&l.PostTitle,
			&l.PostSlug,
			&l.PostImage,
			&l.PostAuthor,
		)
		if err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return likes, nil
}

func (s *Store) AddShare(ctx context.Context, userID, postID uuid.UUID) (storage.Share, error) {
	share := storage.Share{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: userID,
		PostID: postID,
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO shares (id, user_id, post_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO NOTHING
		RETURNING created_at
	`,
		share.ID,
		share.UserID,
		share.PostID,
	).Scan(&share.CreatedAt)
	if err == nil {
		return share, nil
	}
	if isPgErr(err, pgForeignKeyViolation) {
		return storage.Share{}, storage.ErrPostNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return storage.Share{}, err
	}

	// Already shared, return the existing row.
	err = s.db.QueryRow(ctx, `
		SELECT id, user_id, post_id, created_at
		FROM shares
		WHERE user_id = $1 AND post_id = $2
	`,
		userID,
		postID,
	).Scan(&share.ID, &share.UserID, &share.PostID, &share.CreatedAt)
	if err != nil {
		return storage.Share{}, err
	}

	return share, nil
}

func (s *Store) SharesByUser(ctx context.Context, userID uuid.UUID) ([]storage.Share, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, post_id, created_at
		FROM shares
		WHERE user_id = $1
		ORDER BY created_at DESC
	`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []storage.Share
	for rows.Next() {
		var sh storage.Share
		if err := rows.Scan(&sh.ID, &sh.UserID, &sh.PostID, &sh.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shares, nil
}
