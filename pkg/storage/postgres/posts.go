package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v4"

	"blog/pkg/storage"
)

// Candidate slugs tried before giving up on a pathological title.
const maxSlugAttempts = 50

const postEngagementColumns = `
	p.id, p.title, p.slug, p.description, p.content, p.tags, p.image,
	p.category, p.published, p.author_id, p.created_at, p.updated_at,
	u.id, u.name, u.email,
	COALESCE((SELECT COUNT(*) FROM likes WHERE post_id = p.id), 0),
	COALESCE((SELECT COUNT(*) FROM comments WHERE post_id = p.id), 0),
	COALESCE((SELECT COUNT(*) FROM shares WHERE post_id = p.id), 0)`

func (s *Store) CreatePost(ctx context.Context, p storage.Post) (storage.Post, error) {
	p.ID = uuid.Must(uuid.NewV4())
	if p.Tags == nil {
		p.Tags = []string{}
	}

	base := p.Slug
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		err := s.db.QueryRow(ctx, `
			INSERT INTO posts (id, title, slug, description, content, tags, image, category, published, author_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING slug, created_at, updated_at
		`,
			p.ID,
			p.Title,
			candidate,
			p.Description,
			p.Content,
			p.Tags,
			p.Image,
			p.Category,
			p.Published,
			p.AuthorID,
		).Scan(&p.Slug, &p.CreatedAt, &p.UpdatedAt)
		if err == nil {
			return p, nil
		}
		if isPgErr(err, pgUniqueViolation) {
			// Slug taken, retry with the next suffix. The constraint,
			// not a prior read, decides the winner under concurrency.
			continue
		}
		if isPgErr(err, pgForeignKeyViolation) {
			return storage.Post{}, storage.ErrUserNotFound
		}
		return storage.Post{}, err
	}

	return storage.Post{}, fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}

func (s *Store) UpdatePost(ctx context.Context, id uuid.UUID, patch storage.PostPatch) (storage.Post, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	i := 2

	add := func(col string, val interface{}) {
		setClauses = append(setClauses, col+" = $"+strconv.Itoa(i))
		args = append(args, val)
		i++
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Tags != nil {
		add("tags", *patch.Tags)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Published != nil {
		add("published", *patch.Published)
	}

	var p storage.Post
	err := s.db.QueryRow(ctx, `
		UPDATE posts SET `+strings.Join(setClauses, ", ")+`
		WHERE id = $1
		RETURNING id, title, slug, description, content, tags, image, category,
		          published, author_id, created_at, updated_at
	`,
		args...,
	).Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.Content,
		&p.Tags,
		&p.Image,
		&p.Category,
		&p.Published,
		&p.AuthorID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Post{}, storage.ErrPostNotFound
	}
	if err != nil {
		return storage.Post{}, err
	}

	return p, nil
}

func (s *Store) DeletePost(ctx context.Context, id uuid.UUID) error {
	var deleted uuid.UUID
	err := s.db.QueryRow(ctx, `
		DELETE FROM posts WHERE id = $1 RETURNING id
	`,
		id,
	).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrPostNotFound
	}

	return err
}

func (s *Store) PostByID(ctx context.Context, id uuid.UUID) (post storage.Post, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT id, title, slug, description, content, tags, image, category,
		       published, author_id, created_at, updated_at
		FROM posts
		WHERE id = $1
	`,
		id,
	).Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Description,
		&post.Content,
		&post.Tags,
		&post.Image,
		&post.Category,
		&post.Published,
		&post.AuthorID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		err = storage.ErrPostNotFound
	}

	return
}

func (s *Store) PostBySlug(ctx context.Context, slug string) (storage.PostWithEngagement, error) {
	row := s.db.QueryRow(ctx, `
		SELECT`+postEngagementColumns+`
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.slug = $1
	`,
		slug,
	)

	p, err := scanPostWithEngagement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.PostWithEngagement{}, storage.ErrPostNotFound
	}

	return p, err
}

func (s *Store) PublishedPosts(ctx context.Context, limit int) ([]storage.PostWithEngagement, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(ctx, `
		SELECT`+postEngagementColumns+`
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.published = TRUE
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $1
	`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (s *Store) AllPosts(ctx context.Context) ([]storage.PostWithEngagement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+postEngagementColumns+`
		FROM posts p
		JOIN users u ON p.author_id = u.id
		ORDER BY p.created_at DESC, p.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (s *Store) PostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]storage.PostWithEngagement, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+postEngagementColumns+`
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id ASC
	`,
		authorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func scanPostWithEngagement(row pgx.Row) (p storage.PostWithEngagement, err error) {
	err = row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.Content,
		&p.Tags,
		&p.Image,
		&p.Category,
		&p.Published,
		&p.AuthorID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Author.ID,
		&p.Author.Name,
		&p.Author.Email,
		&p.LikeCount,
		&p.CommentCount,
		&p.ShareCount,
	)

	return
}

func collectPosts(rows pgx.Rows) ([]storage.PostWithEngagement, error) {
	var posts []storage.PostWithEngagement
	for rows.Next() {
		p, err := scanPostWithEngagement(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
