package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

var (
	ErrDBNotResponding = errors.New("database is not responding")
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// Role governs which mutating operations a session may perform.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWriter Role = "writer"
	RoleUser   Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWriter, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserCounts struct {
	Posts    int `json:"posts"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

type UserWithCounts struct {
	User
	Counts UserCounts `json:"counts"`
}

type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Published   bool      `json:"published"`
	AuthorID    uuid.UUID `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostPatch carries a partial update. Nil fields keep their current value.
type PostPatch struct {
	Title       *string
	Description *string
	Content     *string
	Tags        *[]string
	Image       *string
	Category    *string
	Published   *bool
}

type Author struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type PostWithEngagement struct {
	Post
	Author       Author `json:"author"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
	ShareCount   int    `json:"share_count"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	UserID    uuid.UUID `json:"user_id"`
	PostID    uuid.UUID `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentWithContext joins the commenter and the target post, for
// moderation listings and activity feeds.
type CommentWithContext struct {
	Comment
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	PostTitle string `json:"post_title"`
	PostSlug  string `json:"post_slug"`
}

type Like struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PostID    uuid.UUID `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Share struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PostID    uuid.UUID `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type LikeWithPost struct {
	Like
	PostTitle  string `json:"post_title"`
	PostSlug   string `json:"post_slug"`
	PostImage  string `json:"post_image,omitempty"`
	PostAuthor string `json:"post_author"`
}

type UserFilter struct {
	Search string
	Role   Role
	Page   int
	Limit  int
}

type CommentFilter struct {
	Search string
	Page   int
	Limit  int
}

// Storage is the persistence contract shared by the postgres and memdb
// implementations. All coordination between concurrent requests is
// delegated to the store's constraints: email and slug uniqueness, the
// (user_id, post_id) uniqueness of likes and shares, and cascade rules
// from users and posts to their dependent rows.
type Storage interface {
	// CreateUser inserts a new user. Returns ErrEmailTaken when the
	// email is already registered.
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id uuid.UUID) (User, error)
	// Users returns one page of users matching the filter, ordered by
	// name ascending, together with the total number of matches.
	Users(ctx context.Context, f UserFilter) ([]UserWithCounts, int, error)
	// AllUsers returns the complete roster ordered by name ascending.
	AllUsers(ctx context.Context) ([]UserWithCounts, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role Role) (UserWithCounts, error)
	// DeleteUser removes the user and cascades to their posts, likes,
	// comments and shares.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// CreatePost inserts a post. p.Slug is treated as the preferred
	// slug; when it is already taken the store appends a numeric
	// suffix until the slug is unique.
	CreatePost(ctx context.Context, p Post) (Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, patch PostPatch) (Post, error)
	// DeletePost removes the post and cascades to its likes, comments
	// and shares.
	DeletePost(ctx context.Context, id uuid.UUID) error
	PostByID(ctx context.Context, id uuid.UUID) (Post, error)
	PostBySlug(ctx context.Context, slug string) (PostWithEngagement, error)
	// PublishedPosts returns published posts only, newest first,
	// capped at limit.
	PublishedPosts(ctx context.Context, limit int) ([]PostWithEngagement, error)
	// AllPosts returns every post regardless of publish state, newest
	// first, with author and engagement counts.
	AllPosts(ctx context.Context) ([]PostWithEngagement, error)
	PostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]PostWithEngagement, error)

	CreateComment(ctx context.Context, c Comment) (Comment, error)
	UpdateComment(ctx context.Context, id uuid.UUID, content string) (Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	CommentByID(ctx context.Context, id uuid.UUID) (Comment, error)
	CommentsByPost(ctx context.Context, postID uuid.UUID) ([]CommentWithContext, error)
	// Comments returns one page of comments matching the filter
	// (case-insensitive substring search across comment content,
	// commenter name and post title), newest first, together with the
	// total number of matches.
	Comments(ctx context.Context, f CommentFilter) ([]CommentWithContext, int, error)
	CommentsByUser(ctx context.Context, userID uuid.UUID) ([]CommentWithContext, error)

	// ToggleLike flips the like state for (userID, postID). The check
	// and the write are guarded by the store's uniqueness constraint:
	// two concurrent toggles never produce two rows for the same pair.
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) (liked bool, like Like, err error)
	LikesByUser(ctx context.Context, userID uuid.UUID) ([]LikeWithPost, error)
	// AddShare records a share once per (userID, postID); repeated
	// calls return the existing row.
	AddShare(ctx context.Context, userID, postID uuid.UUID) (Share, error)
	SharesByUser(ctx context.Context, userID uuid.UUID) ([]Share, error)
}
