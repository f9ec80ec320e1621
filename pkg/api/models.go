package api

import (
	"time"

	"github.com/gofrs/uuid"

	"blog/pkg/draft"
	"blog/pkg/generate"
	"blog/pkg/storage"
)

// LogEntry is the record the logging middleware ships to Kafka for
// every handled request.
type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	BytesOut   int       `json:"bytes_out"`
	Duration   float64   `json:"duration_sec"`
	Service    string    `json:"service"`
}

// pagination describes the slice of a collection a list endpoint
// returned.
type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func paginationFor(page, limit, total int) pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Request bodies.

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createPostRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Published   bool     `json:"published"`
}

type updatePostRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Tags        *[]string `json:"tags"`
	Image       *string   `json:"image"`
	Category    *string   `json:"category"`
	Published   *bool     `json:"published"`
}

type createCommentRequest struct {
	PostID  uuid.UUID `json:"postId"`
	Content string    `json:"content"`
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

type postIDRequest struct {
	PostID uuid.UUID `json:"postId"`
}

type updateRoleRequest struct {
	ID   uuid.UUID    `json:"id"`
	Role storage.Role `json:"role"`
}

type generateRequest struct {
	Topic string `json:"topic"`
}

// Response envelopes. Every success body carries status "success";
// failures go through errorEnvelope.

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type authResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    storage.User `json:"user"`
}

type postResponse struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message,omitempty"`
	Post    storage.PostWithEngagement `json:"post"`
}

type postsResponse struct {
	Status string                       `json:"status"`
	Posts  []storage.PostWithEngagement `json:"posts"`
}

type postDetailResponse struct {
	Status   string                       `json:"status"`
	Post     storage.PostWithEngagement   `json:"post"`
	Comments []storage.CommentWithContext `json:"comments"`
}

type commentResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Comment storage.Comment `json:"comment"`
}

type commentsResponse struct {
	Status   string                       `json:"status"`
	Comments []storage.CommentWithContext `json:"comments"`
}

type moderationResponse struct {
	Status     string                       `json:"status"`
	Comments   []storage.CommentWithContext `json:"comments"`
	Pagination pagination                   `json:"pagination"`
}

type likeResponse struct {
	Status string `json:"status"`
	Liked  bool   `json:"liked"`
}

type shareResponse struct {
	Status string        `json:"status"`
	Share  storage.Share `json:"share"`
}

type usersResponse struct {
	Status     string                   `json:"status"`
	Users      []storage.UserWithCounts `json:"users"`
	Pagination pagination               `json:"pagination"`
}

type userResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	User    storage.User `json:"user"`
}

type draftResponse struct {
	Status string       `json:"status"`
	Exists bool         `json:"exists"`
	Draft  *draft.Entry `json:"draft"`
}

type generateResponse struct {
	Status string         `json:"status"`
	Draft  generate.Draft `json:"draft"`
}

type uploadResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

type profileResponse struct {
	Status         string                       `json:"status"`
	User           storage.User                 `json:"user"`
	Stats          profileStats                 `json:"stats"`
	Posts          []storage.PostWithEngagement `json:"posts"`
	RecentActivity []activityEntry              `json:"recentActivity"`
}

type profileStats struct {
	Posts    int `json:"posts"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

type overviewResponse struct {
	Status         string                       `json:"status"`
	Stats          overviewStats                `json:"stats"`
	RecentActivity []activityEntry              `json:"recentActivity"`
	TopPosts       []topPost                    `json:"topPosts"`
	RecentComments []storage.CommentWithContext `json:"recentComments"`
	Users          []storage.UserWithCounts     `json:"users,omitempty"`
}

type overviewStats struct {
	TotalPosts     int `json:"totalPosts"`
	PublishedPosts int `json:"publishedPosts"`
	DraftPosts     int `json:"draftPosts"`
	TotalComments  int `json:"totalComments"`
	TotalLikes     int `json:"totalLikes"`
	TotalShares    int `json:"totalShares"`
	TotalUsers     int `json:"totalUsers"`
	Admins         int `json:"admins"`
	Writers        int `json:"writers"`
	Readers        int `json:"readers"`
}

// activityEntry is one row of the merged recent-activity feed: a post
// publication, a comment or a like, newest first.
type activityEntry struct {
	Type   string    `json:"type"`
	Action string    `json:"action"`
	Title  string    `json:"title"`
	Slug   string    `json:"slug,omitempty"`
	Author string    `json:"author,omitempty"`
	ID     uuid.UUID `json:"id"`
	Date   time.Time `json:"date"`
}

type topPost struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Author    string    `json:"author"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
}
