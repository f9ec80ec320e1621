// Package memdb provides an in-memory Storage implementation used in
// development mode and in tests. It mirrors the constraint behavior of
// the postgres store: unique emails, unique slugs, one like/share per
// (user, post) pair, and cascade deletes.
package memdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"blog/pkg/storage"
)

type pair struct {
	user uuid.UUID
	post uuid.UUID
}

type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]storage.User
	posts    map[uuid.UUID]storage.Post
	comments map[uuid.UUID]storage.Comment
	likes    map[pair]storage.Like
	shares   map[pair]storage.Share
	slugs    map[string]uuid.UUID
	emails   map[string]uuid.UUID
}

func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]storage.User),
		posts:    make(map[uuid.UUID]storage.Post),
		comments: make(map[uuid.UUID]storage.Comment),
		likes:    make(map[pair]storage.Like),
		shares:   make(map[pair]storage.Share),
		slugs:    make(map[string]uuid.UUID),
		emails:   make(map[string]uuid.UUID),
	}
}

func now(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func (db *Store) CreateUser(ctx context.Context, u storage.User) (storage.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, taken := db.emails[email]; taken {
		return storage.User{}, storage.ErrEmailTaken
	}

	u.ID = uuid.Must(uuid.NewV4())
	u.Email = email
	if !u.Role.Valid() {
		u.Role = storage.RoleUser
	}
	u.CreatedAt = now(u.CreatedAt)

	db.users[u.ID] = u
	db.emails[email] = u.ID

	return u, nil
}

func (db *Store) UserByEmail(ctx context.Context, email string) (storage.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id, ok := db.emails[strings.ToLower(email)]
	if !ok {
		return storage.User{}, storage.ErrUserNotFound
	}

	return db.users[id], nil
}

func (db *Store) UserByID(ctx context.Context, id uuid.UUID) (storage.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return storage.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (db *Store) Users(ctx context.Context, f storage.UserFilter) ([]storage.UserWithCounts, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	search := strings.ToLower(f.Search)
	var matched []storage.UserWithCounts
	for _, u := range db.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(u.Email, search) {
			continue
		}
		matched = append(matched, storage.UserWithCounts{User: u, Counts: db.userCountsLocked(u.ID)})
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].Email < matched[j].Email
	})

	total := len(matched)
	pageItems := paginate(matched, f.Page, f.Limit)

	return pageItems, total, nil
}

func (db *Store) AllUsers(ctx context.Context) ([]storage.UserWithCounts, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	users := make([]storage.UserWithCounts, 0, len(db.users))
	for _, u := range db.users {
		users = append(users, storage.UserWithCounts{User: u, Counts: db.userCountsLocked(u.ID)})
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].Email < users[j].Email
	})

	return users, nil
}

func (db *Store) UpdateUserRole(ctx context.Context, id uuid.UUID, role storage.Role) (storage.UserWithCounts, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return storage.UserWithCounts{}, storage.ErrUserNotFound
	}

	u.Role = role
	db.users[id] = u

	return storage.UserWithCounts{User: u, Counts: db.userCountsLocked(id)}, nil
}

func (db *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}

	for postID, p := range db.posts {
		if p.AuthorID == id {
			db.deletePostLocked(postID)
		}
	}
	for cid, c := range db.comments {
		if c.UserID == id {
			delete(db.comments, cid)
		}
	}
	for k := range db.likes {
		if k.user == id {
			delete(db.likes, k)
		}
	}
	for k := range db.shares {
		if k.user == id {
			delete(db.shares, k)
		}
	}

	delete(db.emails, u.Email)
	delete(db.users, id)

	return nil
}

func (db *Store) CreatePost(ctx context.Context, p storage.Post) (storage.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[p.AuthorID]; !ok {
		return storage.Post{}, storage.ErrUserNotFound
	}

	slug := p.Slug
	for i := 2; ; i++ {
		if _, taken := db.slugs[slug]; !taken {
			break
		}
		slug = fmt.Sprintf("%s-%d", p.Slug, i)
	}
	p.Slug = slug

	p.ID = uuid.Must(uuid.NewV4())
	p.CreatedAt = now(p.CreatedAt)
	p.UpdatedAt = p.CreatedAt

	db.posts[p.ID] = p
	db.slugs[p.Slug] = p.ID

	return p, nil
}

func (db *Store) UpdatePost(ctx context.Context, id uuid.UUID, patch storage.PostPatch) (storage.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.posts[id]
	if !ok {
		return storage.Post{}, storage.ErrPostNotFound
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Published != nil {
		p.Published = *patch.Published
	}
	p.UpdatedAt = time.Now().UTC()

	db.posts[id] = p

	return p, nil
}

func (db *Store) DeletePost(ctx context.Context, id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[id]; !ok {
		return storage.ErrPostNotFound
	}
	db.deletePostLocked(id)

	return nil
}

func (db *Store) deletePostLocked(id uuid.UUID) {
	p := db.posts[id]
	delete(db.slugs, p.Slug)
	delete(db.posts, id)

	for cid, c := range db.comments {
		if c.PostID == id {
			delete(db.comments, cid)
		}
	}
	for k := range db.likes {
		if k.post == id {
			delete(db.likes, k)
		}
	}
	for k := range db.shares {
		if k.post == id {
			delete(db.shares, k)
		}
	}
}

func (db *Store) PostByID(ctx context.Context, id uuid.UUID) (storage.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.posts[id]
	if !ok {
		return storage.Post{}, storage.ErrPostNotFound
	}

	return p, nil
}

func (db *Store) PostBySlug(ctx context.Context, slug string) (storage.PostWithEngagement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id, ok := db.slugs[slug]
	if !ok {
		return storage.PostWithEngagement{}, storage.ErrPostNotFound
	}

	return db.withEngagementLocked(db.posts[id]), nil
}

func (db *Store) PublishedPosts(ctx context.Context, limit int) ([]storage.PostWithEngagement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var posts []storage.PostWithEngagement
	for _, p := range db.posts {
		if p.Published {
			posts = append(posts, db.withEngagementLocked(p))
		}
	}
	sortNewestFirst(posts)

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	return posts, nil
}

func (db *Store) AllPosts(ctx context.Context) ([]storage.PostWithEngagement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	posts := make([]storage.PostWithEngagement, 0, len(db.posts))
	for _, p := range db.posts {
		posts = append(posts, db.withEngagementLocked(p))
	}
	sortNewestFirst(posts)

	return posts, nil
}

func (db *Store) PostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]storage.PostWithEngagement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var posts []storage.PostWithEngagement
	for _, p := range db.posts {
		if p.AuthorID == authorID {
			posts = append(posts, db.withEngagementLocked(p))
		}
	}
	sortNewestFirst(posts)

	return posts, nil
}

func (db *Store) CreateComment(ctx context.Context, c storage.Comment) (storage.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[c.PostID]; !ok {
		return storage.Comment{}, storage.ErrPostNotFound
	}
	if _, ok := db.users[c.UserID]; !ok {
		return storage.Comment{}, storage.ErrUserNotFound
	}

	c.ID = uuid.Must(uuid.NewV4())
	c.CreatedAt = now(c.CreatedAt)
	db.comments[c.ID] = c

	return c, nil
}

func (db *Store) UpdateComment(ctx context.Context, id uuid.UUID, content string) (storage.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.comments[id]
	if !ok {
		return storage.Comment{}, storage.ErrCommentNotFound
	}

	c.Content = content
	db.comments[id] = c

	return c, nil
}

func (db *Store) DeleteComment(ctx context.Context, id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.comments[id]; !ok {
		return storage.ErrCommentNotFound
	}
	delete(db.comments, id)

	return nil
}

func (db *Store) CommentByID(ctx context.Context, id uuid.UUID) (storage.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	c, ok := db.comments[id]
	if !ok {
		return storage.Comment{}, storage.ErrCommentNotFound
	}

	return c, nil
}

func (db *Store) CommentsByPost(ctx context.Context, postID uuid.UUID) ([]storage.CommentWithContext, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var comments []storage.CommentWithContext
	for _, c := range db.comments {
		if c.PostID == postID {
			comments = append(comments, db.commentContextLocked(c))
		}
	}
	sortCommentsNewestFirst(comments)

	return comments, nil
}

func (db *Store) Comments(ctx context.Context, f storage.CommentFilter) ([]storage.CommentWithContext, int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	search := strings.ToLower(f.Search)
	var matched []storage.CommentWithContext
	for _, c := range db.comments {
		cc := db.commentContextLocked(c)
		if search != "" &&
			!strings.Contains(strings.ToLower(cc.Content), search) &&
			!strings.Contains(strings.ToLower(cc.UserName), search) &&
			!strings.Contains(strings.ToLower(cc.PostTitle), search) {
			continue
		}
		matched = append(matched, cc)
	}
	sortCommentsNewestFirst(matched)

	total := len(matched)
	pageItems := paginate(matched, f.Page, f.Limit)

	return pageItems, total, nil
}

func (db *Store) CommentsByUser(ctx context.Context, userID uuid.UUID) ([]storage.CommentWithContext, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var comments []storage.CommentWithContext
	for _, c := range db.comments {
		if c.UserID == userID {
			comments = append(comments, db.commentContextLocked(c))
		}
	}
	sortCommentsNewestFirst(comments)

	return comments, nil
}

func (db *Store) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (bool, storage.Like, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[postID]; !ok {
		return false, storage.Like{}, storage.ErrPostNotFound
	}
	if _, ok := db.users[userID]; !ok {
		return false, storage.Like{}, storage.ErrUserNotFound
	}

	key := pair{user: userID, post: postID}
	if _, liked := db.likes[key]; liked {
		delete(db.likes, key)
		return false, storage.Like{}, nil
	}

	like := storage.Like{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	db.likes[key] = like

	return true, like, nil
}

func (db *Store) LikesByUser(ctx context.Context, userID uuid.UUID) ([]storage.LikeWithPost, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var likes []storage.LikeWithPost
	for _, l := range db.likes {
		if l.UserID != userID {
			continue
		}
		p := db.posts[l.PostID]
		likes = append(likes, storage.LikeWithPost{
			Like:       l,
			PostTitle:  p.Title,
			PostSlug:   p.Slug,
			PostImage:  p.Image,
			PostAuthor: db.users[p.AuthorID].Name,
		})
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })

	return likes, nil
}

func (db *Store) AddShare(ctx context.Context, userID, postID uuid.UUID) (storage.Share, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[postID]; !ok {
		return storage.Share{}, storage.ErrPostNotFound
	}
	if _, ok := db.users[userID]; !ok {
		return storage.Share{}, storage.ErrUserNotFound
	}

	key := pair{user: userID, post: postID}
	if s, ok := db.shares[key]; ok {
		return s, nil
	}

	share := storage.Share{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	db.shares[key] = share

	return share, nil
}

func (db *Store) SharesByUser(ctx context.Context, userID uuid.UUID) ([]storage.Share, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var shares []storage.Share
	for _, s := range db.shares {
		if s.UserID == userID {
			shares = append(shares, s)
		}
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].CreatedAt.After(shares[j].CreatedAt) })

	return shares, nil
}

func (db *Store) withEngagementLocked(p storage.Post) storage.PostWithEngagement {
	pe := storage.PostWithEngagement{Post: p}
	if author, ok := db.users[p.AuthorID]; ok {
		pe.Author = storage.Author{ID: author.ID, Name: author.Name, Email: author.Email}
	}
	for _, c := range db.comments {
		if c.PostID == p.ID {
			pe.CommentCount++
		}
	}
	for k := range db.likes {
		if k.post == p.ID {
			pe.LikeCount++
		}
	}
	for k := range db.shares {
		if k.post == p.ID {
			pe.ShareCount++
		}
	}

	return pe
}

func (db *Store) commentContextLocked(c storage.Comment) storage.CommentWithContext {
	cc := storage.CommentWithContext{Comment: c}
	if u, ok := db.users[c.UserID]; ok {
		cc.UserName = u.Name
		cc.UserEmail = u.Email
	}
	if p, ok := db.posts[c.PostID]; ok {
		cc.PostTitle = p.Title
		cc.PostSlug = p.Slug
	}

	return cc
}

func (db *Store) userCountsLocked(id uuid.UUID) storage.UserCounts {
	var counts storage.UserCounts
	for _, p := range db.posts {
		if p.AuthorID == id {
			counts.Posts++
		}
	}
	for _, c := range db.comments {
		if c.UserID == id {
			counts.Comments++
		}
	}
	for k := range db.likes {
		if k.user == id {
			counts.Likes++
		}
	}
	for k := range db.shares {
		if k.user == id {
			counts.Shares++
		}
	}

	return counts
}

func sortNewestFirst(posts []storage.PostWithEngagement) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID.String() < posts[j].ID.String()
	})
}

func sortCommentsNewestFirst(comments []storage.CommentWithContext) {
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID.String() < comments[j].ID.String()
	})
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}
