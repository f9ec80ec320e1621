package api

import (
	"net/http"
	"sort"

	"blog/pkg/storage"
)

const (
	activityFeedCap = 20
	topPostsCap     = 5
)

// overviewHandler aggregates everything the dashboard landing page
// shows: totals, a merged recent-activity feed, the most-liked posts
// and the latest comments. Admins additionally get the user roster.
func (api *API) overviewHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "overviewHandler", reqID)
		return
	}

	posts, err := api.db.AllPosts(r.Context())
	if err != nil {
		api.writeError(w, err, "overviewHandler", reqID)
		return
	}

	users, err := api.db.AllUsers(r.Context())
	if err != nil {
		api.writeError(w, err, "overviewHandler", reqID)
		return
	}

	recentComments, totalComments, err := api.db.Comments(r.Context(), storage.CommentFilter{Page: 1, Limit: 10})
	if err != nil {
		api.writeError(w, err, "overviewHandler", reqID)
		return
	}
	if recentComments == nil {
		recentComments = []storage.CommentWithContext{}
	}

	stats := overviewStats{
		TotalPosts:    len(posts),
		TotalComments: totalComments,
		TotalUsers:    len(users),
	}
	for _, p := range posts {
		if p.Published {
			stats.PublishedPosts++
		} else {
			stats.DraftPosts++
		}
		stats.TotalLikes += p.LikeCount
		stats.TotalShares += p.ShareCount
	}
	for _, u := range users {
		switch u.Role {
		case storage.RoleAdmin:
			stats.Admins++
		case storage.RoleWriter:
			stats.Writers++
		default:
			stats.Readers++
		}
	}

	resp := overviewResponse{
		Status:         "success",
		Stats:          stats,
		RecentActivity: activityFeed(posts, recentComments),
		TopPosts:       topPosts(posts),
		RecentComments: recentComments,
	}
	if s.Role == storage.RoleAdmin {
		resp.Users = users
	}

	writeJSON(w, http.StatusOK, resp)
}

// activityFeed merges the newest posts and comments into one stream,
// newest first, capped to keep the dashboard digestible.
func activityFeed(posts []storage.PostWithEngagement, comments []storage.CommentWithContext) []activityEntry {
	feed := make([]activityEntry, 0, activityFeedCap)

	// AllPosts is already newest first.
	for i, p := range posts {
		if i == 10 {
			break
		}
		action := "drafted a post"
		if p.Published {
			action = "published a post"
		}
		feed = append(feed, activityEntry{
			Type:   "post",
			Action: action,
			Title:  p.Title,
			Slug:   p.Slug,
			Author: p.Author.Name,
			ID:     p.ID,
			Date:   p.CreatedAt,
		})
	}

	for _, c := range comments {
		feed = append(feed, activityEntry{
			Type:   "comment",
			Action: "commented on " + c.PostTitle,
			Title:  c.Content,
			Slug:   c.PostSlug,
			Author: c.UserName,
			ID:     c.ID,
			Date:   c.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})

	if len(feed) > activityFeedCap {
		feed = feed[:activityFeedCap]
	}

	return feed
}

// topPosts picks the most-liked posts; ties resolve by post ID so the
// ranking is stable across refreshes.
func topPosts(posts []storage.PostWithEngagement) []topPost {
	ranked := make([]storage.PostWithEngagement, len(posts))
	copy(ranked, posts)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].LikeCount != ranked[j].LikeCount {
			return ranked[i].LikeCount > ranked[j].LikeCount
		}
		return ranked[i].ID.String() < ranked[j].ID.String()
	})

	if len(ranked) > topPostsCap {
		ranked = ranked[:topPostsCap]
	}

	top := make([]topPost, 0, len(ranked))
	for _, p := range ranked {
		top = append(top, topPost{
			ID:        p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Author:    p.Author.Name,
			Likes:     p.LikeCount,
			Comments:  p.CommentCount,
			Shares:    p.ShareCount,
			Published: p.Published,
			CreatedAt: p.CreatedAt,
		})
	}

	return top
}
