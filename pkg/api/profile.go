package api

import (
	"net/http"
	"sort"
)

const profileFeedCap = 10

// profileHandler assembles the caller's own page: account details,
// their posts, and a short feed of what they did recently.
func (api *API) profileHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if s == nil {
		api.writeError(w, errUnauthorized, "profileHandler", reqID)
		return
	}

	user, err := api.db.UserByID(r.Context(), s.UserID)
	if err != nil {
		api.writeError(w, err, "profileHandler", reqID)
		return
	}

	posts, err := api.db.PostsByAuthor(r.Context(), s.UserID)
	if err != nil {
		api.writeError(w, err, "profileHandler", reqID)
		return
	}

	likes, err := api.db.LikesByUser(r.Context(), s.UserID)
	if err != nil {
		api.writeError(w, err, "profileHandler", reqID)
		return
	}

	comments, err := api.db.CommentsByUser(r.Context(), s.UserID)
	if err != nil {
		api.writeError(w, err, "profileHandler", reqID)
		return
	}

	shares, err := api.db.SharesByUser(r.Context(), s.UserID)
	if err != nil {
		api.writeError(w, err, "profileHandler", reqID)
		return
	}

	feed := make([]activityEntry, 0, profileFeedCap)
	for i, p := range posts {
		if i == 5 {
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
			ID:     p.ID,
			Date:   p.CreatedAt,
		})
	}
	for i, l := range likes {
		if i == 3 {
			break
		}
		feed = append(feed, activityEntry{
			Type:   "like",
			Action: "liked " + l.PostTitle,
			Title:  l.PostTitle,
			Slug:   l.PostSlug,
			ID:     l.ID,
			Date:   l.CreatedAt,
		})
	}
	for i, c := range comments {
		if i == 2 {
			break
		}
		feed = append(feed, activityEntry{
			Type:   "comment",
			Action: "commented on " + c.PostTitle,
			Title:  c.Content,
			Slug:   c.PostSlug,
			ID:     c.ID,
			Date:   c.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})
	if len(feed) > profileFeedCap {
		feed = feed[:profileFeedCap]
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Status: "success",
		User:   user,
		Stats: profileStats{
			Posts:    len(posts),
			Likes:    len(likes),
			Comments: len(comments),
			Shares:   len(shares),
		},
		Posts:          posts,
		RecentActivity: feed,
	})
}
