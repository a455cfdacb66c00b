package model

import "time"

// Blog post types. News and blog posts share one table and are filtered
// by type in list queries.
const (
	BlogTypePost = "blog"
	BlogTypeNews = "news"
)

// Blog is an admin-authored post. Content may contain HTML produced by
// the admin editor; it is stored verbatim.
type Blog struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt,omitempty"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
