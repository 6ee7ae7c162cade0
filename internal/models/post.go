package models

import "time"

// Like records that a user liked a post. A user appears at most once in
// a post's likes.
type Like struct {
	UserID string `json:"user"`
}

// Comment is a single comment embedded in a post.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is the aggregate: the post record plus its embedded likes and
// comments, treated as one consistency unit. Likes and comments are
// newest-first.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"user"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	Likes     []Like    `json:"likes"`
	Comments  []Comment `json:"comments"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
