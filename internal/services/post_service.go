package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wavefeed/wavefeed-be/internal/models"
	"github.com/wavefeed/wavefeed-be/internal/websocket"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	CreatePost(callerID, text, image string) (models.Post, error)
	EditPost(callerID, postID, text, image string) (models.Post, error)
	DeletePost(callerID, postID string) error
	LikePost(callerID, postID string) ([]models.Like, error)
	UnlikePost(callerID, postID string) ([]models.Like, error)
	AddComment(callerID, postID, text string) ([]models.Comment, error)
	DeleteComment(callerID, postID, commentID string) ([]models.Comment, error)
	GetPost(postID string) (models.Post, error)
	GetAllPosts() ([]models.Post, error)
}

// PostService owns the post aggregate: the post record plus its
// embedded likes and comments. Every mutation re-reads the persisted
// state, applies the change to a local copy, and writes it back with a
// single update conditional on the row version. There is no in-process
// cache and no retry; a stale write is terminal for the request.
type PostService struct {
	db       *sql.DB
	activity ActivityServiceProvider
	hub      *websocket.Hub
}

// NewPostService creates a new PostService. hub may be nil when feed
// updates are not wanted (tests).
func NewPostService(db *sql.DB, activity ActivityServiceProvider, hub *websocket.Hub) *PostService {
	return &PostService{db: db, activity: activity, hub: hub}
}

// CreatePost persists a new post owned by the caller. At least one of
// text/image must be present.
func (s *PostService) CreatePost(callerID, text, image string) (models.Post, error) {
	if text == "" && image == "" {
		return models.Post{}, ErrEmptyPost
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:        uuid.New().String(),
		AuthorID:  callerID,
		Text:      text,
		Image:     image,
		Likes:     []models.Like{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.Exec(
		"INSERT INTO posts(id, author_id, text, image, likes_json, comments_json, version, created_at, updated_at) VALUES(?, ?, ?, ?, '[]', '[]', 0, ?, ?)",
		post.ID, post.AuthorID, post.Text, post.Image, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}

	s.record("post.created", post.ID, "Post created")
	s.publish("post.created", post.ID, post)
	return post, nil
}

// EditPost replaces only the supplied fields of the caller's own post
// and bumps updatedAt. Likes and comments are untouched.
func (s *PostService) EditPost(callerID, postID, text, image string) (models.Post, error) {
	if text == "" && image == "" {
		return models.Post{}, ErrEmptyPost
	}

	post, err := s.GetPost(postID)
	if err != nil {
		return models.Post{}, err
	}
	if post.AuthorID != callerID {
		return models.Post{}, ErrForbidden
	}

	if text != "" {
		post.Text = text
	}
	if image != "" {
		post.Image = image
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.writePost(post, true); err != nil {
		return models.Post{}, err
	}

	s.record("post.edited", post.ID, "Post edited")
	s.publish("post.edited", post.ID, post)
	return post, nil
}

// DeletePost removes a post, its likes and comments included. Allowed
// for the author, or for a moderator who is not the author.
func (s *PostService) DeletePost(callerID, postID string) error {
	post, err := s.GetPost(postID)
	if err != nil {
		return err
	}

	caller, err := s.callerRole(callerID)
	if err != nil {
		return err
	}
	if !canDeletePost(callerID, caller, post) {
		return ErrForbidden
	}

	if _, err := s.db.Exec("DELETE FROM posts WHERE id = ?", postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	s.record("post.deleted", postID, "Post deleted")
	s.publish("post.deleted", postID, map[string]string{"id": postID})
	return nil
}

// LikePost adds the caller's like at the front of the likes sequence.
// A second like by the same user is a client error, not a no-op.
func (s *PostService) LikePost(callerID, postID string) ([]models.Like, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}

	for _, like := range post.Likes {
		if like.UserID == callerID {
			return nil, ErrAlreadyLiked
		}
	}

	post.Likes = append([]models.Like{{UserID: callerID}}, post.Likes...)
	if err := s.writePost(post, false); err != nil {
		return nil, err
	}

	s.record("post.liked", post.ID, "Post liked")
	s.publish("post.liked", post.ID, post.Likes)
	return post.Likes, nil
}

// UnlikePost removes the caller's like, preserving the order of the
// remaining likes.
func (s *PostService) UnlikePost(callerID, postID string) ([]models.Like, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}

	kept := make([]models.Like, 0, len(post.Likes))
	for _, like := range post.Likes {
		if like.UserID != callerID {
			kept = append(kept, like)
		}
	}
	if len(kept) == len(post.Likes) {
		return nil, ErrNotLiked
	}

	post.Likes = kept
	if err := s.writePost(post, false); err != nil {
		return nil, err
	}

	s.record("post.unliked", post.ID, "Post unliked")
	s.publish("post.unliked", post.ID, post.Likes)
	return post.Likes, nil
}

// AddComment inserts a new comment at the front of the comments
// sequence.
func (s *PostService) AddComment(callerID, postID, text string) ([]models.Comment, error) {
	if text == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.New().String(),
		AuthorID:  callerID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)

	if err := s.writePost(post, false); err != nil {
		return nil, err
	}

	s.record("post.commented", post.ID, "Comment added")
	s.publish("post.commented", post.ID, post.Comments)
	return post.Comments, nil
}

// DeleteComment removes a comment by id. Allowed for the comment's
// author or the post's author.
func (s *PostService) DeleteComment(callerID, postID, commentID string) ([]models.Comment, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}

	var target *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			target = &post.Comments[i]
			break
		}
	}
	if target == nil {
		return nil, ErrCommentNotFound
	}
	if !canDeleteComment(callerID, *target, post) {
		return nil, ErrForbidden
	}

	kept := make([]models.Comment, 0, len(post.Comments)-1)
	for _, c := range post.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	post.Comments = kept

	if err := s.writePost(post, false); err != nil {
		return nil, err
	}

	s.record("post.uncommented", post.ID, "Comment removed")
	s.publish("post.uncommented", post.ID, post.Comments)
	return post.Comments, nil
}

// GetPost retrieves a single post by its ID. No authorization required.
func (s *PostService) GetPost(postID string) (models.Post, error) {
	row := s.db.QueryRow(
		"SELECT id, author_id, text, image, likes_json, comments_json, version, created_at, updated_at FROM posts WHERE id = ?",
		postID,
	)
	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

// GetAllPosts retrieves every post, newest first.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	rows, err := s.db.Query(
		"SELECT id, author_id, text, image, likes_json, comments_json, version, created_at, updated_at FROM posts ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// canDeletePost: the author always may; a moderator may regardless of
// ownership.
func canDeletePost(callerID string, callerRole string, post models.Post) bool {
	return post.AuthorID == callerID || callerRole == models.RoleModerator
}

// canDeleteComment: the comment's author or the post's author.
func canDeleteComment(callerID string, comment models.Comment, post models.Post) bool {
	return comment.AuthorID == callerID || post.AuthorID == callerID
}

// callerRole looks up the caller's current role. Deleting posts is the
// one operation where the role matters, so it is fetched fresh here
// rather than trusted from the token.
func (s *PostService) callerRole(callerID string) (string, error) {
	var role string
	err := s.db.QueryRow("SELECT role FROM users WHERE id = ?", callerID).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return role, nil
}

// writePost persists a mutated aggregate with a single update
// conditional on the version read. Zero rows affected means either the
// post vanished or a concurrent writer won; neither is retried.
func (s *PostService) writePost(post models.Post, bumpUpdatedAt bool) error {
	likesJSON, err := json.Marshal(post.Likes)
	if err != nil {
		return err
	}
	commentsJSON, err := json.Marshal(post.Comments)
	if err != nil {
		return err
	}

	updatedAt := post.UpdatedAt
	if bumpUpdatedAt {
		updatedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(
		"UPDATE posts SET text = ?, image = ?, likes_json = ?, comments_json = ?, updated_at = ?, version = version + 1 WHERE id = ? AND version = ?",
		post.Text, post.Image, string(likesJSON), string(commentsJSON), updatedAt, post.ID, post.Version,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(1) FROM posts WHERE id = ?", post.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrPostNotFound
		}
		return ErrStaleWrite
	}
	return nil
}

// record logs an activity entry; failures are swallowed by the
// activity service itself.
func (s *PostService) record(activityType, postID, message string) {
	if s.activity != nil {
		s.activity.Record(activityType, "info", message, &postID)
	}
}

// publish pushes a feed update to connected websocket clients.
func (s *PostService) publish(action, postID string, payload interface{}) {
	if s.hub != nil {
		s.hub.Publish(postID, websocket.NewMessage(action, payload))
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (models.Post, error) {
	var post models.Post
	var text, image sql.NullString
	var likesJSON, commentsJSON string
	err := row.Scan(&post.ID, &post.AuthorID, &text, &image, &likesJSON, &commentsJSON, &post.Version, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}
	post.Text = text.String
	post.Image = image.String
	if err := json.Unmarshal([]byte(likesJSON), &post.Likes); err != nil {
		return models.Post{}, fmt.Errorf("decode likes: %w", err)
	}
	if err := json.Unmarshal([]byte(commentsJSON), &post.Comments); err != nil {
		return models.Post{}, fmt.Errorf("decode comments: %w", err)
	}
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return post, nil
}
