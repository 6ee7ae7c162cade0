package services

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wavefeed/wavefeed-be/internal/database"
	"github.com/wavefeed/wavefeed-be/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, email, role string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec(
		"INSERT INTO users(id, name, email, username, password_hash, role, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		id, "Test User", email, "user."+id[:8], "x", role, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

func newTestPostService(t *testing.T) (*PostService, *sql.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewPostService(db, NewActivityService(db), nil), db
}

func TestCreatePost_RequiresContent(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)

	if _, err := svc.CreatePost(author, "", ""); !errors.Is(err, ErrEmptyPost) {
		t.Fatalf("expected ErrEmptyPost, got %v", err)
	}
}

func TestCreatePost_StartsEmpty(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)

	post, err := svc.CreatePost(author, "hello", "")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.AuthorID != author {
		t.Fatalf("expected author %s, got %s", author, post.AuthorID)
	}
	if len(post.Likes) != 0 || len(post.Comments) != 0 {
		t.Fatalf("expected empty likes/comments, got %d/%d", len(post.Likes), len(post.Comments))
	}

	got, err := svc.GetPost(post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got.Text != "hello" {
		t.Fatalf("expected text hello, got %q", got.Text)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	svc, _ := newTestPostService(t)

	if _, err := svc.GetPost("missing"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestLikePost_TwiceFails(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	liker := seedUser(t, db, "liker@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	likes, err := svc.LikePost(liker, post.ID)
	if err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if len(likes) != 1 || likes[0].UserID != liker {
		t.Fatalf("expected [liker], got %+v", likes)
	}

	if _, err := svc.LikePost(liker, post.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}

	got, _ := svc.GetPost(post.ID)
	if len(got.Likes) != 1 {
		t.Fatalf("likes length changed on rejected like: %d", len(got.Likes))
	}
}

func TestLikePost_NewestFirst(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	first := seedUser(t, db, "first@example.com", models.RoleUser)
	second := seedUser(t, db, "second@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	svc.LikePost(first, post.ID)
	likes, err := svc.LikePost(second, post.ID)
	if err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if likes[0].UserID != second || likes[1].UserID != first {
		t.Fatalf("expected newest-first order, got %+v", likes)
	}
}

func TestUnlikePost_NotLiked(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	stranger := seedUser(t, db, "stranger@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	if _, err := svc.UnlikePost(stranger, post.ID); !errors.Is(err, ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
}

func TestUnlikePost_PreservesOrder(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	a := seedUser(t, db, "a@example.com", models.RoleUser)
	b := seedUser(t, db, "b@example.com", models.RoleUser)
	c := seedUser(t, db, "c@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	svc.LikePost(a, post.ID)
	svc.LikePost(b, post.ID)
	svc.LikePost(c, post.ID)

	likes, err := svc.UnlikePost(b, post.ID)
	if err != nil {
		t.Fatalf("UnlikePost: %v", err)
	}
	if len(likes) != 2 || likes[0].UserID != c || likes[1].UserID != a {
		t.Fatalf("expected [c a], got %+v", likes)
	}
}

func TestEditPost_OnlyAuthor(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	stranger := seedUser(t, db, "stranger@example.com", models.RoleUser)
	moderator := seedUser(t, db, "mod@example.com", models.RoleModerator)
	post, _ := svc.CreatePost(author, "hello", "")

	if _, err := svc.EditPost(stranger, post.ID, "hacked", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	// Moderators may delete, not edit.
	if _, err := svc.EditPost(moderator, post.ID, "hacked", ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for moderator, got %v", err)
	}
}

func TestEditPost_ReplacesOnlySuppliedFields(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	liker := seedUser(t, db, "liker@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "data:image/png;base64,AAAA")
	svc.LikePost(liker, post.ID)

	before, _ := svc.GetPost(post.ID)
	time.Sleep(5 * time.Millisecond)

	edited, err := svc.EditPost(author, post.ID, "goodbye", "")
	if err != nil {
		t.Fatalf("EditPost: %v", err)
	}
	if edited.Text != "goodbye" {
		t.Fatalf("expected text replaced, got %q", edited.Text)
	}
	if edited.Image != "data:image/png;base64,AAAA" {
		t.Fatalf("expected image untouched, got %q", edited.Image)
	}
	if len(edited.Likes) != 1 {
		t.Fatalf("expected likes untouched, got %d", len(edited.Likes))
	}
	if !edited.UpdatedAt.After(before.UpdatedAt) {
		t.Fatal("expected updatedAt to advance on edit")
	}
}

func TestLikeAndComment_DoNotBumpUpdatedAt(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	liker := seedUser(t, db, "liker@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	time.Sleep(5 * time.Millisecond)
	svc.LikePost(liker, post.ID)
	svc.AddComment(liker, post.ID, "nice")

	got, _ := svc.GetPost(post.ID)
	if !got.UpdatedAt.Equal(post.UpdatedAt) {
		t.Fatalf("updatedAt moved on like/comment: %v -> %v", post.UpdatedAt, got.UpdatedAt)
	}
}

func TestDeletePost_AuthorOrModerator(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	stranger := seedUser(t, db, "stranger@example.com", models.RoleUser)
	moderator := seedUser(t, db, "mod@example.com", models.RoleModerator)

	post, _ := svc.CreatePost(author, "hello", "")
	if err := svc.DeletePost(stranger, post.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	if err := svc.DeletePost(author, post.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := svc.GetPost(post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected post gone, got %v", err)
	}

	// A moderator who is not the author may also delete.
	post2, _ := svc.CreatePost(author, "hello again", "")
	if err := svc.DeletePost(moderator, post2.ID); err != nil {
		t.Fatalf("moderator delete: %v", err)
	}
	if _, err := svc.GetPost(post2.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected post gone, got %v", err)
	}
}

func TestAddComment_Validation(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	if _, err := svc.AddComment(author, post.ID, ""); !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
	if _, err := svc.AddComment(author, "missing", "hi"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestAddComment_NewestFirst(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	commenter := seedUser(t, db, "commenter@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	svc.AddComment(commenter, post.ID, "first")
	comments, err := svc.AddComment(commenter, post.ID, "second")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "second" || comments[1].Text != "first" {
		t.Fatalf("expected newest-first order, got %+v", comments)
	}
}

func TestDeleteComment_Authorization(t *testing.T) {
	svc, db := newTestPostService(t)
	postAuthor := seedUser(t, db, "author@example.com", models.RoleUser)
	commenter := seedUser(t, db, "commenter@example.com", models.RoleUser)
	stranger := seedUser(t, db, "stranger@example.com", models.RoleUser)
	post, _ := svc.CreatePost(postAuthor, "hello", "")

	comments, _ := svc.AddComment(commenter, post.ID, "one")
	commentID := comments[0].ID

	if _, err := svc.DeleteComment(stranger, post.ID, commentID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for third party, got %v", err)
	}
	if _, err := svc.DeleteComment(commenter, post.ID, commentID); err != nil {
		t.Fatalf("comment author delete: %v", err)
	}

	// The post's author may delete anyone's comment.
	comments, _ = svc.AddComment(commenter, post.ID, "two")
	commentID = comments[0].ID
	remaining, err := svc.DeleteComment(postAuthor, post.ID, commentID)
	if err != nil {
		t.Fatalf("post author delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no comments left, got %+v", remaining)
	}
}

func TestDeleteComment_UnknownComment(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	if _, err := svc.DeleteComment(author, post.ID, "missing"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestDeleteComment_PreservesOrder(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	svc.AddComment(author, post.ID, "one")
	comments, _ := svc.AddComment(author, post.ID, "two")
	middle := comments[0].ID
	svc.AddComment(author, post.ID, "three")

	remaining, err := svc.DeleteComment(author, post.ID, middle)
	if err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if len(remaining) != 2 || remaining[0].Text != "three" || remaining[1].Text != "one" {
		t.Fatalf("expected [three one], got %+v", remaining)
	}
}

func TestGetAllPosts_NewestFirst(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)

	for _, text := range []string{"oldest", "middle", "newest"} {
		if _, err := svc.CreatePost(author, text, ""); err != nil {
			t.Fatalf("CreatePost %s: %v", text, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	posts, err := svc.GetAllPosts()
	if err != nil {
		t.Fatalf("GetAllPosts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	if posts[0].Text != "newest" || posts[1].Text != "middle" || posts[2].Text != "oldest" {
		t.Fatalf("expected descending createdAt order, got %s/%s/%s", posts[0].Text, posts[1].Text, posts[2].Text)
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].CreatedAt.After(posts[i-1].CreatedAt) {
			t.Fatalf("posts not strictly descending at index %d", i)
		}
	}
}

func TestWritePost_StaleVersion(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	snapshot, err := svc.GetPost(post.ID)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}

	// A concurrent writer bumps the version between our read and write.
	if _, err := db.Exec("UPDATE posts SET version = version + 1 WHERE id = ?", post.ID); err != nil {
		t.Fatalf("simulate concurrent write: %v", err)
	}

	if err := svc.writePost(snapshot, false); !errors.Is(err, ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}
}

func TestWritePost_DeletedPost(t *testing.T) {
	svc, db := newTestPostService(t)
	author := seedUser(t, db, "author@example.com", models.RoleUser)
	post, _ := svc.CreatePost(author, "hello", "")

	snapshot, _ := svc.GetPost(post.ID)
	if _, err := db.Exec("DELETE FROM posts WHERE id = ?", post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := svc.writePost(snapshot, false); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

// The end-to-end scenario: A posts, B likes (twice), C comments, A
// deletes C's comment as post owner.
func TestPostLifecycleScenario(t *testing.T) {
	svc, db := newTestPostService(t)
	userA := seedUser(t, db, "a@example.com", models.RoleUser)
	userB := seedUser(t, db, "b@example.com", models.RoleUser)
	userC := seedUser(t, db, "c@example.com", models.RoleUser)

	post, err := svc.CreatePost(userA, "hello", "")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if len(post.Likes) != 0 {
		t.Fatalf("expected no likes, got %d", len(post.Likes))
	}

	likes, err := svc.LikePost(userB, post.ID)
	if err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if len(likes) != 1 || likes[0].UserID != userB {
		t.Fatalf("expected likes [B], got %+v", likes)
	}

	if _, err := svc.LikePost(userB, post.ID); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	got, _ := svc.GetPost(post.ID)
	if len(got.Likes) != 1 || got.Likes[0].UserID != userB {
		t.Fatalf("likes changed after rejected like: %+v", got.Likes)
	}

	comments, err := svc.AddComment(userC, post.ID, "nice")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if len(comments) != 1 || comments[0].AuthorID != userC || comments[0].Text != "nice" {
		t.Fatalf("expected comments [{C nice}], got %+v", comments)
	}

	remaining, err := svc.DeleteComment(userA, post.ID, comments[0].ID)
	if err != nil {
		t.Fatalf("post owner deleting comment: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no comments, got %+v", remaining)
	}
}
