package services

import (
	"testing"
	"time"
)

func TestActivity_RecordAndGetRecent(t *testing.T) {
	svc := NewActivityService(newTestDB(t))

	postID := "post-1"
	svc.Record("post.created", "info", "Post created", &postID)
	svc.Record("post.liked", "info", "Post liked", &postID)

	activities, err := svc.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	for _, a := range activities {
		if a.PostID == nil || *a.PostID != postID {
			t.Fatalf("expected postId %s, got %v", postID, a.PostID)
		}
	}
}

func TestActivity_GetRecentEmpty(t *testing.T) {
	svc := NewActivityService(newTestDB(t))

	activities, err := svc.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	// An empty log must encode as a JSON array, not null.
	if activities == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(activities) != 0 {
		t.Fatalf("expected no activities, got %d", len(activities))
	}
}

func TestActivity_GetRecentLimit(t *testing.T) {
	svc := NewActivityService(newTestDB(t))

	for i := 0; i < 5; i++ {
		svc.Record("post.created", "info", "Post created", nil)
	}

	activities, err := svc.GetRecent(3)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(activities))
	}
}

func TestActivity_Prune(t *testing.T) {
	svc := NewActivityService(newTestDB(t))

	svc.Record("post.created", "info", "Post created", nil)
	svc.Record("post.liked", "info", "Post liked", nil)

	// Nothing is old enough yet.
	pruned, err := svc.Prune(time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 0 {
		t.Fatalf("expected 0 pruned, got %d", pruned)
	}

	pruned, err = svc.Prune(time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("expected 2 pruned, got %d", pruned)
	}

	activities, err := svc.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(activities) != 0 {
		t.Fatalf("expected empty log after prune, got %d", len(activities))
	}
}
