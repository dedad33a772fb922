package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) *RedisClient {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := NewRedisClient(srv.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestAppendAndGetComments(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first := &CachedComment{ID: 1, ProjectID: 10, UserID: 2, Username: "mina", Text: "first pass looks good", CreatedAt: time.Now().UTC()}
	second := &CachedComment{ID: 2, ProjectID: 10, UserID: 3, Username: "joon", Text: "tighten scene 4", CreatedAt: time.Now().UTC()}

	if err := client.AppendComment(ctx, first); err != nil {
		t.Fatalf("AppendComment: %v", err)
	}
	if err := client.AppendComment(ctx, second); err != nil {
		t.Fatalf("AppendComment: %v", err)
	}

	got, err := client.GetComments(ctx, 10)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d comments, want 2", len(got))
	}
	if got[0].Username != "mina" || got[1].Username != "joon" {
		t.Errorf("comments out of order: %v", got)
	}
}

func TestGetCommentsMissReturnsNil(t *testing.T) {
	client := newTestClient(t)
	got, err := client.GetComments(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on miss, got %v", got)
	}
}

func TestPrimeCommentsReplacesThread(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	client.AppendComment(ctx, &CachedComment{ID: 1, ProjectID: 5, Username: "stale", Text: "old"})

	fresh := []CachedComment{
		{ID: 2, ProjectID: 5, Username: "a", Text: "one"},
		{ID: 3, ProjectID: 5, Username: "b", Text: "two"},
	}
	if err := client.PrimeComments(ctx, 5, fresh); err != nil {
		t.Fatalf("PrimeComments: %v", err)
	}

	got, err := client.GetComments(ctx, 5)
	if err != nil {
		t.Fatalf("GetComments: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 {
		t.Errorf("thread not replaced: %v", got)
	}
}

func TestInvalidateComments(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	client.AppendComment(ctx, &CachedComment{ID: 1, ProjectID: 7, Text: "bye"})
	if err := client.InvalidateComments(ctx, 7); err != nil {
		t.Fatalf("InvalidateComments: %v", err)
	}

	got, _ := client.GetComments(ctx, 7)
	if got != nil {
		t.Errorf("thread survived invalidation: %v", got)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var client *RedisClient
	ctx := context.Background()

	if err := client.AppendComment(ctx, &CachedComment{ID: 1}); err != nil {
		t.Errorf("nil AppendComment: %v", err)
	}
	if got, err := client.GetComments(ctx, 1); err != nil || got != nil {
		t.Errorf("nil GetComments = %v, %v", got, err)
	}
	if err := client.Health(ctx); err != nil {
		t.Errorf("nil Health: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestCommentTTLSet(t *testing.T) {
	srv := miniredis.RunT(t)
	client, err := NewRedisClient(srv.Addr(), "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	client.AppendComment(context.Background(), &CachedComment{ID: 1, ProjectID: 3, Text: "hi"})

	if ttl := srv.TTL(commentKey(3)); ttl <= 0 || ttl > commentTTL {
		t.Errorf("TTL = %v, want (0, %v]", ttl, commentTTL)
	}
}
