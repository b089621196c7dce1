package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripTagAPI/internal/apperr"
	"tripTagAPI/internal/store"
	"tripTagAPI/internal/types/challenge"
	"tripTagAPI/utils"
)

func newPostTestEnv(t *testing.T) (*PostService, *ChallengeService, *store.MemoryStore, *store.MemoryObjects) {
	t.Helper()
	st := store.NewMemoryStore()
	objects := store.NewMemoryObjects()
	challenges := NewChallengeService(st)
	return NewPostService(st, objects, challenges), challenges, st, objects
}

func TestCreatePostValidation(t *testing.T) {
	svc, _, _, _ := newPostTestEnv(t)
	ctx := context.Background()

	var ve *apperr.ValidationError
	if _, err := svc.CreatePost(ctx, "u1", "", []byte("jpeg")); !errors.As(err, &ve) {
		t.Fatalf("empty attraction should fail validation, got %v", err)
	}
	if _, err := svc.CreatePost(ctx, "u1", "Eiffel Tower", nil); !errors.As(err, &ve) {
		t.Fatalf("empty photo should fail validation, got %v", err)
	}
}

func TestCreatePostSideEffects(t *testing.T) {
	svc, _, st, objects := newPostTestEnv(t)
	ctx := context.Background()
	seedProfile(t, st, "u1")

	p, err := svc.CreatePost(ctx, "u1", "Eiffel Tower", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if p.PhotoURL == "" {
		t.Fatal("expected a photo URL")
	}
	if data, ok := objects.Object("posts/" + p.UID + ".jpg"); !ok || string(data) != "jpeg-bytes" {
		t.Fatalf("photo not uploaded: ok=%v data=%q", ok, data)
	}

	doc, err := st.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("profile read failed: %v", err)
	}
	if utils.ToInt(doc.Data["postsCount"]) != 1 {
		t.Fatalf("postsCount = %v, want 1", doc.Data["postsCount"])
	}
	if visited := utils.ToStringSlice(doc.Data["visitedAttractions"]); !utils.ContainsString(visited, "Eiffel Tower") {
		t.Fatalf("visitedAttractions missing the attraction: %v", visited)
	}

	posts, err := svc.GetUserPosts(ctx, "u1")
	if err != nil || len(posts) != 1 {
		t.Fatalf("GetUserPosts = %v (err %v), want 1 post", posts, err)
	}
}

func TestCreatePostAdvancesChallenges(t *testing.T) {
	svc, challenges, st, _ := newPostTestEnv(t)
	ctx := context.Background()
	seedProfile(t, st, "u1")
	seedChallenge(t, st, "c1", "Paris Classics", []string{"Eiffel Tower"}, 3)

	if err := challenges.StartChallenge(ctx, "u1", "c1"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := svc.CreatePost(ctx, "u1", "Eiffel Tower", []byte("jpeg")); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if got := associationStatus(t, st, "u1", "c1"); got != challenge.StatusFinished {
		t.Fatalf("posting at the last attraction should finish the challenge, got %s", got)
	}
	if level, completed := profileCounters(t, st, "u1"); level != 2 || completed != 1 {
		t.Fatalf("reward not applied: level %d completed %d", level, completed)
	}
}

func TestFriendsFeedWindow(t *testing.T) {
	svc, _, st, _ := newPostTestEnv(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	seedProfile(t, st, "u2")
	seedProfile(t, st, "u3")
	if err := st.Set(ctx, "users", "u1", map[string]any{
		"email":    "u1@example.com",
		"username": "u1",
		"friends":  []string{"u2"},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// u2 is a friend: one fresh post, one stale, one exactly on the cutoff.
	// u3 is a stranger with a fresh post.
	svc.now = func() time.Time { return base.Add(-time.Hour) }
	if _, err := svc.CreatePost(ctx, "u2", "Louvre", []byte("jpeg")); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	svc.now = func() time.Time { return base.Add(-49 * time.Hour) }
	if _, err := svc.CreatePost(ctx, "u2", "Colosseum", []byte("jpeg")); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	svc.now = func() time.Time { return base.Add(-48 * time.Hour) }
	if _, err := svc.CreatePost(ctx, "u2", "Pisa Tower", []byte("jpeg")); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	svc.now = func() time.Time { return base }
	if _, err := svc.CreatePost(ctx, "u3", "Eiffel Tower", []byte("jpeg")); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	feed, err := svc.GetFriendsPosts(ctx, "u1")
	if err != nil {
		t.Fatalf("GetFriendsPosts failed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected only the fresh friend post, got %d", len(feed))
	}
	if feed[0].Attraction != "Louvre" || feed[0].UserID != "u2" {
		t.Fatalf("wrong post in the feed: %+v", feed[0])
	}
}

func TestFriendsFeedNoFriends(t *testing.T) {
	svc, _, st, _ := newPostTestEnv(t)
	ctx := context.Background()
	seedProfile(t, st, "u1")

	feed, err := svc.GetFriendsPosts(ctx, "u1")
	if err != nil {
		t.Fatalf("GetFriendsPosts failed: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("expected empty feed, got %d", len(feed))
	}
}

func TestToggleLike(t *testing.T) {
	svc, _, st, _ := newPostTestEnv(t)
	ctx := context.Background()
	seedProfile(t, st, "u1")

	p, err := svc.CreatePost(ctx, "u1", "Eiffel Tower", []byte("jpeg"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	status, err := svc.ToggleLike(ctx, p.UID, "u2")
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if !status.Liked || status.Count != 1 {
		t.Fatalf("first toggle: liked=%v count=%d, want true/1", status.Liked, status.Count)
	}

	liked, err := svc.IsPostLikedByUser(ctx, p.UID, "u2")
	if err != nil || !liked {
		t.Fatalf("IsPostLikedByUser = %v, %v; want true", liked, err)
	}

	status, err = svc.ToggleLike(ctx, p.UID, "u2")
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if status.Liked || status.Count != 0 {
		t.Fatalf("second toggle: liked=%v count=%d, want false/0", status.Liked, status.Count)
	}

	if _, err := svc.ToggleLike(ctx, "no-such-post", "u2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("liking a missing post should be ErrNotFound, got %v", err)
	}
}

func TestLikesAreIndependentPerUser(t *testing.T) {
	svc, _, st, _ := newPostTestEnv(t)
	ctx := context.Background()
	seedProfile(t, st, "u1")

	p, err := svc.CreatePost(ctx, "u1", "Eiffel Tower", []byte("jpeg"))
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	for _, uid := range []string{"u2", "u3", "u4"} {
		if _, err := svc.ToggleLike(ctx, p.UID, uid); err != nil {
			t.Fatalf("toggle by %s failed: %v", uid, err)
		}
	}
	count, err := svc.GetLikesCount(ctx, p.UID)
	if err != nil || count != 3 {
		t.Fatalf("GetLikesCount = %d, %v; want 3", count, err)
	}

	if _, err := svc.ToggleLike(ctx, p.UID, "u3"); err != nil {
		t.Fatalf("untoggle failed: %v", err)
	}
	count, _ = svc.GetLikesCount(ctx, p.UID)
	if count != 2 {
		t.Fatalf("count after untoggle = %d, want 2", count)
	}
	liked, _ := svc.IsPostLikedByUser(ctx, p.UID, "u2")
	if !liked {
		t.Fatal("u2's like should be untouched")
	}
}
