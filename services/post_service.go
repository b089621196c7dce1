package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tripTagAPI/internal/apperr"
	"tripTagAPI/internal/store"
	"tripTagAPI/internal/types/post"
	"tripTagAPI/utils"
)

const friendsFeedWindow = 48 * time.Hour

type PostService struct {
	store      store.DocumentStore
	objects    store.ObjectStorage
	challenges *ChallengeService
	now        func() time.Time
}

func NewPostService(st store.DocumentStore, objects store.ObjectStorage, challenges *ChallengeService) *PostService {
	return &PostService{
		store:      st,
		objects:    objects,
		challenges: challenges,
		now:        time.Now,
	}
}

// CreatePost uploads the photo, writes the post document, bumps the author's
// postsCount and visitedAttractions, and then hands the visit signal to the
// challenge engine. Challenge-progress failures are logged, not returned: the
// post itself already exists and a later visit to the same attraction is
// idempotent anyway.
func (s *PostService) CreatePost(ctx context.Context, userID, attractionName string, photo []byte) (*post.Post, error) {
	if attractionName == "" {
		return nil, &apperr.ValidationError{Field: "attraction", Reason: "cannot be empty"}
	}
	if len(photo) == 0 {
		return nil, &apperr.ValidationError{Field: "photo", Reason: "cannot be empty"}
	}

	postID := uuid.New().String()
	photoURL, err := s.objects.Upload(ctx, "posts/"+postID+".jpg", photo, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	p := &post.Post{
		UID:        postID,
		UserID:     userID,
		Attraction: attractionName,
		PhotoURL:   photoURL,
		Timestamp:  s.now(),
	}
	if err := s.store.Set(ctx, postsCollection, postID, p.Fields()); err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	if err := s.store.Update(ctx, usersCollection, userID, map[string]any{
		"postsCount":         store.Increment{Amount: 1},
		"visitedAttractions": store.UnionStrings(attractionName),
	}); err != nil {
		return nil, fmt.Errorf("failed to update profile counters: %w", err)
	}

	if err := s.challenges.RecordAttractionVisit(ctx, userID, attractionName); err != nil {
		log.Printf("PostService: challenge progress for %s at %q: %v", userID, attractionName, err)
	}

	return p, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID string) ([]*post.Post, error) {
	docs, err := s.store.Query(ctx, postsCollection,
		store.Where("userId", "==", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]*post.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, post.FromDoc(doc.ID, doc.Data))
	}
	return posts, nil
}

// GetFriendsPosts returns friends' posts from the last 48 hours. Friend IDs
// are chunked to ten per query, the backend's "in" limit.
func (s *PostService) GetFriendsPosts(ctx context.Context, userID string) ([]*post.Post, error) {
	me, err := s.store.Get(ctx, usersCollection, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	friendIDs := utils.ToStringSlice(me.Data["friends"])
	if len(friendIDs) == 0 {
		return []*post.Post{}, nil
	}

	cutoff := s.now().Add(-friendsFeedWindow)
	posts := []*post.Post{}
	for start := 0; start < len(friendIDs); start += 10 {
		end := start + 10
		if end > len(friendIDs) {
			end = len(friendIDs)
		}
		docs, err := s.store.Query(ctx, postsCollection,
			store.Where("userId", "in", friendIDs[start:end]),
			store.Where("timestamp", ">", cutoff))
		if err != nil {
			return nil, fmt.Errorf("failed to list friends posts: %w", err)
		}
		for _, doc := range docs {
			posts = append(posts, post.FromDoc(doc.ID, doc.Data))
		}
	}
	return posts, nil
}

func likesCollection(postID string) string {
	return postsCollection + "/" + postID + "/likes"
}

// ToggleLike flips the caller's like on a post and returns the new state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*post.LikeStatus, error) {
	if _, err := s.store.Get(ctx, postsCollection, postID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("post %s: %w", postID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	liked := false
	_, err := s.store.Get(ctx, likesCollection(postID), userID)
	switch {
	case err == nil:
		if err := s.store.Delete(ctx, likesCollection(postID), userID); err != nil {
			return nil, fmt.Errorf("failed to remove like: %w", err)
		}
	case errors.Is(err, apperr.ErrNotFound):
		if err := s.store.Set(ctx, likesCollection(postID), userID, map[string]any{
			"likedAt": s.now(),
		}); err != nil {
			return nil, fmt.Errorf("failed to add like: %w", err)
		}
		liked = true
	default:
		return nil, fmt.Errorf("failed to check like: %w", err)
	}

	count, err := s.GetLikesCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &post.LikeStatus{PostID: postID, Liked: liked, Count: count}, nil
}

func (s *PostService) GetLikesCount(ctx context.Context, postID string) (int, error) {
	docs, err := s.store.Query(ctx, likesCollection(postID))
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return len(docs), nil
}

func (s *PostService) IsPostLikedByUser(ctx context.Context, postID, userID string) (bool, error) {
	_, err := s.store.Get(ctx, likesCollection(postID), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return true, nil
}
