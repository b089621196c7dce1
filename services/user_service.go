package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"tripTagAPI/internal/apperr"
	"tripTagAPI/internal/store"
	"tripTagAPI/internal/types/profile"
	"tripTagAPI/utils"
)

const defaultProfilePicture = "https://storage.googleapis.com/triptag-assets/default.jpg"

type UserService struct {
	store store.DocumentStore
}

func NewUserService(st store.DocumentStore) *UserService {
	return &UserService{store: st}
}

// CreateUser writes the registration profile document. The auth provider owns
// credentials; this is only the app-side profile. Level starts at 1 and every
// counter at zero.
func (s *UserService) CreateUser(ctx context.Context, userID string, req *profile.CreateUserRequest) (*profile.UserProfile, error) {
	if req.Email == "" {
		return nil, &apperr.ValidationError{Field: "email", Reason: "cannot be empty"}
	}

	username := req.Username
	if username == "" {
		username = "user_" + uuid.New().String()[:8]
	}
	picture := req.ProfilePictureURL
	if picture == "" {
		picture = defaultProfilePicture
	}

	p := &profile.UserProfile{
		UID:                userID,
		Email:              req.Email,
		Username:           username,
		ProfilePictureURL:  picture,
		Level:              1,
		Friends:            []string{},
		VisitedAttractions: []string{},
	}

	if err := s.store.Create(ctx, usersCollection, userID, p.Fields()); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return nil, fmt.Errorf("profile for %s: %w", userID, apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*profile.UserProfile, error) {
	doc, err := s.store.Get(ctx, usersCollection, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile.FromDoc(doc.ID, doc.Data), nil
}

// UpdateProfile applies the non-empty fields of the request.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *profile.UpdateProfileRequest) (*profile.UserProfile, error) {
	fields := map[string]any{}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.Caption != "" {
		fields["caption"] = req.Caption
	}
	if req.ProfilePictureURL != "" {
		fields["profilePictureUrl"] = req.ProfilePictureURL
	}
	if req.DeviceToken != "" {
		fields["deviceToken"] = req.DeviceToken
	}
	if len(fields) == 0 {
		return s.GetProfile(ctx, userID)
	}

	if err := s.store.Update(ctx, usersCollection, userID, fields); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("profile %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.store.Get(ctx, usersCollection, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("profile %s: %w", userID, apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if err := s.store.Delete(ctx, usersCollection, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// AddFriend makes the friendship reciprocal: both friends arrays and both
// friendsCount counters change in one atomic batch.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return &apperr.ValidationError{Field: "friend_id", Reason: "cannot add yourself as a friend"}
	}

	me, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if utils.ContainsString(me.Friends, friendID) {
		return fmt.Errorf("friendship with %s: %w", friendID, apperr.ErrAlreadyExists)
	}
	if _, err := s.GetProfile(ctx, friendID); err != nil {
		return err
	}

	err = s.store.RunBatch(ctx, func(b store.Batch) {
		b.Update(usersCollection, userID, map[string]any{
			"friends":      store.UnionStrings(friendID),
			"friendsCount": store.Increment{Amount: 1},
		})
		b.Update(usersCollection, friendID, map[string]any{
			"friends":      store.UnionStrings(userID),
			"friendsCount": store.Increment{Amount: 1},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	me, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.ContainsString(me.Friends, friendID) {
		return fmt.Errorf("friendship with %s: %w", friendID, apperr.ErrNotFound)
	}

	err = s.store.RunBatch(ctx, func(b store.Batch) {
		b.Update(usersCollection, userID, map[string]any{
			"friends":      store.RemoveStrings(friendID),
			"friendsCount": store.Increment{Amount: -1},
		})
		b.Update(usersCollection, friendID, map[string]any{
			"friends":      store.RemoveStrings(userID),
			"friendsCount": store.Increment{Amount: -1},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

// GetFriends resolves the friend UID list into profiles, skipping any that
// fail to load.
func (s *UserService) GetFriends(ctx context.Context, userID string) ([]*profile.UserProfile, error) {
	me, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := []*profile.UserProfile{}
	for _, friendID := range me.Friends {
		doc, err := s.store.Get(ctx, usersCollection, friendID)
		if err != nil {
			log.Printf("UserService: failed to load friend %s of %s: %v", friendID, userID, err)
			continue
		}
		friends = append(friends, profile.FromDoc(doc.ID, doc.Data))
	}
	return friends, nil
}

func (s *UserService) IsFriend(ctx context.Context, userID, targetID string) (bool, error) {
	target, err := s.GetProfile(ctx, targetID)
	if err != nil {
		return false, err
	}
	return utils.ContainsString(target.Friends, userID), nil
}

// SearchUsers matches usernames by prefix, capped at 20 results.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]*profile.UserProfile, error) {
	if query == "" {
		return []*profile.UserProfile{}, nil
	}
	docs, err := s.store.QueryPrefix(ctx, usersCollection, "username", query, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	users := make([]*profile.UserProfile, 0, len(docs))
	for _, doc := range docs {
		users = append(users, profile.FromDoc(doc.ID, doc.Data))
	}
	return users, nil
}
