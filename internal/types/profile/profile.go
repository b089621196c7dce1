package profile

import "tripTagAPI/utils"

// UserProfile is the users collection document. Level starts at 1 and, like
// CompletedChallenges, is bumped by the challenge engine when an attempt
// finishes. VisitedAttractions accumulates every attraction the user has
// posted at, independent of any challenge.
type UserProfile struct {
	UID                 string   `json:"uid"`
	Email               string   `json:"email"`
	Username            string   `json:"username"`
	ProfilePictureURL   string   `json:"profile_picture_url"`
	Caption             string   `json:"caption"`
	Level               int      `json:"level"`
	CompletedChallenges int      `json:"completed_challenges"`
	PostsCount          int      `json:"posts_count"`
	FriendsCount        int      `json:"friends_count"`
	Friends             []string `json:"friends"`
	VisitedAttractions  []string `json:"visited_attractions"`
	DeviceToken         string   `json:"device_token,omitempty"`
}

type CreateUserRequest struct {
	Email             string `json:"email"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type UpdateProfileRequest struct {
	Username          string `json:"username"`
	Caption           string `json:"caption"`
	ProfilePictureURL string `json:"profile_picture_url"`
	DeviceToken       string `json:"device_token"`
}

type FriendRequest struct {
	FriendID string `json:"friend_id"`
}

func FromDoc(id string, data map[string]any) *UserProfile {
	return &UserProfile{
		UID:                 id,
		Email:               utils.ToString(data["email"]),
		Username:            utils.ToString(data["username"]),
		ProfilePictureURL:   utils.ToString(data["profilePictureUrl"]),
		Caption:             utils.ToString(data["caption"]),
		Level:               utils.ToInt(data["level"]),
		CompletedChallenges: utils.ToInt(data["completedChallenges"]),
		PostsCount:          utils.ToInt(data["postsCount"]),
		FriendsCount:        utils.ToInt(data["friendsCount"]),
		Friends:             utils.ToStringSlice(data["friends"]),
		VisitedAttractions:  utils.ToStringSlice(data["visitedAttractions"]),
		DeviceToken:         utils.ToString(data["deviceToken"]),
	}
}

func (p *UserProfile) Fields() map[string]any {
	return map[string]any{
		"email":               p.Email,
		"username":            p.Username,
		"profilePictureUrl":   p.ProfilePictureURL,
		"caption":             p.Caption,
		"level":               p.Level,
		"completedChallenges": p.CompletedChallenges,
		"postsCount":          p.PostsCount,
		"friendsCount":        p.FriendsCount,
		"friends":             p.Friends,
		"visitedAttractions":  p.VisitedAttractions,
		"deviceToken":         p.DeviceToken,
	}
}
