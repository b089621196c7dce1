package post

import (
	"time"

	"tripTagAPI/utils"
)

// Post is a geotagged photo a user took at an attraction. Creating one is
// what feeds the challenge engine its "attraction visited" signal.
type Post struct {
	UID        string    `json:"uid"`
	UserID     string    `json:"user_id"`
	Attraction string    `json:"attraction"`
	PhotoURL   string    `json:"photo_url"`
	Timestamp  time.Time `json:"timestamp"`
}

type LikeStatus struct {
	PostID string `json:"post_id"`
	Liked  bool   `json:"liked"`
	Count  int    `json:"count"`
}

func FromDoc(id string, data map[string]any) *Post {
	return &Post{
		UID:        id,
		UserID:     utils.ToString(data["userId"]),
		Attraction: utils.ToString(data["attraction"]),
		PhotoURL:   utils.ToString(data["photoUrl"]),
		Timestamp:  utils.ToTime(data["timestamp"]),
	}
}

func (p *Post) Fields() map[string]any {
	return map[string]any{
		"userId":     p.UserID,
		"attraction": p.Attraction,
		"photoUrl":   p.PhotoURL,
		"timestamp":  p.Timestamp,
	}
}
