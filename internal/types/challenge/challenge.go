package challenge

import (
	"time"

	"tripTagAPI/utils"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
)

// Challenge is an authored definition: visit every attraction in
// AttractionsToFind within TimeLimitDays of accepting. Definitions are
// created out of band and are read-only to the API.
type Challenge struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	AttractionsToFind []string `json:"attractions_to_find"`
	TimeLimitDays     int      `json:"time_limit_days"`
}

// UserChallenge tracks one user's attempt at one challenge. AttractionsFound
// only grows while the attempt is IN_PROGRESS; FINISHED is terminal. Expired
// attempts are deleted outright by the sweep.
type UserChallenge struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ChallengeID      string    `json:"challenge_id"`
	AttractionsFound []string  `json:"attractions_found"`
	StartedAt        time.Time `json:"started_at"`
	Status           Status    `json:"status"`
}

// AssociationID builds the deterministic userChallenges document key. Keying
// by (user, challenge) makes a second start of the same challenge collide
// instead of silently creating a duplicate attempt.
func AssociationID(userID, challengeID string) string {
	return userID + "_" + challengeID
}

func FromDoc(id string, data map[string]any) *Challenge {
	return &Challenge{
		ID:                id,
		Title:             utils.ToString(data["title"]),
		Description:       utils.ToString(data["description"]),
		AttractionsToFind: utils.ToStringSlice(data["attractionsToFind"]),
		TimeLimitDays:     utils.ToInt(data["timeLimitDays"]),
	}
}

func UserChallengeFromDoc(id string, data map[string]any) *UserChallenge {
	return &UserChallenge{
		ID:               id,
		UserID:           utils.ToString(data["userId"]),
		ChallengeID:      utils.ToString(data["challengeId"]),
		AttractionsFound: utils.ToStringSlice(data["attractionsFound"]),
		StartedAt:        utils.ToTime(data["startedAt"]),
		Status:           Status(utils.ToString(data["status"])),
	}
}

func (uc *UserChallenge) Fields() map[string]any {
	return map[string]any{
		"userId":           uc.UserID,
		"challengeId":      uc.ChallengeID,
		"attractionsFound": uc.AttractionsFound,
		"startedAt":        uc.StartedAt,
		"status":           string(uc.Status),
	}
}
