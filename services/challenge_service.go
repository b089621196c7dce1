package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tripTagAPI/internal/apperr"
	"tripTagAPI/internal/store"
	"tripTagAPI/internal/types/challenge"
	"tripTagAPI/internal/types/profile"
	"tripTagAPI/utils"
)

const (
	challengesCollection     = "challenges"
	userChallengesCollection = "userChallenges"
	usersCollection          = "users"
	postsCollection          = "posts"
	attractionsCollection    = "attractions"
)

// PushProvider delivers best-effort push notifications. FCM in production,
// a fake in tests.
type PushProvider interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) error
}

// ChallengeService owns the challenge catalog views and the progress engine:
// which attempts advance when a user posts at an attraction, when an attempt
// finishes, and when overdue attempts get swept away.
type ChallengeService struct {
	store store.DocumentStore
	push  PushProvider
	now   func() time.Time
}

func NewChallengeService(st store.DocumentStore) *ChallengeService {
	return &ChallengeService{
		store: st,
		now:   time.Now,
	}
}

// SetPushProvider injects the optional completion-notification sender.
func (s *ChallengeService) SetPushProvider(p PushProvider) {
	s.push = p
}

// GetAvailableChallenges returns every definition the user has never been
// associated with, in any status. An attempt that expired (and was deleted)
// no longer excludes its challenge, so the user can take it again.
func (s *ChallengeService) GetAvailableChallenges(ctx context.Context, userID string) ([]*challenge.Challenge, error) {
	assocs, err := s.store.Query(ctx, userChallengesCollection,
		store.Where("userId", "==", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list user challenges: %w", err)
	}

	excluded := make(map[string]bool, len(assocs))
	for _, doc := range assocs {
		excluded[utils.ToString(doc.Data["challengeId"])] = true
	}

	all, err := s.store.Query(ctx, challengesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	available := []*challenge.Challenge{}
	for _, doc := range all {
		if !excluded[doc.ID] {
			available = append(available, challenge.FromDoc(doc.ID, doc.Data))
		}
	}
	return available, nil
}

func (s *ChallengeService) GetActiveChallenges(ctx context.Context, userID string) ([]*challenge.Challenge, error) {
	return s.challengesByStatus(ctx, userID, challenge.StatusInProgress)
}

func (s *ChallengeService) GetFinishedChallenges(ctx context.Context, userID string) ([]*challenge.Challenge, error) {
	return s.challengesByStatus(ctx, userID, challenge.StatusFinished)
}

func (s *ChallengeService) challengesByStatus(ctx context.Context, userID string, status challenge.Status) ([]*challenge.Challenge, error) {
	assocs, err := s.store.Query(ctx, userChallengesCollection,
		store.Where("userId", "==", userID),
		store.Where("status", "==", string(status)))
	if err != nil {
		return nil, fmt.Errorf("failed to list user challenges: %w", err)
	}

	challenges := []*challenge.Challenge{}
	for _, doc := range assocs {
		challengeID := utils.ToString(doc.Data["challengeId"])
		chDoc, err := s.store.Get(ctx, challengesCollection, challengeID)
		if err != nil {
			// Definition may have been unpublished; skip the orphan.
			log.Printf("ChallengeService: definition %s missing for association %s: %v", challengeID, doc.ID, err)
			continue
		}
		challenges = append(challenges, challenge.FromDoc(chDoc.ID, chDoc.Data))
	}
	return challenges, nil
}

// GetUserChallenges returns the raw association records for the user,
// regardless of status.
func (s *ChallengeService) GetUserChallenges(ctx context.Context, userID string) ([]*challenge.UserChallenge, error) {
	assocs, err := s.store.Query(ctx, userChallengesCollection,
		store.Where("userId", "==", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list user challenges: %w", err)
	}

	out := make([]*challenge.UserChallenge, 0, len(assocs))
	for _, doc := range assocs {
		out = append(out, challenge.UserChallengeFromDoc(doc.ID, doc.Data))
	}
	return out, nil
}

// StartChallenge accepts a challenge: a fresh IN_PROGRESS association with an
// empty found-set, stamped with the acceptance time. The association document
// is keyed by (user, challenge), so a second start of the same challenge
// fails with apperr.ErrAlreadyExists instead of creating a duplicate attempt.
func (s *ChallengeService) StartChallenge(ctx context.Context, userID, challengeID string) error {
	_, err := s.store.Get(ctx, challengesCollection, challengeID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("challenge %s: %w", challengeID, apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to fetch challenge %s: %w", challengeID, err)
	}

	uc := &challenge.UserChallenge{
		UserID:           userID,
		ChallengeID:      challengeID,
		AttractionsFound: []string{},
		StartedAt:        s.now(),
		Status:           challenge.StatusInProgress,
	}

	if err := s.store.Create(ctx, userChallengesCollection, challenge.AssociationID(userID, challengeID), uc.Fields()); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return fmt.Errorf("challenge %s already started: %w", challengeID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to start challenge %s: %w", challengeID, err)
	}
	return nil
}

// RecordAttractionVisit advances every in-progress attempt whose checklist
// contains the attraction. Re-visiting an already-credited attraction is a
// no-op. When the found-set reaches the full checklist the attempt flips to
// FINISHED and the profile's level and completedChallenges are bumped, all in
// one transaction, so a crash can't leave a finished-but-unrewarded attempt.
//
// One failing attempt does not stop the others; failures are joined into the
// returned error.
func (s *ChallengeService) RecordAttractionVisit(ctx context.Context, userID, attractionName string) error {
	assocs, err := s.store.Query(ctx, userChallengesCollection,
		store.Where("userId", "==", userID),
		store.Where("status", "==", string(challenge.StatusInProgress)))
	if err != nil {
		return fmt.Errorf("failed to list in-progress challenges: %w", err)
	}

	var errs []error
	for _, doc := range assocs {
		uc := challenge.UserChallengeFromDoc(doc.ID, doc.Data)

		chDoc, err := s.store.Get(ctx, challengesCollection, uc.ChallengeID)
		if err != nil {
			errs = append(errs, fmt.Errorf("challenge %s: %w", uc.ChallengeID, err))
			continue
		}
		ch := challenge.FromDoc(chDoc.ID, chDoc.Data)

		if !utils.ContainsString(ch.AttractionsToFind, attractionName) {
			continue
		}
		if utils.ContainsString(uc.AttractionsFound, attractionName) {
			continue
		}

		updatedFound := append(append([]string{}, uc.AttractionsFound...), attractionName)

		if utils.SameStringSet(updatedFound, ch.AttractionsToFind) {
			if err := s.completeChallenge(ctx, uc.ID, userID, updatedFound); err != nil {
				errs = append(errs, fmt.Errorf("complete challenge %s: %w", uc.ChallengeID, err))
				continue
			}
			s.notifyCompletion(ctx, userID, ch)
		} else {
			if err := s.store.Update(ctx, userChallengesCollection, uc.ID, map[string]any{
				"attractionsFound": updatedFound,
			}); err != nil {
				errs = append(errs, fmt.Errorf("update challenge %s: %w", uc.ChallengeID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// completeChallenge marks the association FINISHED and rewards the profile in
// a single transaction: level +1, completedChallenges +1, read-modify-write
// against the current counters.
func (s *ChallengeService) completeChallenge(ctx context.Context, associationID, userID string, found []string) error {
	return s.store.RunTransaction(ctx, func(tx store.Tx) error {
		userDoc, err := tx.Get(usersCollection, userID)
		if err != nil {
			return fmt.Errorf("fetch profile %s: %w", userID, err)
		}
		level := utils.ToInt64(userDoc.Data["level"])
		completed := utils.ToInt64(userDoc.Data["completedChallenges"])

		if err := tx.Update(userChallengesCollection, associationID, map[string]any{
			"attractionsFound": found,
			"status":           string(challenge.StatusFinished),
		}); err != nil {
			return err
		}
		return tx.Update(usersCollection, userID, map[string]any{
			"level":               level + 1,
			"completedChallenges": completed + 1,
		})
	})
}

func (s *ChallengeService) notifyCompletion(ctx context.Context, userID string, ch *challenge.Challenge) {
	if s.push == nil {
		return
	}
	userDoc, err := s.store.Get(ctx, usersCollection, userID)
	if err != nil {
		log.Printf("ChallengeService: cannot notify %s, profile read failed: %v", userID, err)
		return
	}
	p := profile.FromDoc(userDoc.ID, userDoc.Data)
	if p.DeviceToken == "" {
		return
	}
	body := fmt.Sprintf("You finished %q and reached level %d!", ch.Title, p.Level)
	if err := s.push.SendPush(ctx, p.DeviceToken, "Challenge complete!", body, map[string]string{
		"type":        "challenge_completed",
		"challengeId": ch.ID,
	}); err != nil {
		log.Printf("ChallengeService: completion push for %s failed: %v", userID, err)
	}
}

// SweepExpired deletes every in-progress association whose deadline
// (startedAt + timeLimitDays) has passed. Called opportunistically when the
// client refreshes its challenge list, not on a schedule. Deletion is the
// product behavior: an expired attempt leaves no record and the challenge
// becomes available again.
func (s *ChallengeService) SweepExpired(ctx context.Context, userID string) error {
	assocs, err := s.store.Query(ctx, userChallengesCollection,
		store.Where("userId", "==", userID),
		store.Where("status", "==", string(challenge.StatusInProgress)))
	if err != nil {
		return fmt.Errorf("failed to list in-progress challenges: %w", err)
	}

	now := s.now()
	var errs []error
	for _, doc := range assocs {
		uc := challenge.UserChallengeFromDoc(doc.ID, doc.Data)

		chDoc, err := s.store.Get(ctx, challengesCollection, uc.ChallengeID)
		if err != nil {
			errs = append(errs, fmt.Errorf("challenge %s: %w", uc.ChallengeID, err))
			continue
		}
		ch := challenge.FromDoc(chDoc.ID, chDoc.Data)

		deadline := uc.StartedAt.Add(time.Duration(ch.TimeLimitDays) * 24 * time.Hour)
		if now.After(deadline) {
			if err := s.store.Delete(ctx, userChallengesCollection, uc.ID); err != nil {
				errs = append(errs, fmt.Errorf("delete association %s: %w", uc.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
