package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tripTagAPI/middleware"
	"tripTagAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

func (h *ChallengeHandler) GetAvailableChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.challengeService.GetAvailableChallenges(ctx, userID)
	if err != nil {
		log.Printf("GetAvailableChallenges Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load available challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetActiveChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.challengeService.GetActiveChallenges(ctx, userID)
	if err != nil {
		log.Printf("GetActiveChallenges Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load active challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetFinishedChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.challengeService.GetFinishedChallenges(ctx, userID)
	if err != nil {
		log.Printf("GetFinishedChallenges Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load finished challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetUserChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userChallenges, err := h.challengeService.GetUserChallenges(ctx, userID)
	if err != nil {
		log.Printf("GetUserChallenges Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load challenge progress")
		return
	}

	respondWithJSON(w, http.StatusOK, userChallenges)
}

func (h *ChallengeHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID := mux.Vars(r)["challengeId"]
	if challengeID == "" {
		respondWithError(w, http.StatusBadRequest, "challengeId is required")
		return
	}

	if err := h.challengeService.StartChallenge(ctx, userID, challengeID); err != nil {
		log.Printf("StartChallenge Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to start challenge")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "Challenge started",
	})
}

func (h *ChallengeHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req struct {
		Attraction string `json:"attraction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Attraction == "" {
		respondWithError(w, http.StatusBadRequest, "attraction is required")
		return
	}

	if err := h.challengeService.RecordAttractionVisit(ctx, userID, req.Attraction); err != nil {
		log.Printf("RecordVisit Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to record visit")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Visit recorded",
	})
}

func (h *ChallengeHandler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.challengeService.SweepExpired(ctx, userID); err != nil {
		log.Printf("SweepExpired Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to expire challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Expired challenges removed",
	})
}
