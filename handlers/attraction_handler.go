package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"tripTagAPI/middleware"
	"tripTagAPI/services"
)

const defaultNearbyRadiusMeters = 5000

type AttractionHandler struct {
	attractionService *services.AttractionService
}

func NewAttractionHandler(attractionService *services.AttractionService) *AttractionHandler {
	return &AttractionHandler{
		attractionService: attractionService,
	}
}

func (h *AttractionHandler) GetAttractions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := middleware.GetUserID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	attractions, err := h.attractionService.GetAttractions(ctx)
	if err != nil {
		log.Printf("GetAttractions Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load attractions")
		return
	}

	respondWithJSON(w, http.StatusOK, attractions)
}

func (h *AttractionHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := middleware.GetUserID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'lat' is required")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'lng' is required")
		return
	}

	radius := float64(defaultNearbyRadiusMeters)
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'radius' must be a positive number")
			return
		}
	}

	attractions, err := h.attractionService.GetNearbyAttractions(ctx, lat, lng, radius)
	if err != nil {
		log.Printf("GetNearby Handler: %v", err)
		respondWithError(w, errorStatus(err), "Failed to load nearby attractions")
		return
	}

	respondWithJSON(w, http.StatusOK, attractions)
}
