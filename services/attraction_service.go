package services

import (
	"context"
	"fmt"

	"tripTagAPI/internal/store"
	"tripTagAPI/internal/types/attraction"
	"tripTagAPI/utils"
)

type AttractionService struct {
	store store.DocumentStore
}

func NewAttractionService(st store.DocumentStore) *AttractionService {
	return &AttractionService{store: st}
}

func (s *AttractionService) GetAttractions(ctx context.Context) ([]*attraction.Attraction, error) {
	docs, err := s.store.Query(ctx, attractionsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list attractions: %w", err)
	}

	attractions := make([]*attraction.Attraction, 0, len(docs))
	for _, doc := range docs {
		attractions = append(attractions, attraction.FromDoc(doc.ID, doc.Data))
	}
	return attractions, nil
}

// GetNearbyAttractions filters the catalog by great-circle distance. The
// catalog is small (tens of entries), so a full scan plus client-side filter
// is fine.
func (s *AttractionService) GetNearbyAttractions(ctx context.Context, lat, lng, radiusMeters float64) ([]*attraction.Attraction, error) {
	all, err := s.GetAttractions(ctx)
	if err != nil {
		return nil, err
	}

	nearby := []*attraction.Attraction{}
	for _, a := range all {
		if utils.DistanceMeters(lat, lng, a.Lat, a.Lng) <= radiusMeters {
			nearby = append(nearby, a)
		}
	}
	return nearby, nil
}

// GetAttractionsByName resolves attraction names in chunks of ten, the
// backend's "in" query limit.
func (s *AttractionService) GetAttractionsByName(ctx context.Context, names []string) ([]*attraction.Attraction, error) {
	attractions := []*attraction.Attraction{}
	for start := 0; start < len(names); start += 10 {
		end := start + 10
		if end > len(names) {
			end = len(names)
		}
		docs, err := s.store.Query(ctx, attractionsCollection,
			store.Where("name", "in", names[start:end]))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch attractions: %w", err)
		}
		for _, doc := range docs {
			attractions = append(attractions, attraction.FromDoc(doc.ID, doc.Data))
		}
	}
	return attractions, nil
}
