package services

import (
	"context"
	"testing"

	"tripTagAPI/internal/store"
)

func seedAttraction(t *testing.T, st *store.MemoryStore, id, name string, lat, lng float64) {
	t.Helper()
	err := st.Set(context.Background(), "attractions", id, map[string]any{
		"name": name,
		"lat":  lat,
		"lng":  lng,
	})
	if err != nil {
		t.Fatalf("failed to seed attraction %s: %v", id, err)
	}
}

func TestGetNearbyAttractions(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewAttractionService(st)
	ctx := context.Background()

	// Eiffel Tower and the Louvre are ~3km apart; the Colosseum is ~1100km away.
	seedAttraction(t, st, "a1", "Eiffel Tower", 48.8584, 2.2945)
	seedAttraction(t, st, "a2", "Louvre", 48.8606, 2.3376)
	seedAttraction(t, st, "a3", "Colosseum", 41.8902, 12.4922)

	nearby, err := svc.GetNearbyAttractions(ctx, 48.8584, 2.2945, 5000)
	if err != nil {
		t.Fatalf("GetNearbyAttractions failed: %v", err)
	}
	if len(nearby) != 2 {
		t.Fatalf("expected 2 attractions within 5km of the Eiffel Tower, got %d", len(nearby))
	}
	for _, a := range nearby {
		if a.Name == "Colosseum" {
			t.Fatal("Rome is not within 5km of Paris")
		}
	}

	nearby, err = svc.GetNearbyAttractions(ctx, 48.8584, 2.2945, 100)
	if err != nil {
		t.Fatalf("GetNearbyAttractions failed: %v", err)
	}
	if len(nearby) != 1 || nearby[0].Name != "Eiffel Tower" {
		t.Fatalf("tight radius should match only the center, got %+v", nearby)
	}
}

func TestGetAttractionsByName(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewAttractionService(st)
	ctx := context.Background()

	seedAttraction(t, st, "a1", "Eiffel Tower", 48.8584, 2.2945)
	seedAttraction(t, st, "a2", "Louvre", 48.8606, 2.3376)
	seedAttraction(t, st, "a3", "Colosseum", 41.8902, 12.4922)

	got, err := svc.GetAttractionsByName(ctx, []string{"Eiffel Tower", "Colosseum"})
	if err != nil {
		t.Fatalf("GetAttractionsByName failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 attractions, got %d", len(got))
	}

	got, err = svc.GetAttractionsByName(ctx, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty name list should return nothing, got %v (err %v)", got, err)
	}
}
