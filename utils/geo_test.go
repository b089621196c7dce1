package utils

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	if d := DistanceMeters(48.8584, 2.2945, 48.8584, 2.2945); d != 0 {
		t.Fatalf("zero distance expected, got %f", d)
	}

	// Eiffel Tower to the Louvre, roughly 3.2km.
	d := DistanceMeters(48.8584, 2.2945, 48.8606, 2.3376)
	if d < 3000 || d > 3500 {
		t.Fatalf("Eiffel Tower to Louvre = %f m, expected ~3200", d)
	}

	// Symmetric.
	back := DistanceMeters(48.8606, 2.3376, 48.8584, 2.2945)
	if math.Abs(d-back) > 1e-6 {
		t.Fatalf("distance not symmetric: %f vs %f", d, back)
	}
}
