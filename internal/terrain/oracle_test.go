package terrain

import (
	"context"
	"testing"
)

func TestStaticOracleKnownPoint(t *testing.T) {
	o := Static{Ft: map[[2]float64]float64{{48.0, 2.0}: 394}}
	ft, estimated, err := o.ElevationFt(context.Background(), 48.0, 2.0)
	if err != nil {
		t.Fatalf("ElevationFt: %v", err)
	}
	if estimated {
		t.Error("expected known point to not be flagged estimated")
	}
	if ft != 394 {
		t.Errorf("got %v ft, want 394", ft)
	}
}

func TestStaticOracleUnknownPointDegrades(t *testing.T) {
	o := Static{Ft: map[[2]float64]float64{}}
	ft, estimated, err := o.ElevationFt(context.Background(), 10.0, 10.0)
	if err != nil {
		t.Fatalf("ElevationFt: %v", err)
	}
	if !estimated {
		t.Error("expected unknown point to be flagged estimated")
	}
	if ft != 0 {
		t.Errorf("got %v ft, want 0", ft)
	}
}

func TestRound5Rounding(t *testing.T) {
	if round5(48.123456) != 48.12346 {
		t.Errorf("round5(48.123456) = %v, want 48.12346", round5(48.123456))
	}
}

func TestOpenElevationCachesByRoundedCoordinate(t *testing.T) {
	o := NewOpenElevation(0)
	o.cache[coordKey{48.12346, 2.00000}] = 500

	ft, estimated, err := o.ElevationFt(context.Background(), 48.123456, 2.0)
	if err != nil {
		t.Fatalf("ElevationFt: %v", err)
	}
	if estimated {
		t.Error("expected cache hit to not be flagged estimated")
	}
	if ft != 500 {
		t.Errorf("got %v ft, want 500 (cache hit)", ft)
	}
}
