package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := OpenSQLite(filepath.Join(t.TempDir(), "irrigation.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDecision(class irrigation.DecisionClass, at time.Time) irrigation.Decision {
	return irrigation.Decision{
		ID:         "dec-" + at.Format("150405"),
		Class:      class,
		ProducedAt: at,
		Reading: irrigation.Reading{
			GeneratedAt:         at,
			SoilMoistureSurface: 0.12,
			SoilMoistureDepth:   0.30,
			SoilTemperature:     22.0,
			AirTemperature:      28.0,
			AirHumidity:         45.0,
			Precipitation:       0.0,
			ET0:                 3.5,
			WeatherLastUpdate:   "2026-06-15 13:45",
		},
	}
}

func TestDecisionLogAppendAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestDecision(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store: err = %v, want ErrNotFound", err)
	}

	base := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		d := testDecision(irrigation.ClassOn, base.Add(time.Duration(i)*time.Minute))
		if err := s.AppendDecision(ctx, d); err != nil {
			t.Fatalf("append decision %d: %v", i, err)
		}
	}

	latest, err := s.LatestDecision(ctx)
	if err != nil {
		t.Fatalf("latest decision: %v", err)
	}
	if !latest.ProducedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("latest produced at %v, want %v", latest.ProducedAt, base.Add(2*time.Minute))
	}
	if latest.Reading.SoilMoistureDepth != 0.30 || latest.Reading.ET0 != 3.5 {
		t.Fatalf("reading fields lost in roundtrip: %+v", latest.Reading)
	}
	if latest.Reading.WeatherLastUpdate != "2026-06-15 13:45" {
		t.Fatalf("provider timestamp lost: %q", latest.Reading.WeatherLastUpdate)
	}
}

func TestDecisionsInRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		d := testDecision(irrigation.ClassOff, base.Add(time.Duration(i)*time.Hour))
		if err := s.AppendDecision(ctx, d); err != nil {
			t.Fatalf("append decision %d: %v", i, err)
		}
	}

	got, err := s.DecisionsInRange(ctx, base.Add(time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("decisions in range: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d decisions, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ProducedAt.Before(got[i-1].ProducedAt) {
			t.Fatal("decisions not ordered by timestamp ascending")
		}
	}

	if _, err := s.DecisionsInRange(ctx, base.Add(24*time.Hour), base.Add(48*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty range: err = %v, want ErrNotFound", err)
	}
}

func TestRelayCommandSlotOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.RelayCommand(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty slot: err = %v, want ErrNotFound", err)
	}

	first := irrigation.Command{State: irrigation.RelayOn, IssuedAt: time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)}
	if err := s.SetRelayCommand(ctx, first); err != nil {
		t.Fatalf("set relay command: %v", err)
	}

	second := irrigation.Command{State: irrigation.RelayOff, IssuedAt: first.IssuedAt.Add(time.Minute)}
	if err := s.SetRelayCommand(ctx, second); err != nil {
		t.Fatalf("overwrite relay command: %v", err)
	}

	got, err := s.RelayCommand(ctx)
	if err != nil {
		t.Fatalf("relay command: %v", err)
	}
	if got.State != irrigation.RelayOff {
		t.Fatalf("relay state = %v, want OFF (last writer wins)", got.State)
	}
	if !got.IssuedAt.Equal(second.IssuedAt) {
		t.Fatalf("issued at %v, want %v", got.IssuedAt, second.IssuedAt)
	}
}
