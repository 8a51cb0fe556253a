package service

import (
	"context"
	"testing"
	"time"

	"petcal/internal/model"
	"petcal/internal/repository"
)

// seedAgedSeries creates a yearly series whose oldest entry sits at
// currentYear-1, the anchor the rollover job looks for.
func seedAgedSeries(t *testing.T, env *testEnv, title string, month time.Month, day int) []model.Event {
	t.Helper()
	input := EventInput{Title: title, EventType: model.EventTypeVaccine, Date: date(2025, month, day), IsYearly: true}
	head, continuations, err := env.planner.CreateSeries(context.Background(), env.pet, input, []int{2025, 2026, 2027})
	if err != nil {
		t.Fatalf("seed series: %v", err)
	}
	return append([]model.Event{*head}, continuations...)
}

func TestRolloverExtendsSeries(t *testing.T) {
	env := newTestEnv(t, testNow) // clock year 2026
	ctx := context.Background()
	series := seedAgedSeries(t, env, "Vaccination", time.March, 15)

	created, err := env.rollover.Run(ctx)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	d := date(2028, time.March, 15)
	added, err := env.events.Find(ctx, repository.EventFilter{PetID: env.pet.ID, Date: &d})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("expected one 2028 continuation, got %d", len(added))
	}
	if added[0].SeriesID == nil || *added[0].SeriesID != series[0].ID {
		t.Fatalf("continuation references %v, want head %d", added[0].SeriesID, series[0].ID)
	}
}

func TestRolloverIsIdempotent(t *testing.T) {
	env := newTestEnv(t, testNow)
	ctx := context.Background()
	seedAgedSeries(t, env, "Vaccination", time.March, 15)

	if _, err := env.rollover.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	created, err := env.rollover.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if created != 0 {
		t.Fatalf("second run created %d events, want 0", created)
	}
	if got := countEvents(t, env); got != 4 {
		t.Fatalf("%d events total, want 4", got)
	}
}

func TestRolloverSkipsNonYearlyAndWrongYears(t *testing.T) {
	env := newTestEnv(t, testNow)
	ctx := context.Background()

	single := model.Event{PetID: env.pet.ID, Title: "One walk", EventType: model.EventTypeWalk, Date: date(2025, time.May, 1)}
	if err := env.events.Create(ctx, &single); err != nil {
		t.Fatalf("seed single: %v", err)
	}
	fresh := model.Event{PetID: env.pet.ID, Title: "Fresh series", EventType: model.EventTypeVet, Date: date(2026, time.May, 1), IsYearly: true}
	if err := env.events.Create(ctx, &fresh); err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	created, err := env.rollover.Run(ctx)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	if created != 0 {
		t.Fatalf("created = %d, want 0", created)
	}
}

func TestRolloverCorrectsLeapDayTarget(t *testing.T) {
	env := newTestEnv(t, time.Date(2027, time.June, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// Head anchored at 2026 (currentYear-1 for the 2027 clock), Feb 29
	// source series; the 2029 target is not a leap year.
	head := model.Event{PetID: env.pet.ID, Title: "Leap vaccination", EventType: model.EventTypeVaccine, Date: date(2026, time.February, 28), IsYearly: true}
	if err := env.events.Create(ctx, &head); err != nil {
		t.Fatalf("seed: %v", err)
	}

	created, err := env.rollover.Run(ctx)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	d := date(2029, time.February, 28)
	added, err := env.events.Find(ctx, repository.EventFilter{PetID: env.pet.ID, Date: &d})
	if err != nil || len(added) != 1 {
		t.Fatalf("expected one 2029-02-28 continuation, got %d (err %v)", len(added), err)
	}
}

func TestRolloverChunkingCoversAllSeries(t *testing.T) {
	env := newTestEnv(t, testNow)
	ctx := context.Background()
	env.rollover.chunkSize = 2

	titles := []string{"A", "B", "C", "D", "E"}
	for _, title := range titles {
		seed := model.Event{PetID: env.pet.ID, Title: title, EventType: model.EventTypeVet, Date: date(2025, time.March, 15), IsYearly: true}
		if err := env.events.Create(ctx, &seed); err != nil {
			t.Fatalf("seed %s: %v", title, err)
		}
	}

	created, err := env.rollover.Run(ctx)
	if err != nil {
		t.Fatalf("rollover: %v", err)
	}
	if created != len(titles) {
		t.Fatalf("created = %d, want %d", created, len(titles))
	}

	created, err = env.rollover.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if created != 0 {
		t.Fatalf("second run created %d, want 0", created)
	}
}
