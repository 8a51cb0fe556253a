package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"petcal/internal/model"
)

var testDBCounter atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:petcal_repo_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := NewDB(dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestRepos(t *testing.T) (*EventRepository, *ReminderRepository, *model.Pet) {
	t.Helper()

	db := newTestDB(t)
	pet := &model.Pet{Name: "Rex", PetType: "dog"}
	if err := NewPetRepository(db).Create(context.Background(), pet); err != nil {
		t.Fatalf("create pet: %v", err)
	}
	return NewEventRepository(db), NewReminderRepository(db), pet
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestEventIndexCoversDuplicateLookup(t *testing.T) {
	db := newTestDB(t)

	indexes, err := db.Migrator().GetIndexes(&model.Event{})
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	for _, idx := range indexes {
		if idx.Name() != "idx_pet_title_date" {
			continue
		}
		columns := make(map[string]bool)
		for _, c := range idx.Columns() {
			columns[c] = true
		}
		for _, want := range []string{"pet_id", "title", "date"} {
			if !columns[want] {
				t.Fatalf("idx_pet_title_date is missing %q, has %v", want, idx.Columns())
			}
		}
		return
	}
	t.Fatalf("idx_pet_title_date not found")
}

func TestExistsDuplicate(t *testing.T) {
	events, _, pet := newTestRepos(t)
	ctx := context.Background()

	event := model.Event{PetID: pet.ID, Title: "Vet visit", EventType: model.EventTypeVet, Date: date(2026, time.March, 15)}
	if err := events.Create(ctx, &event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	dup, err := events.ExistsDuplicate(ctx, pet.ID, "Vet visit", date(2026, time.March, 15), 0)
	if err != nil {
		t.Fatalf("check duplicate: %v", err)
	}
	if !dup {
		t.Fatalf("existing (title, date) pair not reported as duplicate")
	}

	// Excluding the event itself means no conflict for in-place edits.
	dup, err = events.ExistsDuplicate(ctx, pet.ID, "Vet visit", date(2026, time.March, 15), event.ID)
	if err != nil {
		t.Fatalf("check duplicate with exclude: %v", err)
	}
	if dup {
		t.Fatalf("event conflicts with itself despite exclusion")
	}

	dup, err = events.ExistsDuplicate(ctx, pet.ID, "Vet visit", date(2027, time.March, 15), 0)
	if err != nil {
		t.Fatalf("check duplicate other year: %v", err)
	}
	if dup {
		t.Fatalf("different date reported as duplicate")
	}
}

func TestFindByDateYear(t *testing.T) {
	events, _, pet := newTestRepos(t)
	ctx := context.Background()

	for _, d := range []time.Time{
		date(2025, time.December, 31),
		date(2026, time.January, 1),
		date(2026, time.December, 31),
		date(2027, time.January, 1),
	} {
		ev := model.Event{PetID: pet.ID, Title: "Walk " + d.Format("2006-01-02"), EventType: model.EventTypeWalk, Date: d}
		if err := events.Create(ctx, &ev); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	got, err := events.Find(ctx, EventFilter{PetID: pet.ID, DateYear: 2026})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("%d events in 2026, want 2", len(got))
	}
	for _, ev := range got {
		if ev.Date.Year() != 2026 {
			t.Fatalf("event %v leaked into the year window", ev.Date)
		}
	}
}

func TestDeleteRemovesReminders(t *testing.T) {
	events, reminders, pet := newTestRepos(t)
	ctx := context.Background()

	event := model.Event{PetID: pet.ID, Title: "Pill", EventType: model.EventTypePill, Date: date(2026, time.June, 1)}
	if err := events.Create(ctx, &event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	rem, err := reminders.GetOrCreate(ctx, &event)
	if err != nil {
		t.Fatalf("create reminder: %v", err)
	}
	rem.RemindAt = "08:00"
	if err := reminders.Save(ctx, rem); err != nil {
		t.Fatalf("save reminder: %v", err)
	}

	if err := events.Delete(ctx, EventFilter{IDs: []uint{event.ID}}); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	if _, err := reminders.FindByEvent(ctx, event.ID); err == nil {
		t.Fatalf("reminder survived event deletion")
	}
	left, err := events.Find(ctx, EventFilter{PetID: pet.ID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("%d events remain after delete", len(left))
	}
}
