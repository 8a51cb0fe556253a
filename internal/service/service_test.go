package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"petcal/internal/clock"
	"petcal/internal/model"
	"petcal/internal/repository"
	"petcal/pkg/logx"
)

// testNow is the frozen clock used by most tests.
var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	pet       *model.Pet
	events    *repository.EventRepository
	reminders *repository.ReminderRepository
	reminder  *ReminderService
	planner   *PlannerService
	editor    *EditorService
	rollover  *RolloverService
	pets      *PetService
}

var testDBCounter atomic.Int64

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	// A uniquely named shared-cache memory database: isolated per test, but
	// visible to every connection of this test's pool.
	dsn := fmt.Sprintf("file:petcal_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	pet := &model.Pet{Name: "Rex", PetType: "dog"}
	if err := db.Create(pet).Error; err != nil {
		t.Fatalf("create pet: %v", err)
	}

	clk := clock.Fixed(now)
	log := logx.Nop()
	eventRepo := repository.NewEventRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	petRepo := repository.NewPetRepository(db)
	reminderSvc := NewReminderService(reminderRepo, log)

	return &testEnv{
		pet:       pet,
		events:    eventRepo,
		reminders: reminderRepo,
		reminder:  reminderSvc,
		planner:   NewPlannerService(eventRepo, reminderSvc, clk, log),
		editor:    NewEditorService(eventRepo, reminderSvc, clk, log),
		rollover:  NewRolloverService(eventRepo, clk, log),
		pets:      NewPetService(petRepo, eventRepo, reminderSvc, clk, log),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
