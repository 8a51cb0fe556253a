package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petcal/internal/model"
)

// EventFilter narrows event queries. Zero-valued fields are ignored.
type EventFilter struct {
	PetID     string
	Title     string
	EventType string
	Date      *time.Time
	DateYear  int
	IsYearly  *bool
	SeriesID  *uint
	IDs       []uint
	ExcludeID uint
	AfterID   uint
	Limit     int
}

func (f EventFilter) apply(db *gorm.DB) *gorm.DB {
	if f.PetID != "" {
		db = db.Where("pet_id = ?", f.PetID)
	}
	if f.Title != "" {
		db = db.Where("title = ?", f.Title)
	}
	if f.EventType != "" {
		db = db.Where("event_type = ?", f.EventType)
	}
	if f.Date != nil {
		db = db.Where("date = ?", model.DateOnly(*f.Date))
	}
	if f.DateYear != 0 {
		from := time.Date(f.DateYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		db = db.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
	}
	if f.IsYearly != nil {
		db = db.Where("is_yearly = ?", *f.IsYearly)
	}
	if f.SeriesID != nil {
		db = db.Where("series_id = ?", *f.SeriesID)
	}
	if len(f.IDs) > 0 {
		db = db.Where("id IN ?", f.IDs)
	}
	if f.ExcludeID != 0 {
		db = db.Where("id <> ?", f.ExcludeID)
	}
	if f.AfterID != 0 {
		db = db.Where("id > ?", f.AfterID)
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	return db
}

// EventRepository handles persistence for calendar events.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

// Transaction runs fn inside one database transaction. Any error rolls the
// whole transaction back.
func (r *EventRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	event.Date = model.DateOnly(event.Date)
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// CreateBatch inserts all events in one statement.
func (r *EventRepository) CreateBatch(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	for i := range events {
		events[i].Date = model.DateOnly(events[i].Date)
	}
	if err := r.db.WithContext(ctx).Create(&events).Error; err != nil {
		return fmt.Errorf("create events: %w", err)
	}
	return nil
}

// UpdateBatch persists the given fields of every event. Callers are expected
// to wrap multi-event updates in Transaction.
func (r *EventRepository) UpdateBatch(ctx context.Context, events []model.Event, fields []string) error {
	db := r.db.WithContext(ctx)
	for i := range events {
		events[i].Date = model.DateOnly(events[i].Date)
		if err := db.Model(&events[i]).Select(fields).Updates(&events[i]).Error; err != nil {
			return fmt.Errorf("update event: %w", err)
		}
	}
	return nil
}

func (r *EventRepository) Save(ctx context.Context, event *model.Event) error {
	event.Date = model.DateOnly(event.Date)
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Find(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	var events []model.Event
	db := filter.apply(r.db.WithContext(ctx)).Order("id ASC")
	if err := db.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return events, nil
}

// LockForUpdate reads the filtered rows under a row-level write lock held for
// the remainder of the surrounding transaction. SQLite serializes writers at
// the database level and does not parse FOR UPDATE, so the clause is only
// added for server databases.
func (r *EventRepository) LockForUpdate(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	db := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var events []model.Event
	if err := filter.apply(db).Order("id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("lock events: %w", err)
	}
	return events, nil
}

// ExistsDuplicate reports whether the pet already has an event with the same
// title and date. excludeID, when non-zero, ignores one event (in-place edits).
func (r *EventRepository) ExistsDuplicate(ctx context.Context, petID, title string, date time.Time, excludeID uint) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("pet_id = ? AND title = ? AND date = ?", petID, title, model.DateOnly(date))
	if excludeID != 0 {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return count > 0, nil
}

// Delete removes all events matched by the filter and their reminders.
func (r *EventRepository) Delete(ctx context.Context, filter EventFilter) error {
	db := r.db.WithContext(ctx)

	var ids []uint
	if err := filter.apply(db.Model(&model.Event{})).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := db.Where("event_id IN ?", ids).Delete(&model.ReminderSettings{}).Error; err != nil {
		return fmt.Errorf("delete reminders: %w", err)
	}
	if err := db.Where("id IN ?", ids).Delete(&model.Event{}).Error; err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}
