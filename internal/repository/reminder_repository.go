package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"petcal/internal/model"
)

// ReminderRepository manages reminder configurations, one per event.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *ReminderRepository) WithTx(tx *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: tx}
}

// GetOrCreate returns the reminder bound to the event, creating an empty one
// when none exists yet.
func (r *ReminderRepository) GetOrCreate(ctx context.Context, event *model.Event) (*model.ReminderSettings, error) {
	var reminder model.ReminderSettings
	db := r.db.WithContext(ctx)
	err := db.Where("event_id = ?", event.ID).First(&reminder).Error
	switch {
	case err == nil:
		return &reminder, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		reminder = model.ReminderSettings{EventID: event.ID, PetID: event.PetID, RepeatEvery: 1}
		if err := db.Create(&reminder).Error; err != nil {
			return nil, fmt.Errorf("create reminder: %w", err)
		}
		return &reminder, nil
	default:
		return nil, fmt.Errorf("find reminder: %w", err)
	}
}

func (r *ReminderRepository) Save(ctx context.Context, reminder *model.ReminderSettings) error {
	if err := r.db.WithContext(ctx).Save(reminder).Error; err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) FindByEvent(ctx context.Context, eventID uint) (*model.ReminderSettings, error) {
	var reminder model.ReminderSettings
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// FindByEvents returns reminders for the given events keyed by event ID.
func (r *ReminderRepository) FindByEvents(ctx context.Context, eventIDs []uint) (map[uint]model.ReminderSettings, error) {
	result := make(map[uint]model.ReminderSettings, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}
	var reminders []model.ReminderSettings
	if err := r.db.WithContext(ctx).Where("event_id IN ?", eventIDs).Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("find reminders: %w", err)
	}
	for _, rem := range reminders {
		result[rem.EventID] = rem
	}
	return result, nil
}
