package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WeekdaySet stores weekday indices (0=Monday .. 6=Sunday) as a JSON column.
type WeekdaySet []int

func (s WeekdaySet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]int(s))
	if err != nil {
		return nil, fmt.Errorf("marshal weekday set: %w", err)
	}
	return string(data), nil
}

func (s *WeekdaySet) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan weekday set: unsupported type %T", value)
	}
	if len(data) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(data, (*[]int)(s))
}

// ReminderSettings is the one reminder configuration attached to an event.
//
// RemindDate is only meaningful for non-repeating reminders; enabling Repeat
// always clears it.
type ReminderSettings struct {
	ID          uint   `gorm:"primaryKey"`
	EventID     uint   `gorm:"uniqueIndex"`
	PetID       string `gorm:"index"`
	RemindAt    string
	Repeat      bool       `gorm:"default:false"`
	RepeatDays  WeekdaySet `gorm:"type:text"`
	RepeatEvery int        `gorm:"default:1"`
	RemindDate  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
