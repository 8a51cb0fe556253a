package model

import "time"

// Known event types. EventTypeOther is free-form; everything else is a fixed category.
const (
	EventTypeWalk     = "walk"
	EventTypeVet      = "vet"
	EventTypeGrooming = "grooming"
	EventTypeVaccine  = "vaccine"
	EventTypePill     = "pill"
	EventTypeBirthday = "birthday"
	EventTypeOther    = "other"
)

// Event is a single calendar entry for a pet.
//
// A yearly series is a one-level tree: the first created entry is the head
// (SeriesID is nil) and every later entry of the same series points back at it.
type Event struct {
	ID              uint   `gorm:"primaryKey"`
	PetID           string `gorm:"index:idx_pet_title_date"`
	Title           string `gorm:"index:idx_pet_title_date"`
	EventType       string
	Date            time.Time `gorm:"index:idx_pet_title_date"`
	Time            string
	DurationMinutes *int
	Note            string
	IsYearly        bool `gorm:"default:false"`
	IsDone          bool `gorm:"default:false"`
	DoneYear        *int
	SeriesID        *uint `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsHead reports whether the event is the first entry of its series.
func (e *Event) IsHead() bool {
	return e.SeriesID == nil
}

// HeadID returns the ID of the series head, which is the event itself for heads.
func (e *Event) HeadID() uint {
	if e.SeriesID != nil {
		return *e.SeriesID
	}
	return e.ID
}

// DateOnly normalizes a timestamp to a calendar date (UTC midnight). Event
// dates are always stored in this form so equality filters behave.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
