package service

import "time"

// EventInput carries already-validated form data for creating or editing an
// event. Date and time parsing belongs to the outer layers.
type EventInput struct {
	Title           string
	EventType       string
	Date            time.Time
	Time            string
	DurationMinutes *int
	Note            string
	IsYearly        bool
}

// ReminderInput carries the reminder template applied to one event or to a
// whole series. An empty RemindAt means "no reminder".
type ReminderInput struct {
	RemindAt    string
	RemindDate  *time.Time
	Repeat      bool
	RepeatDays  []int
	RepeatEvery int
}

// PetInput carries the pet profile fields.
type PetInput struct {
	Name          string
	PetType       string
	CustomPetType string
	Birthday      *time.Time
	Breed         string
	Weight        *float64
	Gender        string
	Features      string
}
