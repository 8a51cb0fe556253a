// Package export renders a pet's calendar as an iCalendar feed. It is a
// read-only projection consumed by the outer web layer.
package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"petcal/internal/model"
)

const defaultEventDuration = time.Hour

// Feed serializes the pet's events as an iCalendar document. Yearly series
// collapse onto their head with a yearly repeat rule; continuation rows are
// skipped so consumers do not see each occurrence twice. Events with a
// configured reminder carry a display alarm.
func Feed(pet *model.Pet, events []model.Event, reminders map[uint]model.ReminderSettings) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//petcal//calendar//EN")

	for i := range events {
		ev := &events[i]
		if ev.IsYearly && !ev.IsHead() {
			continue
		}

		vev := cal.AddEvent(fmt.Sprintf("event-%d@petcal", ev.ID))
		vev.SetDtStampTime(ev.UpdatedAt)
		vev.SetSummary(fmt.Sprintf("%s: %s", pet.Name, ev.Title))
		if ev.Note != "" {
			vev.SetDescription(ev.Note)
		}

		if start, ok := eventStart(ev); ok {
			vev.SetStartAt(start)
			vev.SetEndAt(start.Add(eventDuration(ev)))
		} else {
			vev.SetAllDayStartAt(ev.Date)
			vev.SetAllDayEndAt(ev.Date.AddDate(0, 0, 1))
		}

		if ev.IsYearly {
			vev.AddRrule("FREQ=YEARLY")
		}

		if rem, ok := reminders[ev.ID]; ok && rem.RemindAt != "" {
			alarm := vev.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger("-PT0M")
		}
	}

	return cal.Serialize()
}

// eventStart combines the event date with its optional HH:MM time of day.
// The second return value is false for all-day events.
func eventStart(ev *model.Event) (time.Time, bool) {
	if ev.Time == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04", ev.Time)
	if err != nil {
		return time.Time{}, false
	}
	d := ev.Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}

func eventDuration(ev *model.Event) time.Duration {
	if ev.DurationMinutes != nil && *ev.DurationMinutes > 0 {
		return time.Duration(*ev.DurationMinutes) * time.Minute
	}
	return defaultEventDuration
}
