package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"

	"petcal/internal/model"
	"petcal/internal/repository"
	"petcal/pkg/logx"
)

// ReminderService attaches and updates reminder configurations. Each event
// carries at most one configuration; it is created on first save and then
// overwritten in place.
type ReminderService struct {
	reminders *repository.ReminderRepository
	log       logx.Logger
}

func NewReminderService(reminders *repository.ReminderRepository, log logx.Logger) *ReminderService {
	return &ReminderService{reminders: reminders, log: log}
}

// withTx rebinds the service to a transaction handle so reminder writes join
// the surrounding event transaction.
func (s *ReminderService) withTx(tx *gorm.DB) *ReminderService {
	return &ReminderService{reminders: s.reminders.WithTx(tx), log: s.log}
}

// SaveReminder applies the template to the event's reminder configuration.
// Without a remind-at time there is nothing to configure and nil is returned.
//
// A repeating reminder never keeps an absolute date: Repeat=true clears
// RemindDate even when the template supplies one. For non-repeating reminders
// the supplied date is stored, rebased onto the event's own year when
// adjustDateToEventYear is set (used when one template fans out over a
// multi-year series).
func (s *ReminderService) SaveReminder(ctx context.Context, event *model.Event, input ReminderInput, adjustDateToEventYear bool) (*model.ReminderSettings, error) {
	if input.RemindAt == "" {
		return nil, nil
	}
	if _, _, err := parseClockTime(input.RemindAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	reminder, err := s.reminders.GetOrCreate(ctx, event)
	if err != nil {
		return nil, err
	}

	repeatEvery := input.RepeatEvery
	if repeatEvery <= 0 {
		repeatEvery = 1
	}

	reminder.RemindAt = input.RemindAt
	reminder.Repeat = input.Repeat
	reminder.RepeatDays = append(model.WeekdaySet(nil), input.RepeatDays...)
	reminder.RepeatEvery = repeatEvery

	switch {
	case input.Repeat:
		reminder.RepeatDays = normalizeWeekdays(reminder.RepeatDays)
		reminder.RemindDate = nil
	case input.RemindDate != nil:
		reminder.RepeatDays = nil
		date := model.DateOnly(*input.RemindDate)
		if adjustDateToEventYear {
			date, err = SafeDate(event.Date.Year(), int(date.Month()), date.Day())
			if err != nil {
				return nil, err
			}
		}
		reminder.RemindDate = &date
	default:
		reminder.RepeatDays = nil
		reminder.RemindDate = nil
	}

	if err := s.reminders.Save(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// SaveForEvents applies one template to every event of a series, rebasing any
// absolute reminder date onto each event's own year. Only configurations that
// were actually produced are returned.
func (s *ReminderService) SaveForEvents(ctx context.Context, events []model.Event, input ReminderInput) ([]model.ReminderSettings, error) {
	var saved []model.ReminderSettings
	for i := range events {
		reminder, err := s.SaveReminder(ctx, &events[i], input, true)
		if err != nil {
			return nil, err
		}
		if reminder != nil {
			saved = append(saved, *reminder)
		}
	}
	return saved, nil
}

// Occurrences previews the next n times the reminder would fire, starting at
// from. Repeating reminders expand as a weekly rule over RepeatDays with a
// RepeatEvery-week interval; non-repeating ones yield at most their single
// absolute date. This is a configuration preview, not a dispatch schedule.
func (s *ReminderService) Occurrences(reminder *model.ReminderSettings, from time.Time, n int) ([]time.Time, error) {
	if reminder == nil || reminder.RemindAt == "" || n <= 0 {
		return nil, nil
	}
	hour, minute, err := parseClockTime(reminder.RemindAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if !reminder.Repeat {
		if reminder.RemindDate == nil {
			return nil, nil
		}
		d := *reminder.RemindDate
		at := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, from.Location())
		if at.Before(from) {
			return nil, nil
		}
		return []time.Time{at}, nil
	}

	days := normalizeWeekdays(reminder.RepeatDays)
	if len(days) == 0 {
		return nil, nil
	}
	byWeekday := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		byWeekday = append(byWeekday, rruleWeekdays[d])
	}
	interval := reminder.RepeatEvery
	if interval <= 0 {
		interval = 1
	}

	// Anchor the rule at the first remind instant not before from; starting
	// at from's own date would spend one counted occurrence on an already
	// passed time of day.
	start := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())
	if start.Before(from) {
		start = start.AddDate(0, 0, 1)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  interval,
		Byweekday: byWeekday,
		Dtstart:   start,
		Count:     n,
	})
	if err != nil {
		return nil, fmt.Errorf("build repeat rule: %w", err)
	}

	occurrences := rule.All()
	result := make([]time.Time, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.Before(from) {
			continue
		}
		result = append(result, occ)
	}
	return result, nil
}

// rruleWeekdays maps the stored weekday indices (0=Monday) to rrule weekdays.
var rruleWeekdays = [7]rrule.Weekday{
	rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU,
}

// normalizeWeekdays drops out-of-range indices, removes duplicates and sorts.
func normalizeWeekdays(days model.WeekdaySet) model.WeekdaySet {
	seen := make(map[int]struct{}, len(days))
	var result model.WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		result = append(result, d)
	}
	sort.Ints([]int(result))
	return result
}
