package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"petcal/internal/clock"
	"petcal/internal/model"
	"petcal/internal/repository"
	"petcal/pkg/logx"
)

// editedEventFields is the column set touched by series edits.
var editedEventFields = []string{"title", "event_type", "date", "time", "duration_minutes", "note", "is_yearly"}

// EditorService applies edits and deletions across one or many entries of a
// series under duplicate-safety rules.
type EditorService struct {
	events    *repository.EventRepository
	reminders *ReminderService
	clock     clock.Clock
	log       logx.Logger
}

func NewEditorService(events *repository.EventRepository, reminders *ReminderService, clk clock.Clock, log logx.Logger) *EditorService {
	return &EditorService{events: events, reminders: reminders, clock: clk, log: log}
}

// ResolveSeries returns the full series the event belongs to: the head first,
// then its continuations. A non-yearly event resolves to just itself.
func (s *EditorService) ResolveSeries(ctx context.Context, event *model.Event) ([]model.Event, error) {
	return s.resolveSeriesTx(ctx, s.events, event)
}

func (s *EditorService) resolveSeriesTx(ctx context.Context, events *repository.EventRepository, event *model.Event) ([]model.Event, error) {
	head := event
	if event.SeriesID != nil {
		found, err := events.FindByID(ctx, *event.SeriesID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("resolve series: %w", ErrNotFound)
			}
			return nil, fmt.Errorf("resolve series: %w", err)
		}
		head = found
	}

	continuations, err := events.Find(ctx, repository.EventFilter{SeriesID: &head.ID})
	if err != nil {
		return nil, err
	}
	return append([]model.Event{*head}, continuations...), nil
}

// ApplyEdits rewrites the given events from the template inside one
// transaction. When updateDate is set, each event keeps its own year and
// adopts the template's month and day (leap-safe); otherwise dates are left
// alone. Events whose resulting (title, date) pair collides, either with a
// pair already claimed in this batch or with a persisted event other than
// itself, are skipped. Only the accepted events are persisted and returned;
// callers compare the count against the input to detect partial application.
func (s *EditorService) ApplyEdits(ctx context.Context, events []model.Event, input EventInput, updateDate bool) ([]model.Event, error) {
	var updated []model.Event
	err := s.events.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		updated, err = s.applyEditsTx(ctx, s.events.WithTx(tx), events, input, updateDate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type titleDate struct {
	title string
	date  int64
}

func (s *EditorService) applyEditsTx(ctx context.Context, events *repository.EventRepository, targets []model.Event, input EventInput, updateDate bool) ([]model.Event, error) {
	claimed := make(map[titleDate]struct{}, len(targets))
	var updated []model.Event

	for _, ev := range targets {
		newDate := ev.Date
		if updateDate {
			var err error
			newDate, err = SafeDate(ev.Date.Year(), int(input.Date.Month()), input.Date.Day())
			if err != nil {
				return nil, err
			}
		}

		pair := titleDate{title: input.Title, date: newDate.Unix()}
		if _, taken := claimed[pair]; taken {
			continue
		}

		dup, err := events.ExistsDuplicate(ctx, ev.PetID, input.Title, newDate, ev.ID)
		if err != nil {
			return nil, err
		}
		if dup {
			s.log.Debug("skipping conflicting edit",
				logx.String("title", input.Title),
				logx.Time("date", newDate))
			continue
		}
		claimed[pair] = struct{}{}

		ev.Title = input.Title
		ev.EventType = input.EventType
		ev.Date = newDate
		ev.Time = input.Time
		ev.DurationMinutes = input.DurationMinutes
		ev.Note = input.Note
		ev.IsYearly = input.IsYearly
		updated = append(updated, ev)
	}

	if err := events.UpdateBatch(ctx, updated, editedEventFields); err != nil {
		return nil, err
	}
	return updated, nil
}

// EditEvent edits one event or, when applyToAll is set on a yearly event, its
// whole series. The selected rows are locked for the duration of the
// transaction so concurrent series-wide edits serialize instead of
// interleaving. The reminder template is reapplied to every accepted event
// with its date rebased onto that event's year.
func (s *EditorService) EditEvent(ctx context.Context, event *model.Event, input EventInput, reminder ReminderInput, applyToAll bool) ([]model.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	var updated []model.Event
	err := s.events.Transaction(ctx, func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)

		ids := []uint{event.ID}
		if applyToAll && event.IsYearly {
			series, err := s.resolveSeriesTx(ctx, events, event)
			if err != nil {
				return err
			}
			ids = ids[:0]
			for _, ev := range series {
				ids = append(ids, ev.ID)
			}
		}

		targets, err := events.LockForUpdate(ctx, repository.EventFilter{IDs: ids})
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return fmt.Errorf("edit event: %w", ErrNotFound)
		}

		updated, err = s.applyEditsTx(ctx, events, targets, input, true)
		if err != nil {
			return err
		}
		_, err = s.reminders.withTx(tx).SaveForEvents(ctx, updated, reminder)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(updated) < 1 {
		s.log.Warn("edit applied to no events", logx.String("title", input.Title))
	}
	return updated, nil
}

// DeleteSeries deletes the event or, with deleteAll, its entire series. A
// series head that still has continuations refuses a single-entry delete so a
// series can never be left orphaned.
func (s *EditorService) DeleteSeries(ctx context.Context, event *model.Event, deleteAll bool) error {
	return s.events.Transaction(ctx, func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)

		var series []model.Event
		if event.IsYearly {
			var err error
			series, err = s.resolveSeriesTx(ctx, events, event)
			if err != nil {
				return err
			}
		}

		if event.IsHead() && len(series) > 1 && !deleteAll {
			return fmt.Errorf("delete event: %w", ErrSeriesProtected)
		}

		ids := []uint{event.ID}
		if deleteAll && event.IsYearly {
			ids = ids[:0]
			for _, ev := range series {
				ids = append(ids, ev.ID)
			}
		}

		if err := events.Delete(ctx, repository.EventFilter{IDs: ids}); err != nil {
			return err
		}
		s.log.Info("events deleted", logx.Int("count", len(ids)))
		return nil
	})
}

// MarkDone marks the event completed for the current year.
func (s *EditorService) MarkDone(ctx context.Context, event *model.Event) error {
	year := s.clock.Now().Year()
	event.IsDone = true
	event.DoneYear = &year
	return s.events.Save(ctx, event)
}
