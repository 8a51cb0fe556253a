package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"petcal/internal/clock"
	"petcal/internal/model"
	"petcal/internal/repository"
	"petcal/pkg/logx"
)

// seriesWindowYears is the forward window populated at creation time. The
// rollover job keeps advancing it as years pass.
const seriesWindowYears = 3

// PlannerService builds new calendar entries: single events and multi-year
// series with their reminders.
type PlannerService struct {
	events    *repository.EventRepository
	reminders *ReminderService
	clock     clock.Clock
	log       logx.Logger
}

func NewPlannerService(events *repository.EventRepository, reminders *ReminderService, clk clock.Clock, log logx.Logger) *PlannerService {
	return &PlannerService{events: events, reminders: reminders, clock: clk, log: log}
}

func validateEventInput(input EventInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: event title", ErrValidation)
	}
	if input.Date.IsZero() {
		return fmt.Errorf("%w: event date", ErrValidation)
	}
	return nil
}

// CreateYearly creates a full yearly series for the pet: it anchors the start
// year, fast-fails when the head date is already taken, populates the fixed
// forward window and fans the reminder template out over every created entry.
// The returned warning is a non-fatal advisory ("" when there is none).
func (s *PlannerService) CreateYearly(ctx context.Context, pet *model.Pet, input EventInput, reminder ReminderInput) ([]model.Event, string, error) {
	if err := validateEventInput(input); err != nil {
		return nil, "", err
	}

	startYear, warning := ResolveStartYear(input.Date, s.clock.Now().Year())
	if warning != "" {
		s.log.Warn("yearly series rebased",
			logx.String("pet", pet.Name),
			logx.String("title", input.Title),
			logx.Int("start_year", startYear))
	}

	startDate, err := SafeDate(startYear, int(input.Date.Month()), input.Date.Day())
	if err != nil {
		return nil, "", err
	}

	dup, err := s.events.ExistsDuplicate(ctx, pet.ID, input.Title, startDate, 0)
	if err != nil {
		return nil, "", err
	}
	if dup {
		return nil, "", fmt.Errorf("create yearly series: %w", ErrDuplicate)
	}

	years := make([]int, 0, seriesWindowYears)
	for i := 0; i < seriesWindowYears; i++ {
		years = append(years, startYear+i)
	}

	var created []model.Event
	err = s.events.Transaction(ctx, func(tx *gorm.DB) error {
		head, continuations, err := s.createSeriesTx(ctx, s.events.WithTx(tx), pet, input, years)
		if err != nil {
			return err
		}
		if head == nil {
			return fmt.Errorf("create yearly series: %w", ErrDuplicate)
		}
		created = append([]model.Event{*head}, continuations...)
		if _, err := s.reminders.withTx(tx).SaveForEvents(ctx, created, reminder); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.log.Info("yearly series created",
		logx.String("pet", pet.Name),
		logx.String("title", input.Title),
		logx.Int("events", len(created)))
	return created, warning, nil
}

// CreateSeries populates one event per requested year, skipping years whose
// (title, date) pair is already taken. The first surviving year becomes the
// series head; the rest are continuations persisted as one batch. A nil head
// means every year collided and the caller must treat the series as a full
// conflict.
func (s *PlannerService) CreateSeries(ctx context.Context, pet *model.Pet, input EventInput, years []int) (*model.Event, []model.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, nil, err
	}
	var head *model.Event
	var continuations []model.Event
	err := s.events.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		head, continuations, err = s.createSeriesTx(ctx, s.events.WithTx(tx), pet, input, years)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return head, continuations, nil
}

func (s *PlannerService) createSeriesTx(ctx context.Context, events *repository.EventRepository, pet *model.Pet, input EventInput, years []int) (*model.Event, []model.Event, error) {
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	var head *model.Event
	var continuations []model.Event

	for _, year := range sorted {
		seriesDate, err := SafeDate(year, int(input.Date.Month()), input.Date.Day())
		if err != nil {
			return nil, nil, err
		}

		dup, err := events.ExistsDuplicate(ctx, pet.ID, input.Title, seriesDate, 0)
		if err != nil {
			return nil, nil, err
		}
		if dup {
			s.log.Debug("skipping duplicate series year",
				logx.String("title", input.Title),
				logx.Int("year", year))
			continue
		}

		event := model.Event{
			PetID:           pet.ID,
			Title:           input.Title,
			EventType:       input.EventType,
			Date:            seriesDate,
			Time:            input.Time,
			DurationMinutes: input.DurationMinutes,
			Note:            input.Note,
			IsYearly:        true,
		}

		if head == nil {
			// The head is persisted on its own so continuations can
			// reference its ID.
			if err := events.Create(ctx, &event); err != nil {
				return nil, nil, err
			}
			head = &event
		} else {
			event.SeriesID = &head.ID
			continuations = append(continuations, event)
		}
	}

	if err := events.CreateBatch(ctx, continuations); err != nil {
		return nil, nil, err
	}
	return head, continuations, nil
}

// CreateSingle creates one non-yearly event with its reminder.
func (s *PlannerService) CreateSingle(ctx context.Context, pet *model.Pet, input EventInput, reminder ReminderInput) (*model.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	dup, err := s.events.ExistsDuplicate(ctx, pet.ID, input.Title, input.Date, 0)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("create event: %w", ErrDuplicate)
	}

	event := model.Event{
		PetID:           pet.ID,
		Title:           input.Title,
		EventType:       input.EventType,
		Date:            model.DateOnly(input.Date),
		Time:            input.Time,
		DurationMinutes: input.DurationMinutes,
		Note:            input.Note,
	}

	err = s.events.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.events.WithTx(tx).Create(ctx, &event); err != nil {
			return err
		}
		_, err := s.reminders.withTx(tx).SaveReminder(ctx, &event, reminder, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}
