package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"petcal/internal/clock"
	"petcal/internal/model"
	"petcal/internal/repository"
	"petcal/pkg/logx"
)

const birthdayTitle = "Birthday"

// PetService manages pet profiles and keeps each pet's yearly birthday series
// in sync with its birthday.
type PetService struct {
	pets      *repository.PetRepository
	events    *repository.EventRepository
	reminders *ReminderService
	clock     clock.Clock
	log       logx.Logger
}

func NewPetService(pets *repository.PetRepository, events *repository.EventRepository, reminders *ReminderService, clk clock.Clock, log logx.Logger) *PetService {
	return &PetService{pets: pets, events: events, reminders: reminders, clock: clk, log: log}
}

// CreatePet stores a new pet and, when a birthday is known, seeds its yearly
// birthday series.
func (s *PetService) CreatePet(ctx context.Context, input PetInput) (*model.Pet, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: pet name", ErrValidation)
	}

	pet := &model.Pet{
		Name:          input.Name,
		PetType:       input.PetType,
		CustomPetType: input.CustomPetType,
		Birthday:      input.Birthday,
		Breed:         input.Breed,
		Weight:        input.Weight,
		Gender:        input.Gender,
		Features:      input.Features,
	}

	err := s.events.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.pets.WithTx(tx).Create(ctx, pet); err != nil {
			return err
		}
		return s.rebuildBirthdaySeries(ctx, tx, pet)
	})
	if err != nil {
		return nil, err
	}
	return pet, nil
}

// UpdatePet applies profile changes and rebuilds the birthday series so its
// dates track the (possibly changed) birthday.
func (s *PetService) UpdatePet(ctx context.Context, pet *model.Pet, input PetInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: pet name", ErrValidation)
	}

	pet.Name = input.Name
	pet.PetType = input.PetType
	pet.CustomPetType = input.CustomPetType
	pet.Birthday = input.Birthday
	pet.Breed = input.Breed
	pet.Weight = input.Weight
	pet.Gender = input.Gender
	pet.Features = input.Features

	return s.events.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.pets.WithTx(tx).Save(ctx, pet); err != nil {
			return err
		}
		return s.rebuildBirthdaySeries(ctx, tx, pet)
	})
}

// DeletePet removes the pet together with its whole calendar.
func (s *PetService) DeletePet(ctx context.Context, petID string) error {
	if err := s.pets.Delete(ctx, petID); err != nil {
		return err
	}
	s.log.Info("pet deleted")
	return nil
}

// rebuildBirthdaySeries drops any existing yearly birthday events and creates
// a fresh three-year series anchored at the current year. Every entry gets a
// 09:00 reminder dated on its own year's birthday; the series carries the
// yearly recurrence, so the reminders stay non-repeating.
func (s *PetService) rebuildBirthdaySeries(ctx context.Context, tx *gorm.DB, pet *model.Pet) error {
	events := s.events.WithTx(tx)

	yearly := true
	if err := events.Delete(ctx, repository.EventFilter{
		PetID:     pet.ID,
		EventType: model.EventTypeBirthday,
		IsYearly:  &yearly,
	}); err != nil {
		return err
	}

	if pet.Birthday == nil {
		return nil
	}
	birthday := *pet.Birthday
	currentYear := s.clock.Now().Year()

	var head *model.Event
	var created []model.Event
	for year := currentYear; year < currentYear+seriesWindowYears; year++ {
		date, err := SafeDate(year, int(birthday.Month()), birthday.Day())
		if err != nil {
			return err
		}

		event := model.Event{
			PetID:     pet.ID,
			Title:     birthdayTitle,
			EventType: model.EventTypeBirthday,
			Date:      date,
			Note:      fmt.Sprintf("%s's birthday", pet.Name),
			IsYearly:  true,
		}
		if head != nil {
			event.SeriesID = &head.ID
		}
		if err := events.Create(ctx, &event); err != nil {
			return err
		}
		if head == nil {
			head = &event
		}
		created = append(created, event)
	}

	remindDate := model.DateOnly(birthday)
	if _, err := s.reminders.withTx(tx).SaveForEvents(ctx, created, ReminderInput{
		RemindAt:   "09:00",
		RemindDate: &remindDate,
	}); err != nil {
		return err
	}

	s.log.Info("birthday series rebuilt", logx.String("pet", pet.Name))
	return nil
}
