package service

import (
	"context"

	"gorm.io/gorm"

	"petcal/internal/clock"
	"petcal/internal/model"
	"petcal/internal/repository"
	"petcal/pkg/logx"
)

// rolloverChunkSize bounds the number of source events handled per
// transaction. Each chunk commits on its own; the duplicate guard makes
// re-running a chunk after a crash harmless.
const rolloverChunkSize = 200

// RolloverService advances every active yearly series one step further into
// the future. It runs periodically: series whose oldest anchor sits at
// currentYear-1 receive one new continuation at currentYear+2, keeping each
// series populated two years ahead as time passes.
type RolloverService struct {
	events    *repository.EventRepository
	clock     clock.Clock
	log       logx.Logger
	chunkSize int
}

func NewRolloverService(events *repository.EventRepository, clk clock.Clock, log logx.Logger) *RolloverService {
	return &RolloverService{events: events, clock: clk, log: log, chunkSize: rolloverChunkSize}
}

// Run performs one rollover pass and returns the number of continuations
// created. Running it again for the same state creates nothing new.
func (s *RolloverService) Run(ctx context.Context) (int, error) {
	currentYear := s.clock.Now().Year()
	sourceYear := currentYear - 1
	targetYear := currentYear + 2

	yearly := true
	created := 0
	var lastID uint

	for {
		chunk, err := s.events.Find(ctx, repository.EventFilter{
			IsYearly: &yearly,
			DateYear: sourceYear,
			AfterID:  lastID,
			Limit:    s.chunkSize,
		})
		if err != nil {
			return created, err
		}
		if len(chunk) == 0 {
			break
		}

		err = s.events.Transaction(ctx, func(tx *gorm.DB) error {
			events := s.events.WithTx(tx)
			for i := range chunk {
				ok, err := s.extendSeries(ctx, events, &chunk[i], targetYear)
				if err != nil {
					return err
				}
				if ok {
					created++
				}
			}
			return nil
		})
		if err != nil {
			return created, err
		}

		lastID = chunk[len(chunk)-1].ID
		if len(chunk) < s.chunkSize {
			break
		}
	}

	s.log.Info("rollover pass finished",
		logx.Int("target_year", targetYear),
		logx.Int("created", created))
	return created, nil
}

func (s *RolloverService) extendSeries(ctx context.Context, events *repository.EventRepository, source *model.Event, targetYear int) (bool, error) {
	newDate, err := SafeDate(targetYear, int(source.Date.Month()), source.Date.Day())
	if err != nil {
		s.log.Debug("skipping series, date cannot be formed",
			logx.String("title", source.Title),
			logx.Int("year", targetYear))
		return false, nil
	}

	dup, err := events.ExistsDuplicate(ctx, source.PetID, source.Title, newDate, 0)
	if err != nil {
		return false, err
	}
	if dup {
		return false, nil
	}

	headID := source.HeadID()
	continuation := model.Event{
		PetID:           source.PetID,
		Title:           source.Title,
		EventType:       source.EventType,
		Date:            newDate,
		Time:            source.Time,
		DurationMinutes: source.DurationMinutes,
		Note:            source.Note,
		IsYearly:        true,
		SeriesID:        &headID,
	}
	if err := events.Create(ctx, &continuation); err != nil {
		return false, err
	}
	return true, nil
}
