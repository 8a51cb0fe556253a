package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petcal/internal/clock"
	"petcal/internal/config"
	"petcal/internal/repository"
	"petcal/internal/service"
	"petcal/pkg/logx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		logx.NewConsole("ERROR").Error("config", logx.Err(err))
		os.Exit(1)
	}

	log, logCloser := logx.New(cfg.Log.Level, cfg.Log.Console, cfg.Log.File)
	if logCloser != nil {
		defer logCloser.Close()
	}

	db, err := repository.NewDB(cfg.Database)
	if err != nil {
		log.Error("db", logx.Err(err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	eventRepo := repository.NewEventRepository(db)
	clk := clock.System()

	rolloverSvc := service.NewRolloverService(eventRepo, clk, log.With(logx.String("job", "rollover")))

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleDaily(cfg.RolloverTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := rolloverSvc.Run(jobCtx); err != nil {
			log.Error("rollover run failed", logx.Err(err))
		}
	}); err != nil {
		log.Error("schedule rollover", logx.Err(err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Info("pet calendar daemon started",
		logx.String("database", cfg.Database),
		logx.String("rollover_time", cfg.RolloverTime))

	<-ctx.Done()
	log.Info("shutdown complete")
}
