package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agalitsyn/sqlite"
	log "github.com/go-pkgz/lgr"

	"daytriage/internal/app"
	"daytriage/internal/assist"
	"daytriage/internal/schedule"
	storage "daytriage/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	setupLogger(cfg.Log.Level)

	if cfg.Debug {
		log.Printf("[DEBUG] running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
	}

	db, err := sqlite.Connect(cfg.DBPath)
	if err != nil {
		log.Printf("[FATAL] could not connect to database: %s", err)
	}
	defer db.Close()

	if err := sqlite.MigrateUp(db, storage.Migrations); err != nil {
		log.Printf("[FATAL] could not apply migrations: %s", err)
	}

	repo := storage.NewTaskStorage(db)
	tasks, err := repo.Load(ctx)
	if err != nil {
		// Corrupt storage is not fatal, start over with an empty collection.
		log.Printf("[WARN] could not load tasks, starting empty: %s", err)
		tasks = nil
	}
	log.Printf("[INFO] loaded %d tasks", len(tasks))

	client := assist.NewClient(cfg.AnthropicKey.Unmask())

	schedCfg := schedule.DefaultConfig()
	schedCfg.BedtimeHour = cfg.BedtimeHour
	sched := schedule.New(schedCfg, client, tasks, time.Now())

	bot, err := app.NewBot(
		app.BotConfig{
			UpdateTimeout: 60,
			TickInterval:  cfg.TickInterval,
			WakeUpHour:    cfg.WakeUpHour,
		},
		cfg.Token.Unmask(),
		sched,
		client,
		repo,
	)
	if err != nil {
		log.Printf("[FATAL] could not init bot: %s", err)
	}
	if cfg.Debug {
		bot.SetDebug(true)
	}
	log.Printf("[INFO] authorized as %s", bot.Self().UserName)

	bot.Start(ctx)
}

func setupLogger(level string) {
	opts := []log.Option{log.Msec, log.LevelBraces}
	if level == "debug" {
		opts = append(opts, log.Debug, log.CallerFile, log.CallerFunc)
	}
	log.Setup(opts...)
}
