package root

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"dailytask/internal/alarm"
	"dailytask/internal/config"
	"dailytask/internal/ledger"
	"dailytask/internal/notify"
	"dailytask/internal/storage"
	"dailytask/internal/sweep"
	"dailytask/internal/tasks"
	"dailytask/internal/timer"
	"dailytask/internal/update"
)

func runApp() error {
	cfg := config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())

	log, err := buildLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	sugar := log.Sugar()

	repo, err := openRepository(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	engine := timer.NewEngine(timer.Options{
		BufferSize:   cfg.TimerBuffer,
		ExactAllowed: cfg.ExactAlarms,
		InexactSlack: cfg.InexactSlack,
	})
	engine.Start()
	defer engine.Stop()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.DesktopNotifications {
		notifier = notify.NewDesktop(sugar)
	}

	scheduler := alarm.NewScheduler(engine, notifier, sugar)
	handler := alarm.NewHandler(scheduler, notifier, sugar, cfg.LateThreshold)
	led := ledger.New(repo, sugar)
	svc := tasks.NewService(repo, led, scheduler, sugar)

	sweeper := sweep.New(repo, scheduler, time.Local, sugar)
	if _, err := sweeper.RearmAll(context.Background()); err != nil {
		sugar.Errorw("startup reminder sweep failed", "error", err)
	}
	if err := sweeper.Start(cfg.RolloverTime); err != nil {
		return err
	}
	defer sweeper.Stop()

	// One goroutine owns the engine output: it drives notifications and
	// re-arming, then forwards the firing to the TUI without blocking.
	uiFirings := make(chan timer.Firing, cfg.TimerBuffer)
	go func() {
		defer close(uiFirings)
		for firing := range engine.C() {
			handler.HandleFire(firing.Payload, time.Now())
			select {
			case uiFirings <- firing:
			default:
			}
		}
	}()

	program := tea.NewProgram(update.NewModel(svc, uiFirings))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

func openRepository(dbPath string) (*storage.SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	repo, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	if err := storage.MigrateUp(repo.DB()); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

func buildLogger(logPath string) (*zap.Logger, error) {
	if dir := filepath.Dir(logPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	// The terminal belongs to the TUI, so logs go to a file only.
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}
	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
