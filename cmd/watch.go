package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ingestmon/internal/daemon"
	"ingestmon/internal/db"
	"ingestmon/internal/logger"
	"ingestmon/internal/logsource"
	"ingestmon/internal/metrics"
	"ingestmon/internal/model"
	"ingestmon/internal/parser"
	"ingestmon/internal/pipeline"
	"ingestmon/internal/procstat"
	"ingestmon/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Start the monitor daemon and dashboard",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	if err := db.Init(cfg.DBPath); err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	var events <-chan model.LogEvent

	watcher, err := logsource.NewWatcher(64)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Watch(cfg.LogPath); err != nil {
		logger.Log.Warn("log watcher unavailable, polling only",
			zap.String("path", cfg.LogPath),
			zap.Error(err))
	} else {
		// Rotated copies (media-ingest.log.1) count too.
		name := filepath.Base(cfg.LogPath)
		events = pipeline.Debounce(pipeline.Filter(watcher.Events(), []string{name, name + ".*"}), cfg.Debounce)
	}

	m := metrics.New()
	histRepo := repository.NewIngestRepository()

	mon := daemon.NewMonitor(daemon.MonitorOptions{
		Source:   logsource.NewFile(cfg.LogPath, cfg.TailLines),
		Checker:  procstat.New(cfg.ProcessName),
		Parser:   parser.New(cfg.ParserConfig()),
		Archive:  histRepo,
		Metrics:  m,
		Interval: cfg.PollInterval,
		Events:   events,
	})

	if err := m.Register(metrics.NewStatusCollector(mon)); err != nil {
		return err
	}
	defer m.UnregisterAll()

	srv := daemon.NewServer(daemon.ServerOptions{
		Monitor:   mon,
		History:   histRepo,
		Metrics:   m,
		Port:      cfg.Port,
		LogPath:   cfg.LogPath,
		StaticDir: cfg.StaticDir,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go mon.Run(ctx)
	srv.Start()

	logger.Log.Info("ingestmon daemon started",
		zap.String("log", cfg.LogPath),
		zap.String("process", cfg.ProcessName),
		zap.Int("port", cfg.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down",
			zap.String("signal", sig.String()))
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
