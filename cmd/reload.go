package cmd

import (
	"context"
	"os"

	"github.com/smazurov/alsaprobe/internal/config"
	"github.com/smazurov/alsaprobe/internal/logging"
)

// watchLogLevels applies [logging] level changes from the config file until
// the returned function is called. Without a config file it does nothing.
func watchLogLevels(ctx context.Context, path string) func() {
	logger := logging.GetLogger("config")
	if path == "" {
		return func() {}
	}
	if _, err := os.Stat(path); err != nil {
		logger.Debug("Config file not found, log levels will not be reloaded", "path", path)
		return func() {}
	}

	watcher := config.NewConfigWatcher(path, config.ReadLoggingConfig, logger)
	watcher.OnReload(func(cfg logging.Config) {
		logging.SetLevels(cfg)
		logger.Info("Logging levels reloaded", "level", cfg.Level, "modules", cfg.Modules)
	})
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("Failed to watch config file", "path", path, "error", err)
		return func() {}
	}

	return func() {
		if err := watcher.Stop(); err != nil {
			logger.Warn("Failed to stop config watcher", "error", err)
		}
	}
}
