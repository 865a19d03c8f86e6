package config

import (
	"context"
	"log/slog"

	"github.com/beesafe/broodwatch/internal/fswatch"
)

// Watch reloads path on every change and passes the new Config to
// onChange. It runs until ctx is cancelled.
//
// A reload that fails to load or validate is logged and skipped, leaving the
// caller's previous Config in effect.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	return fswatch.File(ctx, path, func() {
		cfg, err := Load(path)
		if err != nil {
			slog.Error("config: reload failed, keeping previous config",
				"path", path, "err", err)
			return
		}
		slog.Info("config: reloaded", "path", path)
		onChange(cfg)
	})
}
