package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Schedule führt run nach dem Cron-Ausdruck aus, bis ctx beendet wird. Fehler eines
// Laufs werden geloggt und brechen den Zeitplan nicht ab. Ein noch laufender Export
// wird nicht doppelt gestartet.
func Schedule(ctx context.Context, expr string, log *zap.Logger, run func(context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(expr, func() {
		log.Info("scheduled run started")
		if err := run(ctx); err != nil {
			log.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("ungültiger Cron-Ausdruck %q: %w", expr, err)
	}

	c.Start()
	log.Info("scheduler started", zap.String("schedule", expr))

	<-ctx.Done()

	// laufenden Export abwarten
	<-c.Stop().Done()
	log.Info("scheduler stopped")
	return nil
}
