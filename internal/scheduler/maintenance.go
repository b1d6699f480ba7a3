package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const maintenanceTimeout = time.Minute

// Pruner drops expired state and reports how many entries it removed.
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// PrunerFunc adapts a function to Pruner.
type PrunerFunc func(ctx context.Context) (int, error)

func (f PrunerFunc) Prune(ctx context.Context) (int, error) {
	return f(ctx)
}

// RegisterMaintenanceJobs schedules one pruning job per named pruner.
func RegisterMaintenanceJobs(svc *Service, cronExpr string, pruners map[string]Pruner) error {
	if svc == nil {
		return ErrNotInitialized
	}
	for name, pruner := range pruners {
		if pruner == nil {
			return fmt.Errorf("maintenance job %s has no pruner", name)
		}
		if _, err := svc.AddJob(name, cronExpr, maintenanceTimeout, runPruner(name, pruner)); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

func runPruner(name string, pruner Pruner) func(ctx context.Context) {
	return func(ctx context.Context) {
		logger := log.Ctx(ctx)
		removed, err := pruner.Prune(ctx)
		if err != nil {
			logger.Error().Err(err).Str("pruner", name).Msg("Prune failed")
			return
		}
		if removed > 0 {
			logger.Info().Str("pruner", name).Int("removed", removed).Msg("Pruned expired entries")
		}
	}
}
