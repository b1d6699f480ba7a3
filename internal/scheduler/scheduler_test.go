package scheduler

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestAddJobValidation(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer svc.Stop()

	if _, err := svc.AddJob("", "* * * * *", maintenanceTimeout, func(context.Context) {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("job", " ", maintenanceTimeout, func(context.Context) {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("job", "not a cron", maintenanceTimeout, func(context.Context) {}); err == nil {
		t.Fatal("expected invalid cron expression to fail")
	}

	var nilService *Service
	if _, err := nilService.AddJob("job", "* * * * *", maintenanceTimeout, func(context.Context) {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRegisterMaintenanceJobs(t *testing.T) {
	svc, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer svc.Stop()

	noop := PrunerFunc(func(context.Context) (int, error) { return 0, nil })
	err = RegisterMaintenanceJobs(svc, "*/15 * * * *", map[string]Pruner{
		"prune_sessions":    noop,
		"prune_rate_limits": noop,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	names := svc.Jobs()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "prune_rate_limits" || names[1] != "prune_sessions" {
		t.Fatalf("unexpected jobs: %v", names)
	}

	if err := RegisterMaintenanceJobs(svc, "*/15 * * * *", map[string]Pruner{"broken": nil}); err == nil {
		t.Fatal("expected nil pruner to fail")
	}
}

func TestRunPrunerCallsPruner(t *testing.T) {
	calls := 0
	pruner := PrunerFunc(func(context.Context) (int, error) {
		calls++
		return 3, nil
	})

	runPruner("test", pruner)(context.Background())
	runPruner("failing", PrunerFunc(func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	}))(context.Background())

	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}
