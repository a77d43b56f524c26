package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// HealthChecker is a single dependency probed by the health endpoint
type HealthChecker interface {
	Name() string
	IsCritical() bool
	HealthCheck(ctx context.Context) error
}

// HealthManager runs the registered health checkers
type HealthManager struct {
	checkers []HealthChecker
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewHealthManager creates a new health manager
func NewHealthManager(logger *zap.Logger) *HealthManager {
	return &HealthManager{
		checkers: make([]HealthChecker, 0),
		logger:   logger,
	}
}

// AddChecker adds a health checker to the manager
func (h *HealthManager) AddChecker(checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// StartupHealthCheck performs critical health checks that must pass for startup
func (h *HealthManager) StartupHealthCheck(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var criticalFailures []error

	for _, checker := range h.checkers {
		err := checker.HealthCheck(ctx)
		if err == nil {
			continue
		}
		if checker.IsCritical() {
			criticalFailures = append(criticalFailures, fmt.Errorf("%s: %w", checker.Name(), err))
			h.logger.Error("Critical service health check failed",
				zap.String("service", checker.Name()),
				zap.Error(err))
		} else {
			h.logger.Warn("Non-critical service health check failed",
				zap.String("service", checker.Name()),
				zap.Error(err))
		}
	}

	if len(criticalFailures) > 0 {
		return fmt.Errorf("critical services failed health check: %v", criticalFailures)
	}

	return nil
}

// RuntimeHealthCheck returns the result of every checker keyed by name
func (h *HealthManager) RuntimeHealthCheck(ctx context.Context) map[string]error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	results := make(map[string]error, len(h.checkers))
	for _, checker := range h.checkers {
		results[checker.Name()] = checker.HealthCheck(ctx)
	}

	return results
}

// DatabaseHealthChecker checks database connectivity
type DatabaseHealthChecker struct {
	db *bun.DB
}

// NewDatabaseHealthChecker creates a database health checker
func NewDatabaseHealthChecker(db *bun.DB) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

func (d *DatabaseHealthChecker) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseHealthChecker) IsCritical() bool {
	return true
}

func (d *DatabaseHealthChecker) Name() string {
	return "database"
}
