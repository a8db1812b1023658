// Package reference loads the officer and district leader tables for a pipeline run.
package reference

import (
	"context"
	"fmt"

	"club-incentives/domain/reference"
	"club-incentives/domain/sheet"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Loader reads both reference tables and builds a lookup directory
type Loader struct {
	store    sheet.Store
	officers sheet.Ref
	leaders  sheet.Ref
	policy   reference.Policy
	logger   *zap.Logger
}

// NewLoader creates a loader for the given officer and district leader sheets
func NewLoader(store sheet.Store, officers, leaders sheet.Ref, policy reference.Policy, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		store:    store,
		officers: officers,
		leaders:  leaders,
		policy:   policy,
		logger:   logger,
	}
}

// Load reads both tables concurrently. The returned directory is a snapshot:
// later edits to the sheets do not affect it. Duplicate lookup keys are logged.
func (l *Loader) Load(ctx context.Context) (*reference.Directory, error) {
	var (
		officers []reference.OfficerRecord
		leaders  []reference.LeaderRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := l.store.ReadAll(gctx, l.officers)
		if err != nil {
			return fmt.Errorf("failed to read officer table %s: %w", l.officers, err)
		}
		officers, err = reference.OfficersFromTable(t)
		return err
	})
	g.Go(func() error {
		t, err := l.store.ReadAll(gctx, l.leaders)
		if err != nil {
			return fmt.Errorf("failed to read district leader table %s: %w", l.leaders, err)
		}
		leaders, err = reference.LeadersFromTable(t)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dir := reference.NewDirectory(officers, leaders, l.policy)
	for _, w := range dir.DuplicateKeys() {
		l.logger.Warn("duplicate reference key, first occurrence wins", zap.String("detail", w))
	}
	l.logger.Debug("reference tables loaded",
		zap.Int("officers", len(officers)),
		zap.Int("leaders", len(leaders)),
	)
	return dir, nil
}
