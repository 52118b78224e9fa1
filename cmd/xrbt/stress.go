package main

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/tree"
	"github.com/benz9527/xrbtree/xlog"
)

var errHeightExceeded = errors.New("rbtree height exceeded")

// ctxFieldTree names the tree a log entry belongs to.
const ctxFieldTree = "rbtree"

func newStressPool(cfg *config, logger xlog.XLogger) (*ants.Pool, error) {
	return ants.NewPool(
		cfg.StressWorkers,
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
		ants.WithPreAlloc(true),
	)
}

// stressRound builds its own tree, nothing is shared with other rounds.
func stressRound(ctx context.Context, round, total int, logger xlog.XLogger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("round %d: %w", round, e)
				return
			}
			err = fmt.Errorf("round %d: %v", round, r)
		}
	}()

	start := time.Now()
	t := tree.NewRBTree[uint64, int](
		tree.WithRBTreeLogger[uint64, int](logger),
		tree.WithRBTreeStats[uint64, int]("stress"),
	)
	defer t.Release()

	keys := lo.Uniq(lo.Times(total, func(int) uint64 {
		return randv2.Uint64N(uint64(total) << 4)
	}))
	for i, key := range keys {
		t.Insert(key, i)
	}
	if err = tree.Validate[uint64, int](t); err != nil {
		return fmt.Errorf("round %d after inserts: %w", round, err)
	}
	if h, bound := t.Height(), tree.HeightBound(int64(len(keys))); float64(h) > bound {
		return fmt.Errorf("round %d: %w, %d > %.2f", round, errHeightExceeded, h, bound)
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	shuffled := lo.Shuffle(slices.Clone(keys))
	removed, expected := shuffled[:len(shuffled)>>1], slices.Clone(shuffled[len(shuffled)>>1:])
	for _, key := range removed {
		if !t.Delete(key) {
			return fmt.Errorf("round %d: key %d lost", round, key)
		}
	}
	if err = tree.Validate[uint64, int](t); err != nil {
		return fmt.Errorf("round %d after deletes: %w", round, err)
	}
	slices.Sort(expected)
	if !slices.Equal(expected, slices.Collect(t.InorderTraversal())) {
		return fmt.Errorf("round %d: unexpected inorder sequence", round)
	}

	roundCtx := context.WithValue(ctx, xlog.ContextKey(ctxFieldTree), fmt.Sprintf("stress-%d", round))
	logger.DebugContext(roundCtx, "[stress] round done",
		zap.Int("round", round),
		zap.Int("inserted", len(keys)),
		zap.Int("removed", len(removed)),
		zap.Int("height", t.Height()),
		zap.Duration("cost", time.Since(start)),
	)
	return nil
}

// runStress spreads the rounds over the pool and waits all of them.
func runStress(ctx context.Context, cfg *config, pool *ants.Pool, logger xlog.XLogger) error {
	errs := make([]error, cfg.StressRounds)
	wg := sync.WaitGroup{}
	for round := 0; round < cfg.StressRounds; round++ {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			errs[round] = stressRound(ctx, round, cfg.StressTotal, logger)
		}); err != nil {
			wg.Done()
			errs[round] = err
		}
	}
	wg.Wait()

	err := multierr.Combine(errs...)
	if err != nil {
		logger.ErrorContext(ctx, err, "[stress] failed", zap.Int("rounds", cfg.StressRounds))
		return err
	}
	logger.InfoContext(ctx, "[stress] passed",
		zap.Int("rounds", cfg.StressRounds),
		zap.Int("total", cfg.StressTotal),
		zap.Int("workers", cfg.StressWorkers),
	)
	return nil
}
