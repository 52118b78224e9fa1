package main

import (
	"slices"

	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/tree"
	"github.com/benz9527/xrbtree/xlog"
)

var demoKeys = []int{10, 20, 30, 15, 25, 5, 1}

const (
	demoSearchKey = 15
	demoDeleteKey = 20
)

// runDemo walks through the basic operations and logs the colored
// in-order dump after every step.
func runDemo(logger xlog.XLogger) (tree.RBTree[int, int], error) {
	t := tree.NewRBTree[int, int](
		tree.WithRBTreeLogger[int, int](logger),
		tree.WithRBTreeStats[int, int]("demo"),
	)
	for _, key := range demoKeys {
		t.Insert(key, key)
		logger.Info("[demo] inserted", zap.Int("key", key), zap.String("tree", t.String()))
	}

	if node := t.Search(demoSearchKey); node != nil {
		logger.Info("[demo] found", zap.Int("key", node.Key()), zap.String("color", node.Color().String()))
	} else {
		logger.Info("[demo] not found", zap.Int("key", demoSearchKey))
	}

	deleted := t.Delete(demoDeleteKey)
	logger.Info("[demo] deleted",
		zap.Int("key", demoDeleteKey),
		zap.Bool("deleted", deleted),
		zap.String("tree", t.String()),
	)
	logger.Info("[demo] inorder", zap.Ints("keys", slices.Collect(t.InorderTraversal())))

	if err := tree.Validate[int, int](t); err != nil {
		logger.Error(err, "[demo] rbtree violation")
		return t, err
	}
	return t, nil
}
