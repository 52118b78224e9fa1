package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xrbtree/rbtree"
)

type insertFixupCase uint8

const (
	insertFixupRecolor insertFixupCase = iota
	insertFixupRotate
)

type removeFixupCase uint8

const (
	removeFixupRedSibling removeFixupCase = iota
	removeFixupRecolor
	removeFixupNearNephew
	removeFixupFarNephew
)

var (
	rotationAttrs = [2]metric.MeasurementOption{
		Left:  metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotation.direction", Left.String()))),
		Right: metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.rotation.direction", Right.String()))),
	}
	insertFixupAttrs = [...]metric.MeasurementOption{
		insertFixupRecolor: metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.fixup.case", "recolor"))),
		insertFixupRotate:  metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.fixup.case", "rotate"))),
	}
	removeFixupAttrs = [...]metric.MeasurementOption{
		removeFixupRedSibling: metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.fixup.case", "red-sibling"))),
		removeFixupRecolor:    metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.fixup.case", "recolor"))),
		removeFixupNearNephew: metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.fixup.case", "near-nephew"))),
		removeFixupFarNephew:  metric.WithAttributeSet(attribute.NewSet(attribute.String("rbtree.fixup.case", "far-nephew"))),
	}
)

// rbTreeStats methods accept a nil receiver, a tree without stats
// pays a nil check only.
type rbTreeStats struct {
	nodeCount        metric.Int64UpDownCounter
	rotationCount    metric.Int64Counter
	insertFixupCount metric.Int64Counter
	removeFixupCount metric.Int64Counter
}

func (stats *rbTreeStats) RecordNodeCount(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), delta)
}

func (stats *rbTreeStats) IncreaseRotationCount(dir RBDirection) {
	if stats == nil {
		return
	}
	stats.rotationCount.Add(context.Background(), 1, rotationAttrs[dir])
}

func (stats *rbTreeStats) IncreaseInsertFixupCount(c insertFixupCase) {
	if stats == nil {
		return
	}
	stats.insertFixupCount.Add(context.Background(), 1, insertFixupAttrs[c])
}

func (stats *rbTreeStats) IncreaseRemoveFixupCount(c removeFixupCase) {
	if stats == nil {
		return
	}
	stats.removeFixupCount.Add(context.Background(), 1, removeFixupAttrs[c])
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := RBTreeStatsName
	if name = strings.TrimSpace(name); len(name) > 0 {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	meter := otel.Meter(meterName)
	return &rbTreeStats{
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"rbtree.node.count",
			metric.WithDescription("The number of nodes in the rbtree."),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.rotation.count",
			metric.WithDescription("The number of rotations applied to the rbtree."),
		)),
		insertFixupCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.insert.fixup.count",
			metric.WithDescription("The number of insert rebalance steps, by case."),
		)),
		removeFixupCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"rbtree.remove.fixup.count",
			metric.WithDescription("The number of remove rebalance steps, by case."),
		)),
	}
}
