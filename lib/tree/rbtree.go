package tree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/xlog"
)

var (
	ErrInvalidRotation = errors.New("[rbtree] invalid rotation")
	ErrBrokenStructure = errors.New("[rbtree] broken structure")
)

type rbNode[K infra.OrderedKey, V any] struct {
	parent   *rbNode[K, V]
	children [2]*rbNode[K, V] // indexed by Left and Right
	key      K
	val      V
	color    RBColor
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.children[Left] == nil {
		return nil
	}
	return node.children[Left]
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.children[Right] == nil {
		return nil
	}
	return node.children[Right]
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

// Direction reports which child slot of its parent the node occupies.
func (node *rbNode[K, V]) Direction() RBDirection {
	if node.parent == nil {
		return Root
	}
	if node == node.parent.children[Left] {
		return Left
	}
	return Right
}

// Absent children are black leaves.
func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.children[Left] != nil; aux = aux.children[Left] {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.children[Right] != nil; aux = aux.children[Right] {
	}
	return aux
}

type rbTree[K infra.OrderedKey, V any] struct {
	root   *rbNode[K, V]
	cmp    infra.OrderedKeyComparator[K]
	logger xlog.XLogger
	stats  *rbTreeStats
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	return tree.cmp(k1, k2)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// assertionFailure reports an impossible structural state. The tree has
// to be considered corrupted afterwards, so it never returns.
func (tree *rbTree[K, V]) assertionFailure(cause error, node *rbNode[K, V], msg string) {
	err := infra.WrapErrorStack(fmt.Errorf("%w: %s", cause, msg))
	if tree.logger != nil {
		fields := make([]zap.Field, 0, 2)
		if node != nil {
			fields = append(fields,
				zap.Any("key", node.key),
				zap.String("color", node.color.String()),
			)
		}
		tree.logger.ErrorStack(err, "[rbtree] debug assertion", fields...)
	}
	panic(err)
}

// relink hangs child into parent's slot at dir, or makes it the root.
func (tree *rbTree[K, V]) relink(parent *rbNode[K, V], dir RBDirection, child *rbNode[K, V]) {
	switch dir {
	case Root:
		tree.root = child
	case Left, Right:
		parent.children[dir] = child
	default:
		tree.assertionFailure(ErrBrokenStructure, child, "unknown direction to relink "+dir.String())
	}
	if child != nil {
		child.parent = parent
	}
}

// transplant replaces the subtree rooted at u with the subtree rooted at v.
// u keeps its own links, the caller decides what to do with them.
func (tree *rbTree[K, V]) transplant(u, v *rbNode[K, V]) {
	tree.relink(u.parent, u.Direction(), v)
}

/*
rotate(X, Left), the classic left rotation:

	 |                         |
	 X                         S
	/ \     rotate(X, Left)   / \
   L   S    ============>    X   Sd
	  / \                   / \
	Sc   Sd                L   Sc

rotate(S, Right) is the inverse, the child opposite to dir is
always the one promoted. The in-order sequence is kept, colors
are left to the caller.
*/
func (tree *rbTree[K, V]) rotate(x *rbNode[K, V], dir RBDirection) {
	if x == nil || (dir != Left && dir != Right) {
		tree.assertionFailure(ErrInvalidRotation, x, "rotate a nil node or by "+dir.String())
	}
	opp := dir.opposite()
	y := x.children[opp]
	if y == nil {
		tree.assertionFailure(ErrInvalidRotation, x, "rotate "+dir.String()+" without the promoted child")
	}

	p, xDir := x.parent, x.Direction()
	x.children[opp] = y.children[dir]
	if x.children[opp] != nil {
		x.children[opp].parent = x
	}
	y.children[dir] = x
	x.parent = y
	tree.relink(p, xDir, y)

	tree.stats.IncreaseRotationCount(dir)
}

func (tree *rbTree[K, V]) rotateLeft(x *rbNode[K, V]) {
	tree.rotate(x, Left)
}

func (tree *rbTree[K, V]) rotateRight(x *rbNode[K, V]) {
	tree.rotate(x, Right)
}

type RBTreeOpt[K infra.OrderedKey, V any] func(*rbTree[K, V])

// WithRBTreeDesc orders keys from the greatest to the least.
func WithRBTreeDesc[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.cmp = infra.DescCompare[K]
	}
}

func WithRBTreeComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		if cmp != nil {
			tree.cmp = cmp
		}
	}
}

func WithRBTreeLogger[K infra.OrderedKey, V any](logger xlog.XLogger) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.logger = logger
	}
}

// WithRBTreeStats records the tree mutations by OpenTelemetry metrics.
func WithRBTreeStats[K infra.OrderedKey, V any](name string) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.stats = newRBTreeStats(name)
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	tree := &rbTree[K, V]{
		cmp: infra.AscCompare[K],
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	return tree
}
