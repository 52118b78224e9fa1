package tree

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/benz9527/xrbtree/lib/infra"
)

// rbtree rule validation utilities.

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. The root is black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. All NIL nodes are considered black.
// So the shortest path nodes are black nodes and the longest path
// is at most twice the shortest one, the height is bounded by
// 2*log2(n+1).

var (
	ErrRootViolation  = errors.New("rbtree root violation")
	ErrRedViolation   = errors.New("rbtree red violation")
	ErrBlackViolation = errors.New("rbtree black violation")
	ErrOrderViolation = errors.New("rbtree order violation")
	ErrLinkViolation  = errors.New("rbtree link violation")
)

func isRedNode[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

func isBlackNode[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func blackDepthTo[K infra.OrderedKey, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlackNode[K, V](aux) {
			depth++
		}
	}
	return depth
}

// preorder visits every node by an explicit stack until action fails.
func preorder[K infra.OrderedKey, V any](tree RBTree[K, V], action func(node RBNode[K, V]) error) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	stack := make([]RBNode[K, V], 0, 32)
	stack = append(stack, root)
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := action(aux); err != nil {
			return err
		}
		if r := aux.Right(); r != nil {
			stack = append(stack, r)
		}
		if l := aux.Left(); l != nil {
			stack = append(stack, l)
		}
	}
	return nil
}

func RootColorValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	if root := tree.Root(); root != nil && root.Color() != Black {
		return fmt.Errorf("%w: root %v is %s", ErrRootViolation, root.Key(), root.Color())
	}
	return nil
}

func RedViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	return preorder[K, V](tree, func(node RBNode[K, V]) error {
		if isRedNode[K, V](node) && (isRedNode[K, V](node.Left()) || isRedNode[K, V](node.Right())) {
			return fmt.Errorf("%w: red node %v has a red child", ErrRedViolation, node.Key())
		}
		return nil
	})
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

Every node owning a NIL child ends a path, the black depth from each
of them to the root has to be the same.
*/
func BlackViolationValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	expected := -1
	return preorder[K, V](tree, func(node RBNode[K, V]) error {
		if node.Left() != nil && node.Right() != nil {
			return nil
		}
		depth := blackDepthTo[K, V](node, nil)
		if expected < 0 {
			expected = depth
		} else if depth != expected {
			return fmt.Errorf("%w: black depth of %v is %d, expected %d",
				ErrBlackViolation, node.Key(), depth, expected)
		}
		return nil
	})
}

// LinkValidate checks the parent links agree with the child links.
func LinkValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	if root := tree.Root(); root != nil && root.Parent() != nil {
		return fmt.Errorf("%w: root %v has a parent", ErrLinkViolation, root.Key())
	}
	return preorder[K, V](tree, func(node RBNode[K, V]) error {
		if l := node.Left(); l != nil && (l.Parent() != node || l.Direction() != Left) {
			return fmt.Errorf("%w: left child %v of %v", ErrLinkViolation, l.Key(), node.Key())
		}
		if r := node.Right(); r != nil && (r.Parent() != node || r.Direction() != Right) {
			return fmt.Errorf("%w: right child %v of %v", ErrLinkViolation, r.Key(), node.Key())
		}
		return nil
	})
}

// OrderValidate checks the in-order keys never decrease under the
// tree's own ordering.
func OrderValidate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	cmp := infra.AscCompare[K]
	if c, ok := tree.(interface{ keyCompare(K, K) int64 }); ok {
		cmp = c.keyCompare
	}
	var (
		err     error
		prev    K
		hasPrev bool
	)
	for key := range tree.InorderTraversal() {
		if hasPrev && cmp(prev, key) > 0 {
			err = fmt.Errorf("%w: %v is placed before %v", ErrOrderViolation, prev, key)
			break
		}
		prev, hasPrev = key, true
	}
	return err
}

// Validate runs all the checks and combines the violations.
func Validate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	return multierr.Combine(
		RootColorValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		LinkValidate[K, V](tree),
		OrderValidate[K, V](tree),
	)
}

// HeightBound is the max height of a valid rbtree with n nodes.
func HeightBound(n int64) float64 {
	return 2 * math.Log2(float64(n)+1)
}
