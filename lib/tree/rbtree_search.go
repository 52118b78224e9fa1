package tree

import (
	"fmt"
	"iter"
	"strings"
)

func (tree *rbTree[K, V]) search(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res < 0 {
			aux = aux.children[Left]
		} else {
			aux = aux.children[Right]
		}
	}
	return nil
}

// Search returns nil if the key is absent.
func (tree *rbTree[K, V]) Search(key K) RBNode[K, V] {
	if z := tree.search(key); z != nil {
		return z
	}
	return nil
}

func (tree *rbTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

func (tree *rbTree[K, V]) Min() RBNode[K, V] {
	if _min := tree.root.minimum(); _min != nil {
		return _min
	}
	return nil
}

func (tree *rbTree[K, V]) Max() RBNode[K, V] {
	if _max := tree.root.maximum(); _max != nil {
		return _max
	}
	return nil
}

// Inorder traversal by an explicit stack, the stack never grows over
// the tree height.
func (tree *rbTree[K, V]) inorder(action func(node *rbNode[K, V]) bool) {
	stack := make([]*rbNode[K, V], 0, 32)
	for aux := tree.root; aux != nil || len(stack) > 0; {
		for ; aux != nil; aux = aux.children[Left] {
			stack = append(stack, aux)
		}
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !action(aux) {
			return
		}
		aux = aux.children[Right]
	}
}

// InorderTraversal returns the keys in ascending order. The sequence is
// lazy and can be ranged over again, every range walks the current tree.
func (tree *rbTree[K, V]) InorderTraversal() iter.Seq[K] {
	return func(yield func(K) bool) {
		tree.inorder(func(node *rbNode[K, V]) bool {
			return yield(node.key)
		})
	}
}

func (tree *rbTree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		tree.inorder(func(node *rbNode[K, V]) bool {
			return yield(node.key, node.val)
		})
	}
}

func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	idx := int64(0)
	tree.inorder(func(node *rbNode[K, V]) bool {
		if !action(idx, node.color, node.key, node.val) {
			return false
		}
		idx++
		return true
	})
}

func (tree *rbTree[K, V]) Len() int64 {
	count := int64(0)
	tree.inorder(func(*rbNode[K, V]) bool {
		count++
		return true
	})
	return count
}

// Height is the number of nodes on the longest root to leaf path.
func (tree *rbTree[K, V]) Height() int {
	if tree.root == nil {
		return 0
	}
	height := 0
	level := []*rbNode[K, V]{tree.root}
	for len(level) > 0 {
		height++
		next := make([]*rbNode[K, V], 0, len(level)<<1)
		for _, node := range level {
			for _, child := range node.children {
				if child != nil {
					next = append(next, child)
				}
			}
		}
		level = next
	}
	return height
}

// String dumps the keys in order with their colors, "1(R) 5(B) 10(B)".
func (tree *rbTree[K, V]) String() string {
	builder := strings.Builder{}
	tree.inorder(func(node *rbNode[K, V]) bool {
		if builder.Len() > 0 {
			_ = builder.WriteByte(' ')
		}
		_, _ = fmt.Fprintf(&builder, "%v(%c)", node.key, node.color.String()[0])
		return true
	})
	return builder.String()
}
