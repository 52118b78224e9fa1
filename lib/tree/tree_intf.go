package tree

import (
	"iter"

	"github.com/benz9527/xrbtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = iota
	Right
	Root
)

func (dir RBDirection) opposite() RBDirection {
	switch dir {
	case Left:
		return Right
	case Right:
		return Left
	default:
	}
	return Root
}

type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
	Direction() RBDirection
}

// RBTree is an ordered map. It is not safe for concurrent use,
// callers sharing a tree have to serialize the access themselves.
type RBTree[K infra.OrderedKey, V any] interface {
	// Len and Height walk the tree, nothing is cached.
	Len() int64
	Height() int
	Root() RBNode[K, V]
	Min() RBNode[K, V]
	Max() RBNode[K, V]

	// Insert always adds a new node. Equal keys are kept and
	// placed after the existing ones in the in-order sequence.
	Insert(key K, val V)
	// Put replaces the value of an existing equal key or inserts.
	Put(key K, val V) (replaced bool)
	Search(key K) RBNode[K, V]
	Contains(key K) bool
	Delete(key K) bool
	RemoveMin() (RBNode[K, V], bool)

	InorderTraversal() iter.Seq[K]
	All() iter.Seq2[K, V]
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	String() string
	Release()
}
