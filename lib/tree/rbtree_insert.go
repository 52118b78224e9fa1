package tree

// Insert descends like a plain BST. A key not less than the visited
// node routes right, so equal keys are appended after the existing ones.
// i1: Empty rbtree, the new node becomes the root and is painted black
// by the rebalance.
func (tree *rbTree[K, V]) Insert(key K, val V) {
	var (
		y   *rbNode[K, V]
		dir = Root
	)
	for x := tree.root; x != nil; x = x.children[dir] {
		y = x
		if tree.keyCompare(key, x.key) < 0 {
			dir = Left
		} else {
			dir = Right
		}
	}

	z := &rbNode[K, V]{
		key:   key,
		val:   val,
		color: Red,
	}
	tree.relink(y, dir, z)
	tree.stats.RecordNodeCount(1)
	tree.insertRebalance(z)
}

func (tree *rbTree[K, V]) Put(key K, val V) bool {
	if z := tree.search(key); z != nil {
		z.val = val
		return true
	}
	tree.Insert(key, val)
	return false
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

im1: X's parent P is black (or X is the root), nothing to do.

im2: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
Repaint and move the violation up to G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black, X is the inner
child of P. Rotate P towards P's side, X and P exchange their roles.
Always followed by im4.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: X is the outer child of P. Rotate G away from P's side and
repaint, the subtree root is black again so the loop ends.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

The mirrored cases only swap the sides, so all of them are written
once in terms of P's side.
*/
func (tree *rbTree[K, V]) insertRebalance(z *rbNode[K, V]) {
	for /* im1 */ z.parent.isRed() {
		p := z.parent
		gp := p.parent
		if gp == nil {
			// A red root, repainted below.
			break
		}

		side := p.Direction()
		uncle := gp.children[side.opposite()]
		if /* im2 */ uncle.isRed() {
			p.color = Black
			uncle.color = Black
			gp.color = Red
			z = gp
			tree.stats.IncreaseInsertFixupCount(insertFixupRecolor)
			continue
		}

		if /* im3 */ z.Direction() != side {
			z = p
			tree.rotate(z, side)
			p = z.parent
		}

		/* im4 */
		p.color = Black
		gp.color = Red
		tree.rotate(gp, side.opposite())
		tree.stats.IncreaseInsertFixupCount(insertFixupRotate)
		break
	}
	tree.root.color = Black
}
