package tree

import "go.uber.org/zap"

func (tree *rbTree[K, V]) Delete(key K) bool {
	z := tree.search(key)
	if z == nil {
		return false
	}
	tree.removeNode(z)
	return true
}

// RemoveMin unlinks the least node and returns that same node with its
// parent and child links cleared.
func (tree *rbTree[K, V]) RemoveMin() (RBNode[K, V], bool) {
	z := tree.root.minimum()
	if z == nil {
		return nil, false
	}
	tree.removeNode(z)
	return z, true
}

/*
r1: Z has no left child, Z's right subtree (maybe empty) takes Z's place.

r2: Z has no right child, Z's left subtree takes Z's place.

r3: Z has both children. The succ Y (the minimum of Z's right subtree)
is unlinked from its own position, its right subtree X takes that place,
then Y is relinked into Z's place and takes Z's color. So the node
really removed from a position is Y, and Y's original color decides
the rebalance.

	    |                  |
	    Z                  Y
	   / \                / \
	  L  ..     ====>    L  ..
	      |                  |
	      P                  P
	     / \                / \
	    Y  ..              X  ..
	     \
	      X

X may be nil, so the position it occupies is tracked by its parent
and the side of that parent, never by reading X's links.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) {
	var (
		x, xParent   *rbNode[K, V]
		xDir         RBDirection
		removedColor = z.color
	)

	switch {
	case /* r1 */ z.children[Left] == nil:
		x, xParent, xDir = z.children[Right], z.parent, z.Direction()
		tree.transplant(z, x)
	case /* r2 */ z.children[Right] == nil:
		x, xParent, xDir = z.children[Left], z.parent, z.Direction()
		tree.transplant(z, x)
	default: // r3
		y := z.children[Right].minimum()
		removedColor = y.color
		x = y.children[Right]
		if y.parent == z {
			xParent, xDir = y, Right
		} else {
			xParent, xDir = y.parent, Left
			tree.transplant(y, x)
			y.children[Right] = z.children[Right]
			y.children[Right].parent = y
		}
		tree.transplant(z, y)
		y.children[Left] = z.children[Left]
		y.children[Left].parent = y
		y.color = z.color
	}

	// Unlink node
	z.parent = nil
	z.children[Left], z.children[Right] = nil, nil
	tree.stats.RecordNodeCount(-1)

	if removedColor == Black {
		tree.removeRebalance(x, xParent, xDir)
	}
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X carries an extra black (deficiency), P is X's parent, S the sibling.
Sc is S's child on X's side (near), Sd is S's child on the opposite
side (far). Drawn with X on the left, the right side is the mirror and
is handled by the same code with dir flipped.

rm1: S is red, so P, Sc and Sd are black.
Repaint S black and P red, rotate P towards X. X gets a black sibling.

	  [P]                   <S>               [S]
	  / \    rotate(P)      / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  =====>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are all black. Repaint S red, both sides of P lack
one black now, move the deficiency up to P. If P is red the loop ends
and P is painted black below.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black.
Repaint Sc black and S red, rotate S away from X. Enter rm4.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    rotate(S)    [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: S is black and Sd is red.
S takes P's color, P and Sd are painted black, rotate P towards X.
The extra black is absorbed, the loop ends.

	  {P}                   [S]                {S}
	  / \    rotate(P)      / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V]) removeRebalance(x, p *rbNode[K, V], dir RBDirection) {
	for x != tree.root && x.isBlack() {
		if p == nil || (dir != Left && dir != Right) {
			tree.assertionFailure(ErrBrokenStructure, x, "deficiency without a parent, direction "+dir.String())
		}
		opp := dir.opposite()

		s := p.children[opp]
		if /* rm1 */ s.isRed() {
			s.color = Black
			p.color = Red
			tree.rotate(p, dir)
			s = p.children[opp]
			tree.stats.IncreaseRemoveFixupCount(removeFixupRedSibling)
		}
		if s == nil {
			tree.assertionFailure(ErrBrokenStructure, p, "deficient position without a sibling")
		}

		if /* rm2 */ s.children[Left].isBlack() && s.children[Right].isBlack() {
			s.color = Red
			x, p = p, p.parent
			dir = x.Direction()
			tree.stats.IncreaseRemoveFixupCount(removeFixupRecolor)
			continue
		}

		if /* rm3 */ s.children[opp].isBlack() {
			s.children[dir].color = Black
			s.color = Red
			tree.rotate(s, opp)
			s = p.children[opp]
			tree.stats.IncreaseRemoveFixupCount(removeFixupNearNephew)
		}

		/* rm4 */
		s.color = p.color
		p.color = Black
		s.children[opp].color = Black
		tree.rotate(p, dir)
		tree.stats.IncreaseRemoveFixupCount(removeFixupFarNephew)
		x = tree.root
		break
	}
	if x != nil {
		x.color = Black
	}
}

// Release drops all nodes. The links are cleared one by one, so node
// handles still held by callers won't pin the rest of the tree.
func (tree *rbTree[K, V]) Release() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		return
	}

	released := int64(0)
	stack := make([]*rbNode[K, V], 0, 64)
	stack = append(stack, aux)
	for len(stack) > 0 {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range aux.children {
			if child != nil {
				stack = append(stack, child)
			}
		}
		aux.parent = nil
		aux.children[Left], aux.children[Right] = nil, nil
		released++
	}
	tree.stats.RecordNodeCount(-released)
	if tree.logger != nil {
		tree.logger.Debug("[rbtree] released", zap.Int64("nodes", released))
	}
}
