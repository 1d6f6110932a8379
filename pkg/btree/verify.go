package btree

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Verify walks the tree checking every structural invariant: leaf and
// inner weight bounds, router-equals-max-of-subtree, cached-minimum-
// equals-aggregate, and ascending key order. It returns a single wrapped
// error describing every violation found, or nil if the tree is sound.
// Intended for tests and for the SelfVerify config flag.
func (t *Tree[K]) Verify() error {
	var violations []error
	var prev *K

	var walk func(n *node[K], level int, isRoot bool)
	walk = func(n *node[K], level int, isRoot bool) {
		if n.level != level {
			violations = append(violations, fmt.Errorf("node at depth mismatch: want level %d, got %d", level, n.level))
		}
		if n.isLeaf() {
			sz := len(n.keys)
			if !isRoot && (sz < t.minWeight(0) || sz > t.maxWeight(0)) {
				violations = append(violations, fmt.Errorf("leaf size %d out of bounds [%d,%d]", sz, t.minWeight(0), t.maxWeight(0)))
			}
			for _, k := range n.keys {
				if prev != nil && !t.less(*prev, k) {
					violations = append(violations, fmt.Errorf("keys out of order"))
				}
				kk := k
				prev = &kk
			}
			return
		}
		w := subtreeWeight[K](n)
		if !isRoot && (w < t.minWeight(level) || w > t.maxWeight(level)) {
			violations = append(violations, fmt.Errorf("inner node weight %d out of bounds [%d,%d] at level %d", w, t.minWeight(level), t.maxWeight(level), level))
		}
		for i, c := range n.children {
			want := subtreeMax[K](c)
			if !t.equal(n.routers[i], want) {
				violations = append(violations, fmt.Errorf("router[%d] does not equal max of subtree", i))
			}
			if gotW := subtreeWeight[K](c); gotW != n.weights[i] {
				violations = append(violations, fmt.Errorf("cached weight[%d]=%d does not match actual %d", i, n.weights[i], gotW))
			}
			if t.minW2 != nil {
				wantMin := subtreeMin(c, t.minW2)
				if !t.equal(n.minima[i], wantMin) {
					violations = append(violations, fmt.Errorf("cached minimum[%d] does not match aggregate", i))
				}
			}
			walk(c, level-1, false)
		}
	}
	if !t.Empty() {
		walk(t.root, t.root.level, true)
	}

	if len(violations) == 0 {
		return nil
	}
	err := errors.New("btree: invariant violations detected")
	for _, v := range violations {
		err = errors.WithDetail(err, v.Error())
	}
	return err
}
