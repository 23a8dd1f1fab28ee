package showplan

import "math"

// AttributeCosts assigns EstimatedOperatorCost and CostPercent to every
// node of a statement's tree. The optimizer reports cumulative subtree
// cost per operator, so an operator's own cost is its subtree cost minus
// the sum of its children's subtree costs; rounding in the reported
// figures can push the remainder slightly negative, which clamps to zero.
//
// The pass is a pure function of subtree costs, which it never mutates,
// so re-running it yields identical values.
func AttributeCosts(s *Statement) {
	if s.Root == nil {
		return
	}
	total := s.SubTreeCost
	if total <= 0 {
		total = 1
	}
	attributeCosts(s.Root, total)
}

func attributeCosts(n *PlanNode, total float64) {
	var childSum float64
	for _, c := range n.Children {
		attributeCosts(c, total)
		childSum += c.EstimatedTotalSubtreeCost
	}

	own := n.EstimatedTotalSubtreeCost - childSum
	if own < 0 {
		own = 0
	}
	n.EstimatedOperatorCost = own

	pct := int(math.Round(own / total * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	n.CostPercent = pct
}
