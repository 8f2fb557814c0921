package searcher

// backup adds score to every node from n up to the root, then applies the
// proof rules on the way.
func backup(n *node, score float64) {
	for ; n != nil; n = n.parent {
		n.total += score
		n.visits++
		if !n.solved {
			n.utility = n.total / float64(n.visits)
		}
		settle(n)
	}
}

// settle solves n once all of its children are solved, then pushes a proven
// loss below a max node or a proven win below a min node into the parent.
func settle(n *node) {
	if !n.solved && n.allChildrenSolved() {
		n.solve(n.extreme())
	}
	if !n.solved || n.parent == nil || n.parent.solved {
		return
	}
	if n.max && n.utility == Loss || !n.max && n.utility == Win {
		n.parent.solve(n.utility)
	}
}
