package ai

import (
	"context"
	"fmt"
	"math"
	"time"

	"broadside/pkg/battleship"
)

// ucbC is the UCB1 exploration constant.
var ucbC = math.Sqrt2

// MCTSStrategy runs a Monte Carlo tree search over attack sequences.
// The true board is unknown, so each simulation draws one fresh
// placement sample as its ground truth; repeated simulations with
// independently resampled placements approximate the posterior over
// hidden states.
//
// The loop stops when Simulations have run or TimeLimit has elapsed,
// whichever comes first. Both the time budget and context cancellation
// are checked only between simulations, so a simulation is never
// partially recorded; worst-case overrun is the cost of one simulation.
type MCTSStrategy struct {
	Simulations int
	TimeLimit   time.Duration // 0 = no wall-clock budget
}

func (s *MCTSStrategy) Name() string {
	if s.TimeLimit > 0 {
		return "nightmare"
	}
	return "expert"
}

func (s *MCTSStrategy) SelectTarget(ctx context.Context, k *Knowledge) (battleship.Cell, error) {
	targets := k.ValidTargets()
	if len(targets) == 0 {
		return battleship.Cell{}, fmt.Errorf("no valid targets remain")
	}

	// The tree is rooted fresh each turn and discarded afterwards.
	root := newSearchNode(nil, battleship.Cell{}, targets)
	depth := k.RemainingShipCells()

	start := time.Now()
	for sims := 0; sims < s.Simulations; sims++ {
		if s.TimeLimit > 0 && time.Since(start) >= s.TimeLimit {
			break
		}
		if ctx.Err() != nil {
			break
		}
		samples, err := SamplePlacements(k, 1, nil)
		if err != nil {
			return battleship.Cell{}, err
		}
		simulate(root, k, samples[0], targets, depth)
	}

	return bestByVisits(root, k, targets), nil
}

// searchNode is one node of the per-turn search tree. Nodes are owned by
// their parent; the parent pointer exists only for backpropagation.
type searchNode struct {
	parent   *searchNode
	cell     battleship.Cell
	children map[battleship.Cell]*searchNode
	// expanded holds the children in expansion order. Selection iterates
	// it instead of the map so equal UCB scores resolve the same way
	// every run and a fixed seed yields a fixed pick.
	expanded []*searchNode
	untried  []battleship.Cell
	visits   int
	reward   float64
}

func newSearchNode(parent *searchNode, cell battleship.Cell, untried []battleship.Cell) *searchNode {
	n := &searchNode{
		parent:   parent,
		cell:     cell,
		children: make(map[battleship.Cell]*searchNode),
		untried:  make([]battleship.Cell, len(untried)),
	}
	copy(n.untried, untried)
	return n
}

// simulate runs one selection/expansion/rollout/backpropagation pass
// with the given placement as ground truth.
func simulate(root *searchNode, k *Knowledge, truth Placement, targets []battleship.Cell, depth int) {
	sim := newShotSim(k, truth)
	used := make(map[battleship.Cell]bool)

	// Selection: descend while the node is fully expanded, preferring
	// unexplored coordinates over any expanded child.
	node := root
	for len(node.untried) == 0 && len(node.children) > 0 {
		node = node.selectChild()
		used[node.cell] = true
		sim.apply(node.cell)
	}

	reward := 0.0
	if len(node.untried) > 0 {
		// Expansion: add one untried coordinate as a new child.
		i := aiIntn(len(node.untried))
		cell := node.untried[i]
		node.untried[i] = node.untried[len(node.untried)-1]
		node.untried = node.untried[:len(node.untried)-1]

		used[cell] = true
		var childUntried []battleship.Cell
		for _, t := range targets {
			if !used[t] {
				childUntried = append(childUntried, t)
			}
		}
		child := newSearchNode(node, cell, childUntried)
		node.children[cell] = child
		node.expanded = append(node.expanded, child)
		node = child

		reward = shotReward(sim.apply(cell))
	}

	// Rollout: random valid shots against the sampled ground truth.
	var remaining []battleship.Cell
	for _, t := range targets {
		if !used[t] {
			remaining = append(remaining, t)
		}
	}
	aiShuffle(len(remaining), func(i, j int) { remaining[i], remaining[j] = remaining[j], remaining[i] })
	if len(remaining) > depth {
		remaining = remaining[:depth]
	}
	for _, c := range remaining {
		reward += shotReward(sim.apply(c))
	}

	// Backpropagation.
	for n := node; n != nil; n = n.parent {
		n.visits++
		n.reward += reward
	}
}

// selectChild picks the child maximizing UCB1. Ties keep the earliest
// expanded child.
func (n *searchNode) selectChild() *searchNode {
	var best *searchNode
	bestScore := math.Inf(-1)
	logParent := math.Log(float64(n.visits))
	for _, child := range n.expanded {
		score := child.reward/float64(child.visits) + ucbC*math.Sqrt(logParent/float64(child.visits))
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// shotReward scores one simulated shot: +1 per hit, a further +5 per
// ship sunk, 0 per miss.
func shotReward(hit, sunk bool) float64 {
	switch {
	case sunk:
		return 6
	case hit:
		return 1
	default:
		return 0
	}
}

// bestByVisits returns the root child with the highest visit count
// (robust against high-variance single-sample outliers), breaking ties
// with the heatmap rule: active-hunt bonus, then lowest row, then
// lowest column. With no children it degrades to that same
// deterministic rule over the raw targets.
func bestByVisits(root *searchNode, k *Knowledge, targets []battleship.Cell) battleship.Cell {
	nearHit := make(map[battleship.Cell]bool)
	for _, hit := range k.UnresolvedHits() {
		for _, n := range hit.Neighbors(k.Size()) {
			nearHit[n] = true
		}
	}

	better := func(c battleship.Cell, visits int, bc battleship.Cell, bv int, have bool) bool {
		if !have || visits > bv {
			return true
		}
		if visits < bv {
			return false
		}
		if nearHit[c] != nearHit[bc] {
			return nearHit[c]
		}
		if c.Row != bc.Row {
			return c.Row < bc.Row
		}
		return c.Col < bc.Col
	}

	var best battleship.Cell
	bestVisits := 0
	have := false
	for _, c := range targets {
		child, ok := root.children[c]
		visits := 0
		if ok {
			visits = child.visits
		} else if have {
			continue
		}
		if better(c, visits, best, bestVisits, have) {
			best, bestVisits, have = c, visits, true
		}
	}
	return best
}

// shotSim resolves simulated shots against one sampled placement.
// Cells already recorded as Hit in the live knowledge count as existing
// damage, so ships can be sunk mid-rollout.
type shotSim struct {
	occupied map[battleship.Cell]int
	lengths  []int
	hits     []int
}

func newShotSim(k *Knowledge, truth Placement) *shotSim {
	sim := &shotSim{
		occupied: make(map[battleship.Cell]int),
		lengths:  make([]int, len(truth.Ships)),
		hits:     make([]int, len(truth.Ships)),
	}
	for i, ship := range truth.Ships {
		sim.lengths[i] = ship.Length
		for _, c := range ship.Cells() {
			sim.occupied[c] = i
			if k.StatusAt(c) == StatusHit {
				sim.hits[i]++
			}
		}
	}
	return sim
}

func (s *shotSim) apply(c battleship.Cell) (hit, sunk bool) {
	i, ok := s.occupied[c]
	if !ok {
		return false, false
	}
	delete(s.occupied, c)
	s.hits[i]++
	return true, s.hits[i] >= s.lengths[i]
}
