// Package plan holds the strategic-plan domain logic shared by the API
// handlers: assembling flat goal/metric rows into the 3-level dashboard
// forest, rolling metrics up into progress and status, and allocating
// dotted goal numbers.
package plan

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mwhite/stratplan-api/internal/models"
)

// GoalNode is a goal decorated with its metrics and child goals. It is a
// read-only view rebuilt on every fetch, never persisted.
type GoalNode struct {
	models.Goal
	Metrics  []models.Metric `json:"metrics"`
	Children []*GoalNode     `json:"children"`
}

// Build assembles a flat list of goals and metrics (one district's worth)
// into a forest sorted by dotted goal number at every level.
//
// Every input goal appears in the output exactly once. A goal whose parent
// id does not resolve within the input set is promoted to the root list
// rather than dropped; goals caught in a parent cycle are handled the same
// way, which also keeps traversal finite on corrupt data.
func Build(goals []models.Goal, metrics []models.Metric) []*GoalNode {
	byGoal := make(map[uuid.UUID][]models.Metric, len(goals))
	for _, m := range metrics {
		byGoal[m.GoalID] = append(byGoal[m.GoalID], m)
	}

	nodes := make(map[uuid.UUID]*GoalNode, len(goals))
	for _, g := range goals {
		ms := byGoal[g.ID]
		sort.SliceStable(ms, func(i, j int) bool {
			return ms[i].DisplayOrder < ms[j].DisplayOrder
		})
		if ms == nil {
			ms = []models.Metric{}
		}
		nodes[g.ID] = &GoalNode{Goal: g, Metrics: ms, Children: []*GoalNode{}}
	}

	var roots []*GoalNode
	for _, g := range goals {
		node := nodes[g.ID]
		if g.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*g.ParentID]
		if !ok {
			// Orphaned reference: keep the goal visible at the top level.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	roots = promoteUnreachable(nodes, roots)

	sortForest(roots)
	return roots
}

// promoteUnreachable finds nodes that cannot be reached from any root
// (members of parent-id cycles) and promotes one per cycle, in goal-number
// order, until everything is reachable.
func promoteUnreachable(nodes map[uuid.UUID]*GoalNode, roots []*GoalNode) []*GoalNode {
	for {
		visited := make(map[uuid.UUID]bool, len(nodes))
		var walk func(n *GoalNode)
		walk = func(n *GoalNode) {
			if visited[n.ID] {
				return
			}
			visited[n.ID] = true
			for _, c := range n.Children {
				walk(c)
			}
		}
		for _, r := range roots {
			walk(r)
		}
		if len(visited) == len(nodes) {
			return roots
		}

		var stranded []*GoalNode
		for id, n := range nodes {
			if !visited[id] {
				stranded = append(stranded, n)
			}
		}
		sort.Slice(stranded, func(i, j int) bool {
			return CompareGoalNumbers(stranded[i].GoalNumber, stranded[j].GoalNumber) < 0
		})

		promoted := stranded[0]
		if promoted.ParentID != nil {
			if parent, ok := nodes[*promoted.ParentID]; ok {
				parent.Children = removeChild(parent.Children, promoted)
			}
		}
		roots = append(roots, promoted)
	}
}

func removeChild(children []*GoalNode, node *GoalNode) []*GoalNode {
	out := children[:0]
	for _, c := range children {
		if c != node {
			out = append(out, c)
		}
	}
	return out
}

func sortForest(nodes []*GoalNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return CompareGoalNumbers(nodes[i].GoalNumber, nodes[j].GoalNumber) < 0
	})
	for _, n := range nodes {
		sortForest(n.Children)
	}
}

// CompareGoalNumbers orders dotted goal numbers numerically segment by
// segment, so "1.2" < "1.10" and "1" < "1.1". A missing or non-numeric
// segment compares as 0.
func CompareGoalNumbers(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	n := len(aParts)
	if len(bParts) > n {
		n = len(bParts)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(aParts) {
			av, _ = strconv.Atoi(aParts[i])
		}
		if i < len(bParts) {
			bv, _ = strconv.Atoi(bParts[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Flatten returns every node of the forest in depth-first order. Used for
// counting and for whole-tree status roll-ups.
func Flatten(nodes []*GoalNode) []*GoalNode {
	var out []*GoalNode
	for _, n := range nodes {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}
