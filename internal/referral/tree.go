// Package referral builds the recommender forest and computes period score
// rollups over it. Input rows come from externally sourced data that is not
// provably acyclic, so attachment is guarded and cycles are broken into
// synthetic roots instead of recursing forever.
package referral

import "github.com/shopspring/decimal"

var satangPerUnit = decimal.NewFromInt(100)

// Node is the in-memory tree node used for aggregation and visualization.
// Scores accumulate in satang and convert to display units at the boundary.
type Node struct {
	CustomerID      string
	CitizenID       string
	Name            string
	Position        string
	RecommenderID   string
	RecommenderName string
	RegisterDate    string

	TreeLevel        int
	SelfScoreSatang  int64
	TotalScoreSatang int64

	Children []*Node

	parent *Node
}

func (n *Node) SelfScore() decimal.Decimal {
	return decimal.NewFromInt(n.SelfScoreSatang).Div(satangPerUnit)
}

func (n *Node) TotalScore() decimal.Decimal {
	return decimal.NewFromInt(n.TotalScoreSatang).Div(satangPerUnit)
}

// Summary is one customer row as fed into the builder, already restricted to
// the caller's visibility scope.
type Summary struct {
	CustomerID    string
	CitizenID     string
	Name          string
	Position      string
	RecommenderID string
	RegisterDate  string
}

// BuildForest assembles the summaries into a forest. A node becomes a root
// when its recommender is empty, points to itself, or is not present in the
// visible set; a parent outside the caller's scope still exists in the
// system, so the node renders as a standalone tree rather than disappearing.
// Returns the roots and the number of recommender cycles broken.
func BuildForest(rows []Summary) ([]*Node, int) {
	nodes := make([]*Node, 0, len(rows))
	byCitizen := make(map[string]*Node, len(rows))
	for _, r := range rows {
		n := &Node{
			CustomerID:    r.CustomerID,
			CitizenID:     r.CitizenID,
			Name:          r.Name,
			Position:      r.Position,
			RecommenderID: r.RecommenderID,
			RegisterDate:  r.RegisterDate,
			TreeLevel:     1,
		}
		nodes = append(nodes, n)
		byCitizen[r.CitizenID] = n
	}

	for _, n := range nodes {
		if n.RecommenderID == "" {
			continue
		}
		parent, ok := byCitizen[n.RecommenderID]
		if !ok || parent == n {
			continue
		}
		n.parent = parent
	}

	// Break recommender cycles: walk each node's ancestor chain and detach
	// the node whose chain loops back onto itself. The rest of the cycle
	// then hangs off that synthetic root.
	cycles := 0
	for _, n := range nodes {
		seen := map[*Node]bool{n: true}
		for p := n.parent; p != nil; p = p.parent {
			if seen[p] {
				if p == n {
					n.parent = nil
					cycles++
				}
				break
			}
			seen[p] = true
		}
	}

	roots := make([]*Node, 0)
	for _, n := range nodes {
		if n.parent == nil {
			roots = append(roots, n)
			continue
		}
		n.parent.Children = append(n.parent.Children, n)
		n.RecommenderName = n.parent.Name
	}
	return roots, cycles
}

// Aggregate assigns levels and computes subtree totals bottom-up. Customers
// without an entry in selfScores contribute zero.
func Aggregate(roots []*Node, selfScores map[string]int64) {
	for _, root := range roots {
		aggregate(root, 1, selfScores)
	}
}

func aggregate(n *Node, level int, selfScores map[string]int64) int64 {
	n.TreeLevel = level
	n.SelfScoreSatang = selfScores[n.CustomerID]

	var childrenTotal int64
	for _, child := range n.Children {
		childrenTotal += aggregate(child, level+1, selfScores)
	}
	n.TotalScoreSatang = n.SelfScoreSatang + childrenTotal
	return n.TotalScoreSatang
}

// Flatten returns the forest in pre-order (parent before children, depth
// first) for tabular display.
func Flatten(roots []*Node) []*Node {
	out := make([]*Node, 0)
	var walk func(*Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}
