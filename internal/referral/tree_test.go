package referral

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildForestChain(t *testing.T) {
	roots, cycles := BuildForest([]Summary{
		{CustomerID: "a", CitizenID: "1111111111111", Name: "A"},
		{CustomerID: "b", CitizenID: "2222222222222", Name: "B", RecommenderID: "1111111111111"},
		{CustomerID: "c", CitizenID: "3333333333333", Name: "C", RecommenderID: "2222222222222"},
	})
	require.Len(t, roots, 1)
	assert.Equal(t, 0, cycles)

	a := roots[0]
	require.Len(t, a.Children, 1)
	b := a.Children[0]
	require.Len(t, b.Children, 1)
	c := b.Children[0]

	assert.Equal(t, "A", a.Name)
	assert.Equal(t, "A", b.RecommenderName)
	assert.Equal(t, "B", c.RecommenderName)
}

func TestBuildForestDanglingRecommenderBecomesRoot(t *testing.T) {
	// The recommender exists in the system but not in the visible set; the
	// node renders as a standalone tree instead of disappearing.
	roots, cycles := BuildForest([]Summary{
		{CustomerID: "a", CitizenID: "1", Name: "A", RecommenderID: "9999999999999"},
		{CustomerID: "b", CitizenID: "2", Name: "B", RecommenderID: "1"},
	})
	require.Len(t, roots, 1)
	assert.Equal(t, 0, cycles)
	assert.Equal(t, "A", roots[0].Name)
	assert.Equal(t, "", roots[0].RecommenderName)
	require.Len(t, roots[0].Children, 1)
}

func TestBuildForestSelfReferenceIsRoot(t *testing.T) {
	roots, _ := BuildForest([]Summary{
		{CustomerID: "a", CitizenID: "1", Name: "A", RecommenderID: "1"},
	})
	require.Len(t, roots, 1)
	assert.Empty(t, roots[0].Children)
}

func TestBuildForestBreaksCycle(t *testing.T) {
	roots, cycles := BuildForest([]Summary{
		{CustomerID: "a", CitizenID: "1", Name: "A", RecommenderID: "3"},
		{CustomerID: "b", CitizenID: "2", Name: "B", RecommenderID: "1"},
		{CustomerID: "c", CitizenID: "3", Name: "C", RecommenderID: "2"},
	})
	assert.Equal(t, 1, cycles)
	require.Len(t, roots, 1)
	assert.Len(t, Flatten(roots), 3)
}

func TestBuildForestTwoCycles(t *testing.T) {
	roots, cycles := BuildForest([]Summary{
		{CustomerID: "a", CitizenID: "1", RecommenderID: "2"},
		{CustomerID: "b", CitizenID: "2", RecommenderID: "1"},
		{CustomerID: "c", CitizenID: "3", RecommenderID: "4"},
		{CustomerID: "d", CitizenID: "4", RecommenderID: "3"},
	})
	assert.Equal(t, 2, cycles)
	assert.Len(t, roots, 2)
	assert.Len(t, Flatten(roots), 4)
}

// Every node appears exactly once regardless of how hostile the recommender
// pointers are.
func TestBuildForestTotalityRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(60)
		rows := make([]Summary, 0, n)
		for i := 0; i < n; i++ {
			row := Summary{
				CustomerID: fmt.Sprintf("cust-%d", i),
				CitizenID:  fmt.Sprintf("%013d", i),
			}
			switch rng.Intn(4) {
			case 0:
				// root
			case 1:
				row.RecommenderID = fmt.Sprintf("%013d", rng.Intn(n)) // may self-reference or cycle
			case 2:
				row.RecommenderID = fmt.Sprintf("missing-%d", rng.Intn(5)) // dangling
			case 3:
				if i > 0 {
					row.RecommenderID = fmt.Sprintf("%013d", rng.Intn(i)) // guaranteed acyclic edge
				}
			}
			rows = append(rows, row)
		}

		roots, _ := BuildForest(rows)
		flat := Flatten(roots)
		require.Len(t, flat, n, "trial %d", trial)

		seen := make(map[string]bool, n)
		for _, node := range flat {
			require.False(t, seen[node.CustomerID], "trial %d: node %s appears twice", trial, node.CustomerID)
			seen[node.CustomerID] = true
		}
	}
}

func TestAggregateChainScores(t *testing.T) {
	roots, _ := BuildForest([]Summary{
		{CustomerID: "a", CitizenID: "1", Name: "A"},
		{CustomerID: "b", CitizenID: "2", Name: "B", RecommenderID: "1"},
		{CustomerID: "c", CitizenID: "3", Name: "C", RecommenderID: "2"},
	})
	Aggregate(roots, map[string]int64{
		"a": 100_00,
		"b": 200_00,
		"c": 300_00,
	})

	a := roots[0]
	b := a.Children[0]
	c := b.Children[0]

	assert.Equal(t, 1, a.TreeLevel)
	assert.Equal(t, 2, b.TreeLevel)
	assert.Equal(t, 3, c.TreeLevel)

	assert.Equal(t, "300.00", c.TotalScore().StringFixed(2))
	assert.Equal(t, "500.00", b.TotalScore().StringFixed(2))
	assert.Equal(t, "600.00", a.TotalScore().StringFixed(2))
	assert.Equal(t, "100.00", a.SelfScore().StringFixed(2))
}

// Subtree totals conserve the sum of self scores.
func TestAggregateScoreConservationRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(40)
		rows := make([]Summary, 0, n)
		scores := make(map[string]int64, n)
		for i := 0; i < n; i++ {
			row := Summary{
				CustomerID: fmt.Sprintf("cust-%d", i),
				CitizenID:  fmt.Sprintf("%013d", i),
			}
			if i > 0 && rng.Intn(5) > 0 {
				row.RecommenderID = fmt.Sprintf("%013d", rng.Intn(i))
			}
			rows = append(rows, row)
			scores[row.CustomerID] = int64(rng.Intn(5_000_00))
		}

		roots, cycles := BuildForest(rows)
		require.Equal(t, 0, cycles)
		Aggregate(roots, scores)

		for _, root := range roots {
			var want int64
			for _, node := range Flatten([]*Node{root}) {
				want += scores[node.CustomerID]
			}
			assert.Equal(t, want, root.TotalScoreSatang, "trial %d", trial)
		}
	}
}

func TestAggregateMissingScoreIsZero(t *testing.T) {
	roots, _ := BuildForest([]Summary{{CustomerID: "a", CitizenID: "1"}})
	Aggregate(roots, map[string]int64{})
	assert.Equal(t, int64(0), roots[0].TotalScoreSatang)
}

func TestFlattenPreOrder(t *testing.T) {
	roots, _ := BuildForest([]Summary{
		{CustomerID: "a", CitizenID: "1"},
		{CustomerID: "b", CitizenID: "2", RecommenderID: "1"},
		{CustomerID: "c", CitizenID: "3", RecommenderID: "2"},
		{CustomerID: "d", CitizenID: "4", RecommenderID: "1"},
		{CustomerID: "e", CitizenID: "5"},
	})
	flat := Flatten(roots)

	ids := make([]string, 0, len(flat))
	for _, n := range flat {
		ids = append(ids, n.CustomerID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
}
