package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = int64(24 * 60)

func wideBounds(n int) []Interval {
	b := make([]Interval, n)
	for i := range b {
		b[i] = Interval{Min: 0, Max: day}
	}
	return b
}

func flatCost(int, int) int64 { return 1 }

func testOptions() Options {
	return Options{TimeLimit: 2 * time.Second, MaxIterations: 100, Seed: 42}
}

func TestSolvePlacesMandatoryNodes(t *testing.T) {
	// Nodes 0,1 are visits; the single vehicle runs 2 -> 3.
	bounds := wideBounds(4)
	bounds[2] = Interval{Min: 480, Max: 480}
	bounds[3] = Interval{Min: 480, Max: 1020}

	p := Problem{
		Nodes:    4,
		Vehicles: []Vehicle{{Start: 2, End: 3}},
		ArcCost:  flatCost,
		Time: Dimension{
			Transit:  func(from, to int) int64 { return 30 },
			Capacity: day,
			SlackMax: day,
			Bounds:   bounds,
		},
	}

	asg, err := Solve(p, testOptions())
	require.NoError(t, err)
	assert.True(t, asg.Active[0])
	assert.True(t, asg.Active[1])
	assert.Equal(t, 0, asg.VehicleOf[0])
	assert.Equal(t, 0, asg.VehicleOf[1])
	assert.Len(t, asg.Routes[0], 2)
	assert.EqualValues(t, 480, asg.Cumul[2])
	// Two visits, 30 minutes per hop, no waiting.
	assert.EqualValues(t, 480+3*30, asg.Cumul[3])
}

func TestSolveRespectsExclusions(t *testing.T) {
	// Node 0 is the visit; vehicle 0 runs 1 -> 2, vehicle 1 runs 3 -> 4.
	p := Problem{
		Nodes:    5,
		Vehicles: []Vehicle{{Start: 1, End: 2}, {Start: 3, End: 4}},
		ArcCost:  flatCost,
		Time: Dimension{
			Transit:  func(from, to int) int64 { return 10 },
			Capacity: day,
			SlackMax: day,
			Bounds:   wideBounds(5),
		},
		Forbidden: []Exclusion{{Node: 0, Vehicle: 0}},
	}

	asg, err := Solve(p, testOptions())
	require.NoError(t, err)
	assert.True(t, asg.Active[0])
	assert.Equal(t, 1, asg.VehicleOf[0])
	assert.Empty(t, asg.Routes[0])
}

func TestSolveDropsInfeasibleOptionalNode(t *testing.T) {
	bounds := wideBounds(4)
	// Node 1 can never be reached before its window closes.
	bounds[1] = Interval{Min: 0, Max: 5}
	bounds[2] = Interval{Min: 480, Max: 480}

	p := Problem{
		Nodes:    4,
		Vehicles: []Vehicle{{Start: 2, End: 3}},
		ArcCost:  flatCost,
		Time: Dimension{
			Transit:  func(from, to int) int64 { return 30 },
			Capacity: day,
			SlackMax: day,
			Bounds:   bounds,
		},
		Optional: []Disjunction{
			{Node: 0, Penalty: 1000},
			{Node: 1, Penalty: 1000},
		},
	}

	asg, err := Solve(p, testOptions())
	require.NoError(t, err)
	assert.True(t, asg.Active[0])
	assert.False(t, asg.Active[1])
	assert.Equal(t, -1, asg.VehicleOf[1])
	assert.GreaterOrEqual(t, asg.Cost, int64(1000))
}

func TestSolveFailsOnUnplaceableMandatoryNode(t *testing.T) {
	bounds := wideBounds(3)
	bounds[0] = Interval{Min: 0, Max: 5}
	bounds[1] = Interval{Min: 480, Max: 480}

	p := Problem{
		Nodes:    3,
		Vehicles: []Vehicle{{Start: 1, End: 2}},
		ArcCost:  flatCost,
		Time: Dimension{
			Transit:  func(from, to int) int64 { return 30 },
			Capacity: day,
			SlackMax: day,
			Bounds:   bounds,
		},
	}

	_, err := Solve(p, testOptions())
	require.ErrorIs(t, err, ErrNoSolution)
}

func TestSolveHonorsEndCumulMax(t *testing.T) {
	bounds := wideBounds(3)
	bounds[1] = Interval{Min: 480, Max: 480}

	p := Problem{
		Nodes:    3,
		Vehicles: []Vehicle{{Start: 1, End: 2, EndCumulMax: 500}},
		ArcCost:  flatCost,
		Time: Dimension{
			Transit:  func(from, to int) int64 { return 60 },
			Capacity: day,
			SlackMax: day,
			Bounds:   bounds,
		},
		Optional: []Disjunction{{Node: 0, Penalty: 1000}},
	}

	// Serving node 0 would push the route end to 600, past the cap, so it
	// must drop instead.
	asg, err := Solve(p, testOptions())
	require.NoError(t, err)
	assert.False(t, asg.Active[0])
}

func TestSolveWaitsForWindowOpen(t *testing.T) {
	bounds := wideBounds(3)
	bounds[0] = Interval{Min: 600, Max: 660}
	bounds[1] = Interval{Min: 480, Max: 480}

	p := Problem{
		Nodes:    3,
		Vehicles: []Vehicle{{Start: 1, End: 2}},
		ArcCost:  flatCost,
		Time: Dimension{
			Transit:  func(from, to int) int64 { return 30 },
			Capacity: day,
			SlackMax: day,
			Bounds:   bounds,
		},
	}

	asg, err := Solve(p, testOptions())
	require.NoError(t, err)
	assert.EqualValues(t, 600, asg.Cumul[0])
}

func TestSolveSlackMaxLimitsWaiting(t *testing.T) {
	bounds := wideBounds(3)
	bounds[0] = Interval{Min: 600, Max: 660}
	bounds[1] = Interval{Min: 480, Max: 480}

	p := Problem{
		Nodes:    3,
		Vehicles: []Vehicle{{Start: 1, End: 2}},
		ArcCost:  flatCost,
		Time: Dimension{
			Transit:  func(from, to int) int64 { return 30 },
			Capacity: day,
			SlackMax: 10, // 90 minutes of waiting needed, only 10 allowed
			Bounds:   bounds,
		},
	}

	_, err := Solve(p, testOptions())
	require.ErrorIs(t, err, ErrNoSolution)
}

func TestSolveDeterministicWithSeed(t *testing.T) {
	costs := [][]int64{
		{0, 7, 3, 9, 2, 4},
		{7, 0, 5, 1, 6, 8},
		{3, 5, 0, 4, 7, 2},
		{9, 1, 4, 0, 3, 5},
		{2, 6, 7, 3, 0, 1},
		{4, 8, 2, 5, 1, 0},
	}
	p := Problem{
		Nodes:    6,
		Vehicles: []Vehicle{{Start: 4, End: 5}},
		ArcCost:  func(from, to int) int64 { return costs[from][to] },
		Time: Dimension{
			Transit:  func(from, to int) int64 { return costs[from][to] },
			Capacity: day,
			SlackMax: day,
			Bounds:   wideBounds(6),
		},
	}

	first, err := Solve(p, Options{TimeLimit: 5 * time.Second, MaxIterations: 200, Seed: 7})
	require.NoError(t, err)
	second, err := Solve(p, Options{TimeLimit: 5 * time.Second, MaxIterations: 200, Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, first.Routes, second.Routes)
	assert.Equal(t, first.Cost, second.Cost)
}
