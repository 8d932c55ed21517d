// Package solver provides a constraint-based vehicle-routing solving
// capability: nodes, per-vehicle start/end pairs, an arc-cost function, a
// cumulative dimension with per-node bounds, hard vehicle exclusions and
// optional node groups with drop penalties. Callers treat it as a black
// box that returns either a complete assignment or ErrNoSolution.
package solver

import (
	"errors"
	"time"
)

// ErrNoSolution is the definitive "no solution" signal: the search could
// not place every mandatory node within the time budget.
var ErrNoSolution = errors.New("solver: no solution")

// Vehicle is one route, running from its Start node to its End node. The
// indices are distinct per vehicle even when the underlying locations
// coincide. EndCumulMax, when positive, is an explicit extra bound on the
// dimension value at the end node, asserted in addition to Bounds.
type Vehicle struct {
	Start       int
	End         int
	EndCumulMax int64
}

// Interval bounds the dimension value at one node.
type Interval struct {
	Min, Max int64
}

// Dimension is a per-route cumulative quantity. Transit is the per-arc
// transition cost; SlackMax limits how long a route may wait before a
// node's window opens; Capacity bounds every cumulative value; a positive
// SpanCostCoefficient adds span*coefficient of the longest route to the
// objective.
type Dimension struct {
	Transit             func(from, to int) int64
	Capacity            int64
	SlackMax            int64
	SpanCostCoefficient int64
	Bounds              []Interval
}

// Exclusion forbids a vehicle from visiting a node.
type Exclusion struct {
	Node    int
	Vehicle int
}

// Disjunction makes a single node optional at a fixed penalty. Nodes not
// covered by any disjunction are mandatory.
type Disjunction struct {
	Node    int
	Penalty int64
}

// Problem is one complete routing model.
type Problem struct {
	Nodes     int
	Vehicles  []Vehicle
	ArcCost   func(from, to int) int64
	Time      Dimension
	Forbidden []Exclusion
	Optional  []Disjunction
}

// Options control the search.
type Options struct {
	// TimeLimit bounds the improvement phase. Zero means 5 seconds.
	TimeLimit time.Duration
	// MaxIterations caps improvement iterations when positive. Useful for
	// deterministic tests together with Seed.
	MaxIterations int
	// Seed seeds the search RNG. Zero picks a time-based seed.
	Seed int64
}

// Assignment is a complete solution.
type Assignment struct {
	// VehicleOf maps each node to its visiting vehicle, -1 when dropped.
	VehicleOf []int
	// Cumul holds the solved dimension value per node.
	Cumul []int64
	// Active is false for nodes dropped through a disjunction.
	Active []bool
	// Routes lists, per vehicle, the ordered interior nodes between its
	// start and end.
	Routes [][]int
	// Cost is the objective value, drop penalties included.
	Cost int64
}

// Solve runs a greedy cheapest-insertion construction followed by a
// local-search improvement phase and returns the best assignment found.
func Solve(p Problem, opts Options) (*Assignment, error) {
	e, err := newEngine(p, opts)
	if err != nil {
		return nil, err
	}
	return e.run()
}
