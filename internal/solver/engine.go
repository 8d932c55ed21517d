package solver

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// missingMandatoryCost dominates every drop penalty so the search always
// prefers placing mandatory nodes over any detour.
const missingMandatoryCost = int64(1) << 40

type engine struct {
	p    Problem
	opts Options
	rng  *rand.Rand

	visitNodes []int  // nodes that are not any vehicle's start/end
	isDepot    []bool // start/end nodes
	penalty    map[int]int64
	forbidden  [][]bool // [node][vehicle]
}

// solution holds per-vehicle interior node orders. Unassigned nodes are
// implied by absence.
type solution struct {
	orders [][]int
	cost   int64
}

func newEngine(p Problem, opts Options) (*engine, error) {
	if p.Nodes <= 0 {
		return nil, fmt.Errorf("solver: node count must be positive")
	}
	if p.ArcCost == nil || p.Time.Transit == nil {
		return nil, fmt.Errorf("solver: arc cost and dimension transit are required")
	}
	if len(p.Time.Bounds) != p.Nodes {
		return nil, fmt.Errorf("solver: dimension bounds cover %d of %d nodes", len(p.Time.Bounds), p.Nodes)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &engine{
		p:       p,
		opts:    opts,
		rng:     rand.New(rand.NewSource(seed)),
		isDepot: make([]bool, p.Nodes),
		penalty: make(map[int]int64, len(p.Optional)),
	}
	for _, v := range p.Vehicles {
		if v.Start < 0 || v.Start >= p.Nodes || v.End < 0 || v.End >= p.Nodes {
			return nil, fmt.Errorf("solver: vehicle start/end node out of range")
		}
		e.isDepot[v.Start] = true
		e.isDepot[v.End] = true
	}
	for n := 0; n < p.Nodes; n++ {
		if !e.isDepot[n] {
			e.visitNodes = append(e.visitNodes, n)
		}
	}
	for _, d := range p.Optional {
		e.penalty[d.Node] = d.Penalty
	}
	e.forbidden = make([][]bool, p.Nodes)
	for n := range e.forbidden {
		e.forbidden[n] = make([]bool, len(p.Vehicles))
	}
	for _, x := range p.Forbidden {
		if x.Node >= 0 && x.Node < p.Nodes && x.Vehicle >= 0 && x.Vehicle < len(p.Vehicles) {
			e.forbidden[x.Node][x.Vehicle] = true
		}
	}
	return e, nil
}

func (e *engine) run() (*Assignment, error) {
	limit := e.opts.TimeLimit
	if limit <= 0 {
		limit = 5 * time.Second
	}
	deadline := time.Now().Add(limit)

	curr := e.construct()
	curr.cost = e.cost(curr)
	best := e.cloneSolution(curr)

	e.improve(&curr, &best, deadline)

	if e.missingMandatory(best) > 0 {
		return nil, ErrNoSolution
	}
	return e.assignment(best), nil
}

// construct builds an initial solution by cheapest feasible insertion, the
// solver equivalent of a path-cheapest-arc first solution.
func (e *engine) construct() solution {
	sol := solution{orders: make([][]int, len(e.p.Vehicles))}
	remaining := append([]int(nil), e.visitNodes...)

	for len(remaining) > 0 {
		bestNode, bestVeh, bestPos := -1, -1, -1
		bestDelta := int64(math.MaxInt64)
		for ni, node := range remaining {
			for vi := range e.p.Vehicles {
				if e.forbidden[node][vi] {
					continue
				}
				for pos := 0; pos <= len(sol.orders[vi]); pos++ {
					cand := insertAt(sol.orders[vi], node, pos)
					if _, _, ok := e.scheduleRoute(vi, cand); !ok {
						continue
					}
					d := e.insertionDelta(vi, sol.orders[vi], node, pos)
					if d < bestDelta {
						bestDelta = d
						bestNode = ni
						bestVeh = vi
						bestPos = pos
					}
				}
			}
		}
		if bestNode == -1 {
			break
		}
		sol.orders[bestVeh] = insertAt(sol.orders[bestVeh], remaining[bestNode], bestPos)
		remaining = append(remaining[:bestNode], remaining[bestNode+1:]...)
	}
	return sol
}

// improve runs a removal/reinsertion loop with 2-opt and cross-exchange
// polish under simulated-annealing acceptance.
func (e *engine) improve(curr, best *solution, deadline time.Time) {
	temp := 1.0
	const cooling = 0.995
	iterations := 0
	for time.Now().Before(deadline) {
		iterations++
		if e.opts.MaxIterations > 0 && iterations > e.opts.MaxIterations {
			break
		}
		cand := e.cloneSolution(*curr)
		removed := e.removeRandom(&cand, 1+e.rng.Intn(3))
		e.reinsert(&cand, removed)
		e.twoOptImprove(&cand)
		e.crossExchangeImprove(&cand)
		cand.cost = e.cost(cand)

		delta := float64(cand.cost - best.cost)
		if delta < 0 || e.rng.Float64() < math.Exp(-delta/(temp*float64(best.cost+1)+1e-9)) {
			*curr = cand
			if cand.cost < best.cost {
				*best = e.cloneSolution(cand)
			}
		}
		temp *= cooling
	}
}

// removeRandom takes up to k assigned visit nodes out of the solution and
// returns them.
func (e *engine) removeRandom(sol *solution, k int) []int {
	assigned := []int{}
	for _, ord := range sol.orders {
		assigned = append(assigned, ord...)
	}
	if len(assigned) == 0 {
		return nil
	}
	removed := []int{}
	for i := 0; i < k && len(assigned) > 0; i++ {
		j := e.rng.Intn(len(assigned))
		removed = append(removed, assigned[j])
		assigned = append(assigned[:j], assigned[j+1:]...)
	}
	rm := map[int]bool{}
	for _, n := range removed {
		rm[n] = true
	}
	for vi := range sol.orders {
		kept := sol.orders[vi][:0]
		for _, n := range sol.orders[vi] {
			if !rm[n] {
				kept = append(kept, n)
			}
		}
		sol.orders[vi] = kept
	}
	return removed
}

// reinsert places nodes back at their cheapest feasible position. Nodes
// with no feasible slot stay dropped; the cost function charges for them.
func (e *engine) reinsert(sol *solution, nodes []int) {
	for _, node := range nodes {
		bestVeh, bestPos := -1, -1
		bestDelta := int64(math.MaxInt64)
		for vi := range e.p.Vehicles {
			if e.forbidden[node][vi] {
				continue
			}
			for pos := 0; pos <= len(sol.orders[vi]); pos++ {
				cand := insertAt(sol.orders[vi], node, pos)
				if _, _, ok := e.scheduleRoute(vi, cand); !ok {
					continue
				}
				d := e.insertionDelta(vi, sol.orders[vi], node, pos)
				if d < bestDelta {
					bestDelta = d
					bestVeh = vi
					bestPos = pos
				}
			}
		}
		if bestVeh >= 0 {
			sol.orders[bestVeh] = insertAt(sol.orders[bestVeh], node, bestPos)
		}
	}
}

// twoOptImprove reverses intra-route segments when that shortens the route
// and keeps the schedule feasible.
func (e *engine) twoOptImprove(sol *solution) {
	for vi := range sol.orders {
		ord := sol.orders[vi]
		n := len(ord)
		if n < 3 {
			continue
		}
		improved := true
		for improved {
			improved = false
			for i := 0; i < n-1; i++ {
				for k := i + 1; k < n; k++ {
					cand := append([]int(nil), ord...)
					for a, b := i, k; a < b; a, b = a+1, b-1 {
						cand[a], cand[b] = cand[b], cand[a]
					}
					if _, _, ok := e.scheduleRoute(vi, cand); !ok {
						continue
					}
					if e.routeArcCost(vi, cand) < e.routeArcCost(vi, ord) {
						ord = cand
						improved = true
					}
				}
			}
		}
		sol.orders[vi] = ord
	}
}

// crossExchangeImprove swaps single nodes between two routes when both
// stay feasible and the combined arc cost drops.
func (e *engine) crossExchangeImprove(sol *solution) {
	m := len(sol.orders)
	if m < 2 {
		return
	}
	improved := true
	for improved {
		improved = false
		for a := 0; a < m; a++ {
			for b := a + 1; b < m; b++ {
				for i := 0; i < len(sol.orders[a]); i++ {
					for j := 0; j < len(sol.orders[b]); j++ {
						na, nb := sol.orders[a][i], sol.orders[b][j]
						if e.forbidden[na][b] || e.forbidden[nb][a] {
							continue
						}
						ca := append([]int(nil), sol.orders[a]...)
						cb := append([]int(nil), sol.orders[b]...)
						ca[i], cb[j] = nb, na
						if _, _, ok := e.scheduleRoute(a, ca); !ok {
							continue
						}
						if _, _, ok := e.scheduleRoute(b, cb); !ok {
							continue
						}
						before := e.routeArcCost(a, sol.orders[a]) + e.routeArcCost(b, sol.orders[b])
						after := e.routeArcCost(a, ca) + e.routeArcCost(b, cb)
						if after < before {
							sol.orders[a] = ca
							sol.orders[b] = cb
							improved = true
						}
					}
				}
			}
		}
	}
}

// scheduleRoute propagates the dimension along a route: arrival at each
// node is the previous cumul plus transit, lifted to the node's lower
// bound when waiting (bounded by SlackMax) and rejected past its upper
// bound or the dimension capacity.
func (e *engine) scheduleRoute(vi int, order []int) (cumuls []int64, end int64, ok bool) {
	veh := e.p.Vehicles[vi]
	b := e.p.Time.Bounds
	cum := b[veh.Start].Min
	cumuls = make([]int64, len(order))
	prev := veh.Start
	for k, node := range order {
		arr := cum + e.p.Time.Transit(prev, node)
		if arr < b[node].Min {
			if b[node].Min-arr > e.p.Time.SlackMax {
				return nil, 0, false
			}
			arr = b[node].Min
		}
		if arr > b[node].Max || arr > e.p.Time.Capacity {
			return nil, 0, false
		}
		cumuls[k] = arr
		cum = arr
		prev = node
	}
	end = cum + e.p.Time.Transit(prev, veh.End)
	if end < b[veh.End].Min {
		end = b[veh.End].Min
	}
	if end > b[veh.End].Max || end > e.p.Time.Capacity {
		return nil, 0, false
	}
	if veh.EndCumulMax > 0 && end > veh.EndCumulMax {
		return nil, 0, false
	}
	return cumuls, end, true
}

func (e *engine) insertionDelta(vi int, order []int, node, pos int) int64 {
	veh := e.p.Vehicles[vi]
	prev := veh.Start
	if pos > 0 {
		prev = order[pos-1]
	}
	next := veh.End
	if pos < len(order) {
		next = order[pos]
	}
	return e.p.ArcCost(prev, node) + e.p.ArcCost(node, next) - e.p.ArcCost(prev, next)
}

func (e *engine) routeArcCost(vi int, order []int) int64 {
	veh := e.p.Vehicles[vi]
	prev := veh.Start
	total := int64(0)
	for _, node := range order {
		total += e.p.ArcCost(prev, node)
		prev = node
	}
	return total + e.p.ArcCost(prev, veh.End)
}

// cost is the full objective: arc costs, drop penalties, the mandatory
// deficit and the span term for the longest route.
func (e *engine) cost(sol solution) int64 {
	total := int64(0)
	span := int64(0)
	for vi, ord := range sol.orders {
		total += e.routeArcCost(vi, ord)
		if len(ord) == 0 {
			continue
		}
		_, end, ok := e.scheduleRoute(vi, ord)
		if !ok {
			total += missingMandatoryCost
			continue
		}
		s := end - e.p.Time.Bounds[e.p.Vehicles[vi].Start].Min
		if s > span {
			span = s
		}
	}
	total += e.p.Time.SpanCostCoefficient * span

	for _, node := range e.dropped(sol) {
		if pen, optional := e.penalty[node]; optional {
			total += pen
		} else {
			total += missingMandatoryCost
		}
	}
	return total
}

func (e *engine) dropped(sol solution) []int {
	present := make([]bool, e.p.Nodes)
	for _, ord := range sol.orders {
		for _, n := range ord {
			present[n] = true
		}
	}
	out := []int{}
	for _, n := range e.visitNodes {
		if !present[n] {
			out = append(out, n)
		}
	}
	return out
}

func (e *engine) missingMandatory(sol solution) int {
	missing := 0
	for _, n := range e.dropped(sol) {
		if _, optional := e.penalty[n]; !optional {
			missing++
		}
	}
	return missing
}

func (e *engine) assignment(sol solution) *Assignment {
	a := &Assignment{
		VehicleOf: make([]int, e.p.Nodes),
		Cumul:     make([]int64, e.p.Nodes),
		Active:    make([]bool, e.p.Nodes),
		Routes:    make([][]int, len(sol.orders)),
		Cost:      sol.cost,
	}
	for n := range a.VehicleOf {
		a.VehicleOf[n] = -1
	}
	for vi, ord := range sol.orders {
		veh := e.p.Vehicles[vi]
		cumuls, end, _ := e.scheduleRoute(vi, ord)
		a.VehicleOf[veh.Start] = vi
		a.VehicleOf[veh.End] = vi
		a.Active[veh.Start] = true
		a.Active[veh.End] = true
		a.Cumul[veh.Start] = e.p.Time.Bounds[veh.Start].Min
		a.Cumul[veh.End] = end
		for k, node := range ord {
			a.VehicleOf[node] = vi
			a.Active[node] = true
			a.Cumul[node] = cumuls[k]
		}
		a.Routes[vi] = append([]int(nil), ord...)
	}
	return a
}

func (e *engine) cloneSolution(sol solution) solution {
	out := solution{orders: make([][]int, len(sol.orders)), cost: sol.cost}
	for i, ord := range sol.orders {
		out.orders[i] = append([]int(nil), ord...)
	}
	return out
}

func insertAt(order []int, node, pos int) []int {
	out := make([]int, 0, len(order)+1)
	out = append(out, order[:pos]...)
	out = append(out, node)
	out = append(out, order[pos:]...)
	return out
}
