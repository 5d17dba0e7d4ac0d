package exact

import (
	"math"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

// memoShift is the bit width reserved for the order-subset mask in a memo
// key; spec.md §4.1 asks for B >= 20 so masks up to 2^20-1 (far beyond the
// 7-order/127-mask ceiling this solver actually sees) never collide with
// the vehicle index packed into the high bits.
const memoShift = 20

func memoKey(vehicleIdx, orderMask int) int {
	return vehicleIdx<<memoShift | orderMask
}

// tspLeg is one candidate route's cached outcome for a single objective.
type tspLeg struct {
	Stops         []model.RouteStop
	TotalDistance float64
	EmptyDistance float64
	TotalPrice    float64
}

// tspResult is the memoized outcome of solving the TSP subproblem for one
// (vehicle, order subset) pair: the best route under each of the three
// objectives, or Valid=false if no feasible ordering exists.
type tspResult struct {
	MinDistance tspLeg
	MinEmpty    tspLeg
	MinPrice    tspLeg
	Valid       bool
}

// context is the mutable state threaded through the branch-and-bound
// search for a single top-level Solve call. It is never shared across
// concurrent solves (spec.md §9, "mutable current-best globals... are
// confined to a single solver instance").
type context struct {
	problem          model.Problem
	orders           []model.Order
	m                distance.Matrices
	fullMask         int
	maxTotalDistance float64

	memo map[int]tspResult

	bestDist        float64
	bestDistAssign  []int
	bestPrice       float64
	bestPriceAssign []int
	bestEmpty       float64
	bestEmptyAssign []int
}

func newContext(p model.Problem, m distance.Matrices) *context {
	return &context{
		problem:          p,
		orders:           p.Orders,
		m:                m,
		fullMask:         (1 << len(p.Orders)) - 1,
		maxTotalDistance: p.Constraints.MaxTotalDistance,
		memo:             make(map[int]tspResult),

		bestDist:        infinity,
		bestDistAssign:  make([]int, len(p.Vehicles)),
		bestPrice:       infinity,
		bestPriceAssign: make([]int, len(p.Vehicles)),
		bestEmpty:       infinity,
		bestEmptyAssign: make([]int, len(p.Vehicles)),
	}
}

var infinity = math.Inf(1)
