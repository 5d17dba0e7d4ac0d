package psa

import "vrppd/internal/vrp/model"

// MessageType identifies the payload carried by a WorkerMessage
// (spec.md §5.3).
type MessageType int

const (
	// SyncReport is sent by a worker to the coordinator at the end of a
	// batch once the iteration count reaches a multiple of SyncInterval
	// (and once more when the search stops), carrying that worker's
	// current personal-best solution and search statistics.
	SyncReport MessageType = iota
	// InfluenceUpdate is forwarded worker-to-worker along the ring: a
	// solution that improved on the sender's own personal best, offered
	// to the next worker in the ring as an alternative starting point.
	InfluenceUpdate
	// Done marks a worker's exit from the search loop, because it
	// exhausted MaxIterations, its temperature fell below MinTemp, or ctx
	// was cancelled.
	Done
)

// WorkerMessage is the unit of communication between PSA workers and
// between a worker and the coordinator.
type WorkerMessage struct {
	Type       MessageType
	WorkerID   int
	Iteration  int
	Solution   model.ProblemSolution
	Energy     float64
	Temperature float64
}
