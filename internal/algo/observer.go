package algo

import (
	"log/slog"
)

// NodeInfo is a read-only snapshot of a CT node for observers.
type NodeInfo struct {
	ID         int
	ParentID   int // -1 for the root
	Depth      int
	Constraint *Constraint // The constraint this node added; nil for the root
	SOC        int
	MaxStretch float64
	Key        float64
	Conflicts  int // Number of colliding agent pairs
}

// DiscardReason says why a child never entered the open list.
type DiscardReason int

const (
	DiscardInfeasible DiscardReason = iota // Replanned agent has no path
	DiscardPruned                          // MaxStretch above the bound
)

func (r DiscardReason) String() string {
	return [...]string{"infeasible", "pruned"}[r]
}

// Observer is the interface for observing search execution.
type Observer interface {
	// OnNodeExpanded is called when a CT node is popped.
	OnNodeExpanded(node NodeInfo)

	// OnConflictDetected is called with the conflict chosen for branching.
	OnConflictDetected(node NodeInfo, conflict Conflict)

	// OnChildDiscarded is called when a child is rejected at construction.
	OnChildDiscarded(parent NodeInfo, constraint Constraint, reason DiscardReason)

	// OnSolutionFound is called when a conflict-free node is popped.
	OnSolutionFound(node NodeInfo)
}

// LogObserver writes search events to a structured logger at debug level.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver creates an observer backed by logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) OnNodeExpanded(node NodeInfo) {
	o.Logger.Debug("expand node",
		"node", node.ID, "parent", node.ParentID, "depth", node.Depth,
		"soc", node.SOC, "max_stretch", node.MaxStretch, "key", node.Key,
		"conflicting_pairs", node.Conflicts)
}

func (o *LogObserver) OnConflictDetected(node NodeInfo, conflict Conflict) {
	o.Logger.Debug("branch on conflict", "node", node.ID, "conflict", conflict.String())
}

func (o *LogObserver) OnChildDiscarded(parent NodeInfo, constraint Constraint, reason DiscardReason) {
	o.Logger.Debug("discard child", "parent", parent.ID, "constraint", constraint.String(), "reason", reason.String())
}

func (o *LogObserver) OnSolutionFound(node NodeInfo) {
	o.Logger.Debug("solution node", "node", node.ID, "soc", node.SOC, "max_stretch", node.MaxStretch)
}
