package core

// AgentID is the agent's position in the instance's agent list.
type AgentID int

// Agent is a start/goal pair. Agents are immutable after load; OptimalCost
// is filled once by the single-agent oracle before search begins.
type Agent struct {
	ID          AgentID
	Start       Cell
	Goal        Cell
	OptimalCost int // Shortest path cost ignoring all other agents
}

// AtGoal reports whether the agent starts on its goal.
func (a *Agent) AtGoal() bool {
	return a.Start == a.Goal
}
