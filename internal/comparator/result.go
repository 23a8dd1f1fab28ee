package comparator

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

type ChangeType int

const (
	NoChange    ChangeType = 0
	Modified    ChangeType = 1
	Added       ChangeType = 2
	Removed     ChangeType = 3
	TypeChanged ChangeType = 4
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TypeChanged:
		return "type_changed"
	default:
		return "no_change"
	}
}

// NodeDelta describes how one operator position changed between two plans.
type NodeDelta struct {
	Operator   string
	Object     string
	ChangeType ChangeType

	OldOperator string
	NewOperator string

	OldCost   float64
	NewCost   float64
	CostDelta float64
	CostPct   float64
	CostDir   Direction

	OldElapsedMs float64
	NewElapsedMs float64
	ElapsedPct   float64
	ElapsedDir   Direction

	OldRows int64
	NewRows int64
	RowsPct float64

	OldLogicalReads int64
	NewLogicalReads int64

	OldExecutions int64
	NewExecutions int64

	OldSpill bool
	NewSpill bool

	OldWarnings int
	NewWarnings int

	OldPredicate string
	NewPredicate string

	OldIndex string
	NewIndex string

	Children []NodeDelta
}

type Summary struct {
	OldTotalCost float64
	NewTotalCost float64
	CostDelta    float64
	CostPct      float64
	CostDir      Direction

	OldElapsedMs float64
	NewElapsedMs float64
	ElapsedPct   float64
	ElapsedDir   Direction

	OldCompileTimeMs float64
	NewCompileTimeMs float64

	NodesAdded       int
	NodesRemoved     int
	NodesModified    int
	NodesTypeChanged int

	Verdict string
}

type ComparisonResult struct {
	Deltas  []NodeDelta
	Summary Summary
}
